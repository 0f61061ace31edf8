package model_test

import (
	"strings"
	"testing"
	"time"

	"github.com/a11enyan97/enterprise-approval-sys/internal/model"
	"github.com/stretchr/testify/assert"
)

func validRequest() *model.ApprovalRequestModel {
	return &model.ApprovalRequestModel{
		RequestNo:     "APP1000",
		ProjectName:   "测试项目",
		ExecuteDate:   time.Now(),
		CurrentStatus: string(model.StatusDraft),
		ApplicantID:   1,
	}
}

// TestApprovalRequest_Validate 测试申请模型校验
func TestApprovalRequest_Validate(t *testing.T) {
	assert.NoError(t, validRequest().Validate())

	m := validRequest()
	m.RequestNo = ""
	assert.Error(t, m.Validate())

	m = validRequest()
	m.ProjectName = ""
	assert.Error(t, m.Validate())

	m = validRequest()
	m.ApprovalContent = strings.Repeat("字", model.MaxApprovalContentLength+1)
	assert.Error(t, m.Validate())

	m = validRequest()
	m.ApplicantID = 0
	assert.Error(t, m.Validate())
}

// TestApprovalRequest_StatusGuards 测试状态守卫
func TestApprovalRequest_StatusGuards(t *testing.T) {
	m := validRequest()
	assert.True(t, m.IsDraft())
	assert.True(t, m.CanEdit())
	assert.True(t, m.CanSubmit())
	assert.False(t, m.CanDecide())
	assert.False(t, m.IsCompleted())

	m.CurrentStatus = string(model.StatusPending)
	assert.False(t, m.CanEdit())
	assert.False(t, m.CanSubmit())
	assert.True(t, m.CanDecide())

	m.CurrentStatus = string(model.StatusApproved)
	assert.True(t, m.IsCompleted())
	assert.False(t, m.CanDecide())

	m.CurrentStatus = string(model.StatusRejected)
	assert.True(t, m.IsCompleted())
}

// TestApprovalRequest_DeepestDeptID 测试最深部门 ID
func TestApprovalRequest_DeepestDeptID(t *testing.T) {
	one, two, three := int64(1), int64(2), int64(3)

	m := validRequest()
	assert.Nil(t, m.DeepestDeptID())

	m.DeptLevel1ID = &one
	assert.Equal(t, &one, m.DeepestDeptID())

	m.DeptLevel2ID = &two
	assert.Equal(t, &two, m.DeepestDeptID())

	m.DeptLevel3ID = &three
	assert.Equal(t, &three, m.DeepestDeptID())
}
