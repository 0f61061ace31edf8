package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/a11enyan97/enterprise-approval-sys/internal/model"
	"github.com/a11enyan97/enterprise-approval-sys/internal/repository"
	"github.com/a11enyan97/enterprise-approval-sys/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSubmissionService(t *testing.T) (service.SubmissionService, *gorm.DB) {
	db := setupTestDB(t)
	seedDeptTree(t, db)
	seedUser(t, db, 100)

	deptSvc := service.NewDepartmentService(db, repository.NewDepartmentRepository(db))
	svc := service.NewSubmissionService(
		db,
		repository.NewFormSubmissionRepository(db),
		repository.NewFormTemplateRepository(db),
		repository.NewApprovalRequestRepository(db),
		repository.NewUserRepository(db),
		deptSvc,
		stubUpload{},
	)
	return svc, db
}

func seedTemplate(t *testing.T, db *gorm.DB, id string, published bool) *model.FormTemplateModel {
	template := &model.FormTemplateModel{
		ID:          id,
		Key:         "tpl-" + id,
		Name:        "项目审批表单",
		Schema:      []byte(`{"fields":[{"key":"projectName","type":"input"}]}`),
		IsPublished: published,
	}
	require.NoError(t, db.Create(template).Error)
	return template
}

func sampleInput(templateID string) service.CreateSubmissionInput {
	deptID := int64(2)
	return service.CreateSubmissionInput{
		TemplateID:  templateID,
		Data:        []byte(`{"projectName":"数据中心扩容"}`),
		SubmittedBy: 100,
		Derived: service.DerivedApprovalFields{
			ProjectName:     "数据中心扩容",
			ApprovalContent: "机柜采购",
			DeptID:          &deptID,
			ExecuteDate:     time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

// TestSubmissionService_CreateWithApproval 测试创建提交同时生成审批申请
func TestSubmissionService_CreateWithApproval(t *testing.T) {
	svc, db := newSubmissionService(t)
	seedTemplate(t, db, "tpl-1", true)

	result, err := svc.CreateWithApproval(context.Background(), sampleInput("tpl-1"))
	require.NoError(t, err)

	require.NotNil(t, result.Submission)
	require.NotNil(t, result.Approval)
	assert.Equal(t, model.SubmissionStatusPending, result.Submission.Status)
	assert.JSONEq(t, `{"fields":[{"key":"projectName","type":"input"}]}`, string(result.Submission.SchemaSnapshot))

	// 审批申请反向引用提交记录
	require.NotNil(t, result.Approval.SubmissionID)
	assert.Equal(t, result.Submission.ID, *result.Approval.SubmissionID)
	assert.Equal(t, string(model.StatusDraft), result.Approval.CurrentStatus)
	assert.Equal(t, "技术中心/平台部", result.Approval.DeptFullPath)
}

// TestSubmissionService_Create_UnpublishedTemplate 测试未发布模板不能提交
func TestSubmissionService_Create_UnpublishedTemplate(t *testing.T) {
	svc, db := newSubmissionService(t)
	seedTemplate(t, db, "tpl-2", false)

	_, err := svc.CreateWithApproval(context.Background(), sampleInput("tpl-2"))
	require.Error(t, err)
	se, ok := service.AsError(err)
	require.True(t, ok)
	assert.Equal(t, service.CodeInvalidState, se.Code)
}

// TestSubmissionService_Create_UnknownTemplate 测试模板不存在
func TestSubmissionService_Create_UnknownTemplate(t *testing.T) {
	svc, _ := newSubmissionService(t)

	_, err := svc.CreateWithApproval(context.Background(), sampleInput("missing"))
	require.Error(t, err)
	se, ok := service.AsError(err)
	require.True(t, ok)
	assert.Equal(t, service.CodeNotFound, se.Code)
}

// TestSubmissionService_UpdateWithApproval 测试同步更新提交与审批申请
func TestSubmissionService_UpdateWithApproval(t *testing.T) {
	svc, db := newSubmissionService(t)
	seedTemplate(t, db, "tpl-1", true)

	created, err := svc.CreateWithApproval(context.Background(), sampleInput("tpl-1"))
	require.NoError(t, err)

	deptID := int64(3)
	updated, err := svc.UpdateWithApproval(context.Background(), created.Submission.ID, service.UpdateSubmissionInput{
		Data:      []byte(`{"projectName":"数据中心扩容二期"}`),
		UpdaterID: 100,
		Derived: service.DerivedApprovalFields{
			ProjectName:     "数据中心扩容二期",
			ApprovalContent: "追加预算",
			DeptID:          &deptID,
			ExecuteDate:     time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		},
		Files: []service.PendingFile{
			{FileName: "plan.xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Data: []byte("x"), FileSize: 1, AttachmentType: model.AttachmentTypeTable},
		},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"projectName":"数据中心扩容二期"}`, string(updated.Submission.Data))
	assert.Equal(t, "数据中心扩容二期", updated.Approval.ProjectName)
	assert.Equal(t, "技术中心/平台部/基础架构组", updated.Approval.DeptFullPath)
	require.Len(t, updated.Approval.Attachments, 1)
	assert.Equal(t, "plan.xlsx", updated.Approval.Attachments[0].FileName)
}

// TestSubmissionService_Update_MissingLinkage 测试提交缺失关联审批时报错
func TestSubmissionService_Update_MissingLinkage(t *testing.T) {
	svc, db := newSubmissionService(t)
	seedTemplate(t, db, "tpl-1", true)

	// 直接写入一条没有关联审批的提交记录
	orphan := &model.FormSubmissionModel{
		ID:             "orphan-1",
		TemplateID:     "tpl-1",
		SchemaSnapshot: []byte(`{}`),
		Data:           []byte(`{}`),
		SubmittedBy:    100,
		Status:         model.SubmissionStatusPending,
	}
	require.NoError(t, db.Create(orphan).Error)

	_, err := svc.UpdateWithApproval(context.Background(), "orphan-1", service.UpdateSubmissionInput{
		Data:      []byte(`{}`),
		UpdaterID: 100,
		Derived: service.DerivedApprovalFields{
			ProjectName: "任意",
			ExecuteDate: time.Now(),
		},
	})
	require.Error(t, err)
	se, ok := service.AsError(err)
	require.True(t, ok)
	assert.Equal(t, service.CodeNotFound, se.Code)
}

// TestSubmissionService_List 测试提交列表过滤与分页
func TestSubmissionService_List(t *testing.T) {
	svc, db := newSubmissionService(t)
	seedTemplate(t, db, "tpl-1", true)
	seedTemplate(t, db, "tpl-2", true)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateWithApproval(context.Background(), sampleInput("tpl-1"))
		require.NoError(t, err)
	}
	_, err := svc.CreateWithApproval(context.Background(), sampleInput("tpl-2"))
	require.NoError(t, err)

	items, total, err := svc.List(context.Background(), service.SubmissionFilter{TemplateID: "tpl-1"}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)

	// 按提交人过滤
	seedUser(t, db, 200)
	other := sampleInput("tpl-2")
	other.SubmittedBy = 200
	_, err = svc.CreateWithApproval(context.Background(), other)
	require.NoError(t, err)

	_, total, err = svc.List(context.Background(), service.SubmissionFilter{SubmittedBy: 200}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// 按状态过滤,零值字段不参与过滤
	_, total, err = svc.List(context.Background(), service.SubmissionFilter{Status: model.SubmissionStatusPending}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

// TestSubmissionService_UpdateStatus 测试更新提交处理状态
func TestSubmissionService_UpdateStatus(t *testing.T) {
	svc, db := newSubmissionService(t)
	seedTemplate(t, db, "tpl-1", true)

	created, err := svc.CreateWithApproval(context.Background(), sampleInput("tpl-1"))
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(context.Background(), created.Submission.ID, model.SubmissionStatusApproved))

	result, err := svc.GetByID(context.Background(), created.Submission.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusApproved, result.Submission.Status)

	// 非法状态被拒绝
	err = svc.UpdateStatus(context.Background(), created.Submission.ID, "UNKNOWN")
	require.Error(t, err)

	// 不存在的提交
	err = svc.UpdateStatus(context.Background(), "missing", model.SubmissionStatusApproved)
	require.Error(t, err)
	se, ok := service.AsError(err)
	require.True(t, ok)
	assert.Equal(t, service.CodeNotFound, se.Code)
}
