package model

import (
	"errors"
	"time"
	"unicode/utf8"
)

// ApprovalStatus 审批状态
type ApprovalStatus string

const (
	// StatusDraft 草稿状态,申请人可自由编辑
	StatusDraft ApprovalStatus = "draft"
	// StatusPending 待审批状态,已提交等待审批人处理
	StatusPending ApprovalStatus = "pending"
	// StatusApproved 已通过
	StatusApproved ApprovalStatus = "approved"
	// StatusRejected 已拒绝
	StatusRejected ApprovalStatus = "rejected"
)

// MaxApprovalContentLength 审批内容最大长度(按字符计)
const MaxApprovalContentLength = 300

// ApprovalRequestModel 审批申请数据模型
type ApprovalRequestModel struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestNo       string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"request_no"` // 审批单号
	ProjectName     string     `gorm:"type:varchar(255);not null" json:"project_name"`          // 审批项目名称
	ApprovalContent string     `gorm:"type:varchar(300)" json:"approval_content"`               // 审批内容,限 300 字
	DeptFullPath    string     `gorm:"type:varchar(255)" json:"dept_full_path"`                 // 部门完整路径,如 A部门/B子部门/C团队
	DeptLevel1ID    *int64     `gorm:"index" json:"dept_level1_id"`                             // 一级部门 ID
	DeptLevel2ID    *int64     `gorm:"index" json:"dept_level2_id"`                             // 二级部门 ID
	DeptLevel3ID    *int64     `gorm:"index" json:"dept_level3_id"`                             // 三级部门 ID
	ExecuteDate     time.Time  `gorm:"not null" json:"execute_date"`                            // 执行日期
	CurrentStatus   string     `gorm:"type:varchar(32);not null;default:draft;index" json:"current_status"`
	SubmittedAt     *time.Time `gorm:"index" json:"submitted_at"` // 提交时间,进入 pending 时设置
	CompletedAt     *time.Time `gorm:"index" json:"completed_at"` // 完成时间,审批通过或拒绝时设置
	ApplicantID     int64      `gorm:"not null;index" json:"applicant_id"`
	SubmissionID    *string    `gorm:"type:varchar(64);index" json:"submission_id"` // 关联的表单提交记录 ID
	CreatedAt       time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`

	// 关联数据
	Attachments []*ApprovalAttachmentModel `gorm:"foreignKey:RequestID" json:"attachments,omitempty"`
}

// TableName 指定表名
func (ApprovalRequestModel) TableName() string {
	return "approval_requests"
}

// Validate 验证审批申请模型
func (m *ApprovalRequestModel) Validate() error {
	if m.RequestNo == "" {
		return errors.New("request no is required")
	}
	if m.ProjectName == "" {
		return errors.New("project name is required")
	}
	if utf8.RuneCountInString(m.ApprovalContent) > MaxApprovalContentLength {
		return errors.New("approval content exceeds 300 characters")
	}
	if m.ApplicantID == 0 {
		return errors.New("applicant ID is required")
	}
	return nil
}

// IsDraft 判断是否为草稿状态
func (m *ApprovalRequestModel) IsDraft() bool {
	return m.CurrentStatus == string(StatusDraft)
}

// IsPending 判断是否为待审批状态
func (m *ApprovalRequestModel) IsPending() bool {
	return m.CurrentStatus == string(StatusPending)
}

// IsCompleted 判断是否已完成(已通过或已拒绝)
func (m *ApprovalRequestModel) IsCompleted() bool {
	return m.CurrentStatus == string(StatusApproved) || m.CurrentStatus == string(StatusRejected)
}

// CanEdit 只有草稿状态可以编辑
func (m *ApprovalRequestModel) CanEdit() bool {
	return m.IsDraft()
}

// CanSubmit 只有草稿状态可以提交
func (m *ApprovalRequestModel) CanSubmit() bool {
	return m.IsDraft()
}

// CanDecide 只有待审批状态可以审批
func (m *ApprovalRequestModel) CanDecide() bool {
	return m.IsPending()
}

// DeepestDeptID 返回最深一级已填写的部门 ID
func (m *ApprovalRequestModel) DeepestDeptID() *int64 {
	if m.DeptLevel3ID != nil {
		return m.DeptLevel3ID
	}
	if m.DeptLevel2ID != nil {
		return m.DeptLevel2ID
	}
	return m.DeptLevel1ID
}
