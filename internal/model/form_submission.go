package model

import (
	"errors"
	"time"
)

// 表单提交状态
const (
	SubmissionStatusPending  = "PENDING"
	SubmissionStatusApproved = "APPROVED"
	SubmissionStatusRejected = "REJECTED"
)

// FormSubmissionModel 表单提交数据模型
// 保存动态表单的提交数据和提交时的 schema 快照,至多关联一条审批申请
type FormSubmissionModel struct {
	ID             string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TemplateID     string    `gorm:"type:varchar(64);not null;index" json:"template_id"`
	SchemaSnapshot []byte    `gorm:"type:jsonb;not null" json:"schema_snapshot"` // 提交时的表单 schema 快照
	Data           []byte    `gorm:"type:jsonb;not null" json:"data"`            // 提交的表单数据
	SubmittedBy    int64     `gorm:"not null;index" json:"submitted_by"`
	Status         string    `gorm:"type:varchar(16);not null;default:PENDING" json:"status"`
	CreatedAt      time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (FormSubmissionModel) TableName() string {
	return "form_submissions"
}

// Validate 验证表单提交模型
func (m *FormSubmissionModel) Validate() error {
	if m.ID == "" {
		return errors.New("submission ID is required")
	}
	if m.TemplateID == "" {
		return errors.New("template ID is required")
	}
	if len(m.Data) == 0 {
		return errors.New("submission data is required")
	}
	if m.SubmittedBy == 0 {
		return errors.New("submitter ID is required")
	}
	return nil
}
