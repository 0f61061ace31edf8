package model

import (
	"errors"
	"time"
)

// 附件类型
const (
	// AttachmentTypeImage 图片附件
	AttachmentTypeImage = "image"
	// AttachmentTypeTable 表格附件
	AttachmentTypeTable = "table"
)

// ApprovalAttachmentModel 审批附件数据模型
// 附件行仅在上传成功后创建,编辑时整组替换(先删后建),不做局部更新
type ApprovalAttachmentModel struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID      int64     `gorm:"not null;index" json:"request_id"`
	AttachmentType string    `gorm:"type:varchar(16);not null" json:"attachment_type"` // image/table
	FileName       string    `gorm:"type:varchar(255);not null" json:"file_name"`      // 文件原始名称
	FilePath       string    `gorm:"type:varchar(512);not null" json:"file_path"`      // 文件存储地址
	FileSize       int64     `gorm:"not null" json:"file_size"`                        // 文件大小(字节)
	MimeType       string    `gorm:"type:varchar(128)" json:"mime_type"`
	UploaderID     int64     `gorm:"not null;index" json:"uploader_id"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (ApprovalAttachmentModel) TableName() string {
	return "approval_attachments"
}

// Validate 验证附件模型
func (m *ApprovalAttachmentModel) Validate() error {
	if m.RequestID == 0 {
		return errors.New("request ID is required")
	}
	if m.AttachmentType != AttachmentTypeImage && m.AttachmentType != AttachmentTypeTable {
		return errors.New("attachment type must be image or table")
	}
	if m.FileName == "" {
		return errors.New("file name is required")
	}
	if m.FilePath == "" {
		return errors.New("file path is required")
	}
	return nil
}

// IsImage 判断是否为图片附件
func (m *ApprovalAttachmentModel) IsImage() bool {
	return m.AttachmentType == AttachmentTypeImage
}

// IsTable 判断是否为表格附件
func (m *ApprovalAttachmentModel) IsTable() bool {
	return m.AttachmentType == AttachmentTypeTable
}
