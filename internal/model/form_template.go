package model

import (
	"errors"
	"time"
)

// FormTemplateModel 表单模板数据模型
// Schema 为表单设计器产出的 JSON,这里只关心其存在性与发布状态
type FormTemplateModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Key         string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"key"`
	Name        string    `gorm:"type:varchar(128);not null" json:"name"`
	Schema      []byte    `gorm:"type:jsonb;not null" json:"schema"`
	IsPublished bool      `gorm:"not null;default:false;index" json:"is_published"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (FormTemplateModel) TableName() string {
	return "form_templates"
}

// Validate 验证表单模板模型
func (m *FormTemplateModel) Validate() error {
	if m.ID == "" {
		return errors.New("template ID is required")
	}
	if m.Key == "" {
		return errors.New("template key is required")
	}
	if m.Name == "" {
		return errors.New("template name is required")
	}
	if len(m.Schema) == 0 {
		return errors.New("template schema is required")
	}
	return nil
}
