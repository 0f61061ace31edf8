package model

import (
	"errors"
	"time"
)

// 部门状态
const (
	// DeptStatusEnabled 启用
	DeptStatusEnabled = 1
	// DeptStatusDisabled 禁用,禁用的部门不参与路径解析和筛选
	DeptStatusDisabled = 0
)

// MaxDeptLevel 部门树最大层级
const MaxDeptLevel = 3

// DepartmentModel 部门数据模型
// 父指针树,层级固定不超过三级,根节点 ParentID 为空且 Level 为 1
type DepartmentModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DeptCode    string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"dept_code"`
	DeptName    string    `gorm:"type:varchar(128);not null" json:"dept_name"`
	ParentID    *int64    `gorm:"index" json:"parent_id"`
	Level       int       `gorm:"not null;index" json:"level"` // 1-3,子节点层级恒为父节点层级加一
	FullPath    string    `gorm:"type:varchar(255)" json:"full_path"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`
	ManagerID   *int64    `json:"manager_id"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	Status      int       `gorm:"not null;index" json:"status"` // 0 禁用 1 启用,插入时必须显式赋值
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (DepartmentModel) TableName() string {
	return "departments"
}

// Validate 验证部门模型
func (m *DepartmentModel) Validate() error {
	if m.DeptCode == "" {
		return errors.New("dept code is required")
	}
	if m.DeptName == "" {
		return errors.New("dept name is required")
	}
	if m.Level < 1 || m.Level > MaxDeptLevel {
		return errors.New("dept level must be between 1 and 3")
	}
	if m.Level == 1 && m.ParentID != nil {
		return errors.New("level 1 department must not have a parent")
	}
	if m.Level > 1 && m.ParentID == nil {
		return errors.New("non-root department requires a parent")
	}
	return nil
}

// IsRoot 判断是否为根部门(一级部门)
func (m *DepartmentModel) IsRoot() bool {
	return m.ParentID == nil
}

// IsEnabled 判断部门是否启用
func (m *DepartmentModel) IsEnabled() bool {
	return m.Status == DeptStatusEnabled
}
