package repository

import (
	"github.com/a11enyan97/enterprise-approval-sys/internal/model"
	"gorm.io/gorm"
)

// DepartmentRepository 部门仓储接口
type DepartmentRepository interface {
	FindByID(id int64) (*model.DepartmentModel, error)
	// FindEnabled 查找所有启用的部门,按层级、排序值、ID 升序
	FindEnabled() ([]*model.DepartmentModel, error)
}

// departmentRepository 部门仓储实现
type departmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository 创建部门仓储
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

// FindByID 根据 ID 查找部门
func (r *departmentRepository) FindByID(id int64) (*model.DepartmentModel, error) {
	var dept model.DepartmentModel
	if err := r.db.Where("id = ?", id).First(&dept).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

// FindEnabled 查找所有启用的部门
func (r *departmentRepository) FindEnabled() ([]*model.DepartmentModel, error) {
	var depts []*model.DepartmentModel
	err := r.db.
		Where("status = ?", model.DeptStatusEnabled).
		Order("level ASC").
		Order("sort_order ASC").
		Order("id ASC").
		Find(&depts).Error
	return depts, err
}
