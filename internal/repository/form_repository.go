package repository

import (
	"github.com/a11enyan97/enterprise-approval-sys/internal/model"
	"gorm.io/gorm"
)

// FormTemplateRepository 表单模板仓储接口
type FormTemplateRepository interface {
	FindByID(id string) (*model.FormTemplateModel, error)
}

// formTemplateRepository 表单模板仓储实现
type formTemplateRepository struct {
	db *gorm.DB
}

// NewFormTemplateRepository 创建表单模板仓储
func NewFormTemplateRepository(db *gorm.DB) FormTemplateRepository {
	return &formTemplateRepository{db: db}
}

// FindByID 根据 ID 查找模板
func (r *formTemplateRepository) FindByID(id string) (*model.FormTemplateModel, error) {
	var tpl model.FormTemplateModel
	if err := r.db.Where("id = ?", id).First(&tpl).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

// FormSubmissionRepository 表单提交仓储接口
type FormSubmissionRepository interface {
	FindByID(id string) (*model.FormSubmissionModel, error)
	// FindByFilter 分页查询提交记录,返回列表和总数
	FindByFilter(filter *FormSubmissionFilter, page, pageSize int) ([]*model.FormSubmissionModel, int64, error)
}

// FormSubmissionFilter 表单提交查询过滤器,零值字段表示不过滤
type FormSubmissionFilter struct {
	TemplateID  string
	SubmittedBy int64
	Status      string
}

// formSubmissionRepository 表单提交仓储实现
type formSubmissionRepository struct {
	db *gorm.DB
}

// NewFormSubmissionRepository 创建表单提交仓储
func NewFormSubmissionRepository(db *gorm.DB) FormSubmissionRepository {
	return &formSubmissionRepository{db: db}
}

// FindByID 根据 ID 查找提交记录
func (r *formSubmissionRepository) FindByID(id string) (*model.FormSubmissionModel, error) {
	var sub model.FormSubmissionModel
	if err := r.db.Where("id = ?", id).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindByFilter 分页查询提交记录
func (r *formSubmissionRepository) FindByFilter(filter *FormSubmissionFilter, page, pageSize int) ([]*model.FormSubmissionModel, int64, error) {
	query := r.db.Model(&model.FormSubmissionModel{})

	if filter != nil {
		if filter.TemplateID != "" {
			query = query.Where("template_id = ?", filter.TemplateID)
		}
		if filter.SubmittedBy != 0 {
			query = query.Where("submitted_by = ?", filter.SubmittedBy)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []*model.FormSubmissionModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&subs).Error
	return subs, total, err
}
