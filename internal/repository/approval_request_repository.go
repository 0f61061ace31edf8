package repository

import (
	"github.com/a11enyan97/enterprise-approval-sys/internal/model"
	"gorm.io/gorm"
)

// ApprovalRequestRepository 审批申请仓储接口
type ApprovalRequestRepository interface {
	FindByID(id int64) (*model.ApprovalRequestModel, error)
	// FindByIDWithAttachments 查找审批申请并预加载附件
	FindByIDWithAttachments(id int64) (*model.ApprovalRequestModel, error)
	// FindBySubmissionID 按关联的表单提交记录查找审批申请
	FindBySubmissionID(submissionID string) (*model.ApprovalRequestModel, error)
}

// approvalRequestRepository 审批申请仓储实现
type approvalRequestRepository struct {
	db *gorm.DB
}

// NewApprovalRequestRepository 创建审批申请仓储
func NewApprovalRequestRepository(db *gorm.DB) ApprovalRequestRepository {
	return &approvalRequestRepository{db: db}
}

// FindByID 根据 ID 查找审批申请
func (r *approvalRequestRepository) FindByID(id int64) (*model.ApprovalRequestModel, error) {
	var req model.ApprovalRequestModel
	if err := r.db.Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByIDWithAttachments 查找审批申请并预加载附件
func (r *approvalRequestRepository) FindByIDWithAttachments(id int64) (*model.ApprovalRequestModel, error) {
	var req model.ApprovalRequestModel
	if err := r.db.Preload("Attachments").Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindBySubmissionID 按关联的表单提交记录查找审批申请
func (r *approvalRequestRepository) FindBySubmissionID(submissionID string) (*model.ApprovalRequestModel, error) {
	var req model.ApprovalRequestModel
	if err := r.db.Where("submission_id = ?", submissionID).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}
