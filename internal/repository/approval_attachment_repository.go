package repository

import (
	"github.com/a11enyan97/enterprise-approval-sys/internal/model"
	"gorm.io/gorm"
)

// ApprovalAttachmentRepository 审批附件仓储接口
type ApprovalAttachmentRepository interface {
	FindByRequestID(requestID int64) ([]*model.ApprovalAttachmentModel, error)
}

// approvalAttachmentRepository 审批附件仓储实现
type approvalAttachmentRepository struct {
	db *gorm.DB
}

// NewApprovalAttachmentRepository 创建审批附件仓储
func NewApprovalAttachmentRepository(db *gorm.DB) ApprovalAttachmentRepository {
	return &approvalAttachmentRepository{db: db}
}

// FindByRequestID 查找一条审批申请下的全部附件
func (r *approvalAttachmentRepository) FindByRequestID(requestID int64) ([]*model.ApprovalAttachmentModel, error) {
	var attachments []*model.ApprovalAttachmentModel
	err := r.db.Where("request_id = ?", requestID).Order("id ASC").Find(&attachments).Error
	return attachments, err
}
