package service

import (
	"context"
	"time"

	"github.com/a11enyan97/enterprise-approval-sys/internal/model"
	"gorm.io/gorm"
)

// ApprovalListFilter 审批申请列表过滤条件,零值字段不参与过滤
type ApprovalListFilter struct {
	Status        string
	ApplicantID   int64
	ProjectName   string
	DeptID        *int64
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	CompletedFrom *time.Time
	CompletedTo   *time.Time
}

// ApprovalPage 审批申请分页结果
type ApprovalPage struct {
	Items    []*model.ApprovalRequestModel `json:"items"`
	Total    int64                         `json:"total"`
	Page     int                           `json:"page"`
	PageSize int                           `json:"page_size"`
}

// QueryService 审批申请查询服务接口
type QueryService interface {
	// ListApprovals 按条件分页查询审批申请
	ListApprovals(ctx context.Context, filter ApprovalListFilter, page, pageSize int) (*ApprovalPage, error)
}

type queryService struct {
	db          *gorm.DB
	deptService DepartmentService
}

// NewQueryService 创建查询服务实例
func NewQueryService(db *gorm.DB, deptService DepartmentService) QueryService {
	return &queryService{db: db, deptService: deptService}
}

// ListApprovals 组合过滤条件分页查询:
// 部门条件收窄为过滤部门自身层级对应的冗余列等值匹配,
// 一级部门命中其下全部申请而无需递归查询
// 总数与当前页使用同一条件,两者始终一致
func (s *queryService) ListApprovals(ctx context.Context, filter ApprovalListFilter, page, pageSize int) (*ApprovalPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	query := s.db.WithContext(ctx).Model(&model.ApprovalRequestModel{})

	if filter.Status != "" {
		query = query.Where("current_status = ?", filter.Status)
	}
	if filter.ApplicantID > 0 {
		query = query.Where("applicant_id = ?", filter.ApplicantID)
	}
	if filter.ProjectName != "" {
		query = query.Where("project_name LIKE ?", "%"+filter.ProjectName+"%")
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	if filter.CompletedFrom != nil {
		query = query.Where("completed_at >= ?", *filter.CompletedFrom)
	}
	if filter.CompletedTo != nil {
		query = query.Where("completed_at <= ?", *filter.CompletedTo)
	}
	if filter.DeptID != nil {
		// 部门无效时静默退化为不过滤
		if df := s.deptService.NarrowFilter(ctx, *filter.DeptID); df != nil {
			query = query.Where(df.Column+" = ?", df.Value)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []*model.ApprovalRequestModel
	err := query.Preload("Attachments").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &ApprovalPage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
