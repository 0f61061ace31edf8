package service

import (
	"context"
	"fmt"
	"time"

	"github.com/a11enyan97/enterprise-approval-sys/internal/model"
	"github.com/a11enyan97/enterprise-approval-sys/internal/repository"
	"github.com/a11enyan97/enterprise-approval-sys/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DerivedApprovalFields 从动态表单数据提取出的审批字段
// 提取逻辑由调用方基于表单模板完成,这里只接收强类型结果
type DerivedApprovalFields struct {
	ProjectName     string
	ApprovalContent string
	DeptID          *int64
	ExecuteDate     time.Time
}

// CreateSubmissionInput 创建表单提交的输入
type CreateSubmissionInput struct {
	TemplateID  string
	Data        []byte
	SubmittedBy int64
	Derived     DerivedApprovalFields
	Files       []PendingFile
}

// UpdateSubmissionInput 更新表单提交的输入
type UpdateSubmissionInput struct {
	Data      []byte
	UpdaterID int64
	Derived   DerivedApprovalFields
	Files     []PendingFile
}

// SubmissionResult 表单提交与其关联审批申请
type SubmissionResult struct {
	Submission *model.FormSubmissionModel  `json:"submission"`
	Approval   *model.ApprovalRequestModel `json:"approval"`
}

// SubmissionFilter 表单提交列表过滤条件
type SubmissionFilter = repository.FormSubmissionFilter

// SubmissionService 表单提交服务接口,维护提交记录与审批申请的一对一关联
type SubmissionService interface {
	// CreateWithApproval 创建表单提交并同时创建关联的审批申请
	CreateWithApproval(ctx context.Context, input CreateSubmissionInput) (*SubmissionResult, error)
	// UpdateWithApproval 更新表单提交并同步更新关联的审批申请
	UpdateWithApproval(ctx context.Context, submissionID string, input UpdateSubmissionInput) (*SubmissionResult, error)
	// GetByID 查询表单提交及其关联审批申请
	GetByID(ctx context.Context, submissionID string) (*SubmissionResult, error)
	// List 分页查询表单提交
	List(ctx context.Context, filter SubmissionFilter, page, pageSize int) ([]*model.FormSubmissionModel, int64, error)
	// UpdateStatus 更新表单提交自身的处理状态
	UpdateStatus(ctx context.Context, submissionID, status string) error
}

type submissionService struct {
	db             *gorm.DB
	submissionRepo repository.FormSubmissionRepository
	templateRepo   repository.FormTemplateRepository
	approvalRepo   repository.ApprovalRequestRepository
	userRepo       repository.UserRepository
	deptService    DepartmentService
	uploadSvc      UploadService
}

// NewSubmissionService 创建表单提交服务实例
func NewSubmissionService(
	db *gorm.DB,
	submissionRepo repository.FormSubmissionRepository,
	templateRepo repository.FormTemplateRepository,
	approvalRepo repository.ApprovalRequestRepository,
	userRepo repository.UserRepository,
	deptService DepartmentService,
	uploadSvc UploadService,
) SubmissionService {
	return &submissionService{
		db:             db,
		submissionRepo: submissionRepo,
		templateRepo:   templateRepo,
		approvalRepo:   approvalRepo,
		userRepo:       userRepo,
		deptService:    deptService,
		uploadSvc:      uploadSvc,
	}
}

// CreateWithApproval 创建表单提交与审批申请:
// 1. 校验模板存在且已发布
// 2. 校验提交人存在
// 3. 解析部门,校验派生字段
// 4. 上传附件,事务开启前完成全部外部副作用
// 5. 单事务写入提交记录、审批申请与附件
func (s *submissionService) CreateWithApproval(ctx context.Context, input CreateSubmissionInput) (*SubmissionResult, error) {
	// 1. 模板必须已发布
	template, err := s.templateRepo.FindByID(input.TemplateID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, NewNotFound("表单模板", input.TemplateID)
		}
		return nil, err
	}
	if !template.IsPublished {
		return nil, NewInvalidState("表单模板未发布,不能提交")
	}

	// 2. 校验提交人
	exists, err := s.userRepo.Exists(input.SubmittedBy)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, NewNotFound("提交人", input.SubmittedBy)
	}

	// 3. 校验派生字段并解析部门
	projectName, err := utils.ValidateProjectName(input.Derived.ProjectName)
	if err != nil {
		return nil, NewValidation("projectName", err.Error())
	}
	if err := utils.ValidateApprovalContent(input.Derived.ApprovalContent); err != nil {
		return nil, NewValidation("approvalContent", err.Error())
	}
	var path *DeptPath
	if input.Derived.DeptID != nil {
		path, err = s.deptService.ResolvePath(ctx, *input.Derived.DeptID)
		if err != nil {
			if se, ok := AsError(err); ok && se.Code == CodeNotFound {
				return nil, NewValidation("deptId", se.Message)
			}
			return nil, err
		}
	}

	// 4. 附件上传
	attachments, err := s.uploadSvc.Run(ctx, input.Files, model.AttachmentTypeImage)
	if err != nil {
		return nil, err
	}

	// 5. 单事务写入
	submission := &model.FormSubmissionModel{
		ID:             uuid.NewString(),
		TemplateID:     template.ID,
		SchemaSnapshot: template.Schema,
		Data:           input.Data,
		SubmittedBy:    input.SubmittedBy,
		Status:         model.SubmissionStatusPending,
	}
	approval := &model.ApprovalRequestModel{
		RequestNo:       generateRequestNo(),
		ProjectName:     projectName,
		ApprovalContent: input.Derived.ApprovalContent,
		ExecuteDate:     input.Derived.ExecuteDate,
		CurrentStatus:   string(model.StatusDraft),
		ApplicantID:     input.SubmittedBy,
		SubmissionID:    &submission.ID,
	}
	if path != nil {
		applyDeptPath(approval, path)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(submission).Error; err != nil {
			return translateDBError(err)
		}
		if err := tx.Create(approval).Error; err != nil {
			return translateDBError(err)
		}
		return createAttachmentRows(tx, approval.ID, input.SubmittedBy, attachments)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"submission_id": submission.ID,
		"request_id":    approval.ID,
		"template_id":   template.ID,
	}).Info("表单提交与审批申请已创建")

	return s.GetByID(ctx, submission.ID)
}

// UpdateWithApproval 更新表单提交与关联审批申请
// 关联缺失属于数据完整性故障,按资源不存在处理并记录告警
func (s *submissionService) UpdateWithApproval(ctx context.Context, submissionID string, input UpdateSubmissionInput) (*SubmissionResult, error) {
	submission, err := s.submissionRepo.FindByID(submissionID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, NewNotFound("表单提交", submissionID)
		}
		return nil, err
	}

	approval, err := s.approvalRepo.FindBySubmissionID(submissionID)
	if err != nil {
		if repository.IsNotFound(err) {
			logrus.WithField("submission_id", submissionID).Error("表单提交缺少关联的审批申请")
			return nil, NewNotFound("关联审批申请", submissionID)
		}
		return nil, err
	}
	if !approval.CanEdit() {
		return nil, NewInvalidState(fmt.Sprintf("关联审批申请状态为 %s,仅草稿状态可编辑", approval.CurrentStatus))
	}

	projectName, err := utils.ValidateProjectName(input.Derived.ProjectName)
	if err != nil {
		return nil, NewValidation("projectName", err.Error())
	}
	if err := utils.ValidateApprovalContent(input.Derived.ApprovalContent); err != nil {
		return nil, NewValidation("approvalContent", err.Error())
	}

	updates := map[string]interface{}{
		"project_name":     projectName,
		"approval_content": input.Derived.ApprovalContent,
		"execute_date":     input.Derived.ExecuteDate,
	}
	if input.Derived.DeptID != nil {
		path, err := s.deptService.ResolvePath(ctx, *input.Derived.DeptID)
		if err != nil {
			if se, ok := AsError(err); ok && se.Code == CodeNotFound {
				return nil, NewValidation("deptId", se.Message)
			}
			return nil, err
		}
		updates["dept_full_path"] = path.FullPath
		updates["dept_level1_id"] = path.Level1ID
		updates["dept_level2_id"] = path.Level2ID
		updates["dept_level3_id"] = path.Level3ID
	}

	attachments, err := s.uploadSvc.Run(ctx, input.Files, model.AttachmentTypeImage)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.FormSubmissionModel{}).
			Where("id = ?", submission.ID).
			Update("data", input.Data).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.ApprovalRequestModel{}).
			Where("id = ?", approval.ID).
			Updates(updates).Error; err != nil {
			return translateDBError(err)
		}
		if err := tx.Where("request_id = ?", approval.ID).
			Delete(&model.ApprovalAttachmentModel{}).Error; err != nil {
			return err
		}
		return createAttachmentRows(tx, approval.ID, input.UpdaterID, attachments)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, submission.ID)
}

// GetByID 查询表单提交及其关联审批申请
func (s *submissionService) GetByID(ctx context.Context, submissionID string) (*SubmissionResult, error) {
	submission, err := s.submissionRepo.FindByID(submissionID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, NewNotFound("表单提交", submissionID)
		}
		return nil, err
	}

	result := &SubmissionResult{Submission: submission}
	approval, err := s.approvalRepo.FindBySubmissionID(submissionID)
	if err == nil {
		full, err := s.approvalRepo.FindByIDWithAttachments(approval.ID)
		if err != nil {
			return nil, err
		}
		result.Approval = full
	} else if !repository.IsNotFound(err) {
		return nil, err
	}
	return result, nil
}

// List 分页查询表单提交
func (s *submissionService) List(ctx context.Context, filter SubmissionFilter, page, pageSize int) ([]*model.FormSubmissionModel, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return s.submissionRepo.FindByFilter(&filter, page, pageSize)
}

// UpdateStatus 更新表单提交处理状态
func (s *submissionService) UpdateStatus(ctx context.Context, submissionID, status string) error {
	switch status {
	case model.SubmissionStatusPending, model.SubmissionStatusApproved, model.SubmissionStatusRejected:
	default:
		return NewValidation("status", fmt.Sprintf("不支持的状态: %s", status))
	}

	result := s.db.WithContext(ctx).Model(&model.FormSubmissionModel{}).
		Where("id = ?", submissionID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return NewNotFound("表单提交", submissionID)
	}
	return nil
}
