package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/a11enyan97/enterprise-approval-sys/internal/metrics"
	"github.com/a11enyan97/enterprise-approval-sys/internal/model"
	"github.com/a11enyan97/enterprise-approval-sys/internal/repository"
	"github.com/a11enyan97/enterprise-approval-sys/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// 审批动作
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// CreateApprovalInput 创建审批申请的输入
type CreateApprovalInput struct {
	ProjectName     string
	ApprovalContent string
	DeptID          *int64
	ExecuteDate     time.Time
	ApplicantID     int64
	SubmissionID    *string
	Files           []PendingFile
}

// UpdateApprovalInput 编辑审批申请的输入,nil 字段表示不修改
type UpdateApprovalInput struct {
	ProjectName     *string
	ApprovalContent *string
	DeptID          *int64
	ExecuteDate     *time.Time
	Files           []PendingFile
	ReplaceFiles    bool
}

// ApprovalService 审批申请服务接口
type ApprovalService interface {
	// Create 创建草稿状态的审批申请
	Create(ctx context.Context, input CreateApprovalInput) (*model.ApprovalRequestModel, error)
	// Get 查询审批申请详情,含附件
	Get(ctx context.Context, id int64) (*model.ApprovalRequestModel, error)
	// Update 编辑草稿状态的审批申请
	Update(ctx context.Context, id int64, input UpdateApprovalInput) (*model.ApprovalRequestModel, error)
	// Submit 提交审批,草稿转待审批
	Submit(ctx context.Context, id int64) (*model.ApprovalRequestModel, error)
	// Decide 审批处理,待审批转通过或拒绝
	Decide(ctx context.Context, id int64, action string, approverID int64) (*model.ApprovalRequestModel, error)
	// Delete 删除审批申请及其附件
	Delete(ctx context.Context, id int64) (*model.ApprovalRequestModel, error)
}

type approvalService struct {
	db             *gorm.DB
	approvalRepo   repository.ApprovalRequestRepository
	attachmentRepo repository.ApprovalAttachmentRepository
	userRepo       repository.UserRepository
	deptService    DepartmentService
	uploadSvc      UploadService
}

// NewApprovalService 创建审批申请服务实例
func NewApprovalService(
	db *gorm.DB,
	approvalRepo repository.ApprovalRequestRepository,
	userRepo repository.UserRepository,
	deptService DepartmentService,
	uploadSvc UploadService,
) ApprovalService {
	return &approvalService{
		db:             db,
		approvalRepo:   approvalRepo,
		attachmentRepo: repository.NewApprovalAttachmentRepository(db),
		userRepo:       userRepo,
		deptService:    deptService,
		uploadSvc:      uploadSvc,
	}
}

// generateRequestNo 生成时间戳审批单号
// 毫秒内并发创建依靠随机后缀避免撞号,唯一索引兜底
func generateRequestNo() string {
	return fmt.Sprintf("APP%d%04d", time.Now().UnixMilli(), rand.Intn(10000))
}

// Create 创建审批申请:
// 1. 校验申请人存在
// 2. 校验输入字段
// 3. 解析部门路径与层级冗余列
// 4. 上传附件,任一失败则整体失败且不落库
// 5. 事务内写入申请与附件记录
func (s *approvalService) Create(ctx context.Context, input CreateApprovalInput) (*model.ApprovalRequestModel, error) {
	// 1. 校验申请人
	exists, err := s.userRepo.Exists(input.ApplicantID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, NewNotFound("申请人", input.ApplicantID)
	}

	// 2. 校验字段
	projectName, err := utils.ValidateProjectName(input.ProjectName)
	if err != nil {
		return nil, NewValidation("projectName", err.Error())
	}
	if err := utils.ValidateApprovalContent(input.ApprovalContent); err != nil {
		return nil, NewValidation("approvalContent", err.Error())
	}

	// 3. 解析部门
	request := &model.ApprovalRequestModel{
		RequestNo:       generateRequestNo(),
		ProjectName:     projectName,
		ApprovalContent: input.ApprovalContent,
		ExecuteDate:     input.ExecuteDate,
		CurrentStatus:   string(model.StatusDraft),
		ApplicantID:     input.ApplicantID,
		SubmissionID:    input.SubmissionID,
	}
	if input.DeptID != nil {
		path, err := s.deptService.ResolvePath(ctx, *input.DeptID)
		if err != nil {
			if se, ok := AsError(err); ok && se.Code == CodeNotFound {
				return nil, NewValidation("deptId", se.Message)
			}
			return nil, err
		}
		applyDeptPath(request, path)
	}

	// 4. 附件先上传再落库,保证记录不会引用未上传成功的文件
	attachments, err := s.uploadSvc.Run(ctx, input.Files, model.AttachmentTypeImage)
	if err != nil {
		return nil, err
	}

	// 5. 事务写入
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			return translateDBError(err)
		}
		return createAttachmentRows(tx, request.ID, input.ApplicantID, attachments)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordApprovalCreated()
	logrus.WithFields(logrus.Fields{
		"request_id": request.ID,
		"request_no": request.RequestNo,
		"applicant":  input.ApplicantID,
	}).Info("审批申请已创建")

	return s.approvalRepo.FindByIDWithAttachments(request.ID)
}

// Get 查询审批申请详情
func (s *approvalService) Get(ctx context.Context, id int64) (*model.ApprovalRequestModel, error) {
	request, err := s.approvalRepo.FindByIDWithAttachments(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, NewNotFound("审批申请", id)
		}
		return nil, err
	}
	return request, nil
}

// Update 编辑审批申请,仅草稿状态允许
// 附件变更采用整体替换: 删除原有记录后写入新集合,不做合并
func (s *approvalService) Update(ctx context.Context, id int64, input UpdateApprovalInput) (*model.ApprovalRequestModel, error) {
	request, err := s.approvalRepo.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, NewNotFound("审批申请", id)
		}
		return nil, err
	}
	if !request.CanEdit() {
		return nil, NewInvalidState(fmt.Sprintf("当前状态为 %s,仅草稿状态可编辑", request.CurrentStatus))
	}

	updates := map[string]interface{}{}
	if input.ProjectName != nil {
		projectName, err := utils.ValidateProjectName(*input.ProjectName)
		if err != nil {
			return nil, NewValidation("projectName", err.Error())
		}
		updates["project_name"] = projectName
	}
	if input.ApprovalContent != nil {
		if err := utils.ValidateApprovalContent(*input.ApprovalContent); err != nil {
			return nil, NewValidation("approvalContent", err.Error())
		}
		updates["approval_content"] = *input.ApprovalContent
	}
	if input.ExecuteDate != nil {
		updates["execute_date"] = *input.ExecuteDate
	}
	if input.DeptID != nil {
		path, err := s.deptService.ResolvePath(ctx, *input.DeptID)
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

	// 附件上传在事务外完成,失败时数据库不发生任何变化
	var attachments []AttachmentInput
	if input.ReplaceFiles {
		attachments, err = s.uploadSvc.Run(ctx, input.Files, model.AttachmentTypeImage)
		if err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&model.ApprovalRequestModel{}).Where("id = ?", id).
				Updates(updates).Error; err != nil {
				return translateDBError(err)
			}
		}
		if input.ReplaceFiles {
			if err := tx.Where("request_id = ?", id).
				Delete(&model.ApprovalAttachmentModel{}).Error; err != nil {
				return err
			}
			if err := createAttachmentRows(tx, id, request.ApplicantID, attachments); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.approvalRepo.FindByIDWithAttachments(id)
}

// Submit 提交审批
// 条件更新保证并发提交只有一个成功,落败方拿到状态错误
func (s *approvalService) Submit(ctx context.Context, id int64) (*model.ApprovalRequestModel, error) {
	now := time.Now()
	result := s.db.WithContext(ctx).Model(&model.ApprovalRequestModel{}).
		Where("id = ? AND current_status = ?", id, model.StatusDraft).
		Updates(map[string]interface{}{
			"current_status": string(model.StatusPending),
			"submitted_at":   now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// 区分不存在与状态不符
		request, err := s.approvalRepo.FindByID(id)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, NewNotFound("审批申请", id)
			}
			return nil, err
		}
		return nil, NewInvalidState(fmt.Sprintf("当前状态为 %s,仅草稿状态可提交", request.CurrentStatus))
	}

	logrus.WithField("request_id", id).Info("审批申请已提交")
	return s.approvalRepo.FindByIDWithAttachments(id)
}

// Decide 审批处理
func (s *approvalService) Decide(ctx context.Context, id int64, action string, approverID int64) (*model.ApprovalRequestModel, error) {
	var target model.ApprovalStatus
	switch action {
	case ActionApprove:
		target = model.StatusApproved
	case ActionReject:
		target = model.StatusRejected
	default:
		return nil, NewValidation("action", fmt.Sprintf("不支持的审批动作: %s", action))
	}

	approver, err := s.userRepo.FindByID(approverID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, NewNotFound("审批人", approverID)
		}
		return nil, err
	}

	now := time.Now()
	result := s.db.WithContext(ctx).Model(&model.ApprovalRequestModel{}).
		Where("id = ? AND current_status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"current_status": string(target),
			"completed_at":   now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		request, err := s.approvalRepo.FindByID(id)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, NewNotFound("审批申请", id)
			}
			return nil, err
		}
		return nil, NewInvalidState(fmt.Sprintf("当前状态为 %s,仅待审批状态可处理", request.CurrentStatus))
	}

	metrics.RecordApprovalDecision(action)
	logrus.WithFields(logrus.Fields{
		"request_id": id,
		"action":     action,
		"approver":   approver.Username,
	}).Info("审批申请已处理")
	return s.approvalRepo.FindByIDWithAttachments(id)
}

// Delete 删除审批申请,附件记录一并删除
// 仅校验存在性,状态限制由调用方控制
func (s *approvalService) Delete(ctx context.Context, id int64) (*model.ApprovalRequestModel, error) {
	request, err := s.approvalRepo.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, NewNotFound("审批申请", id)
		}
		return nil, err
	}
	request.Attachments, err = s.attachmentRepo.FindByRequestID(id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", id).
			Delete(&model.ApprovalAttachmentModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.ApprovalRequestModel{}, id).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id": id,
		"request_no": request.RequestNo,
	}).Info("审批申请已删除")
	return request, nil
}

// applyDeptPath 将解析结果写入申请模型
func applyDeptPath(request *model.ApprovalRequestModel, path *DeptPath) {
	request.DeptFullPath = path.FullPath
	request.DeptLevel1ID = path.Level1ID
	request.DeptLevel2ID = path.Level2ID
	request.DeptLevel3ID = path.Level3ID
}

// createAttachmentRows 事务内批量写入附件记录
func createAttachmentRows(tx *gorm.DB, requestID, uploaderID int64, attachments []AttachmentInput) error {
	if len(attachments) == 0 {
		return nil
	}
	rows := make([]*model.ApprovalAttachmentModel, 0, len(attachments))
	for _, a := range attachments {
		rows = append(rows, &model.ApprovalAttachmentModel{
			RequestID:      requestID,
			AttachmentType: a.AttachmentType,
			FileName:       a.FileName,
			FilePath:       a.FilePath,
			FileSize:       a.FileSize,
			MimeType:       a.MimeType,
			UploaderID:     uploaderID,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return translateDBError(err)
	}
	return nil
}
