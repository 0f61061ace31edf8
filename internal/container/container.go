package container

import (
	"fmt"
	"time"

	"github.com/a11enyan97/enterprise-approval-sys/internal/config"
	"github.com/a11enyan97/enterprise-approval-sys/internal/database"
	"github.com/a11enyan97/enterprise-approval-sys/internal/repository"
	"github.com/a11enyan97/enterprise-approval-sys/internal/service"
	"github.com/a11enyan97/enterprise-approval-sys/internal/storage"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理数据库连接、对象存储客户端与全部业务服务
type Container struct {
	db                *gorm.DB
	store             storage.ObjectStorage
	departmentService service.DepartmentService
	uploadService     service.UploadService
	approvalService   service.ApprovalService
	submissionService service.SubmissionService
	queryService      service.QueryService
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. 初始化数据库(带重试机制)
	// 默认重试 3 次,初始间隔 1 秒,指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 2. 初始化对象存储客户端
	store, err := storage.NewS3Storage(cfg.OSS)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	// 3. 初始化仓储与服务
	deptRepo := repository.NewDepartmentRepository(db)
	approvalRepo := repository.NewApprovalRequestRepository(db)
	userRepo := repository.NewUserRepository(db)
	templateRepo := repository.NewFormTemplateRepository(db)
	submissionRepo := repository.NewFormSubmissionRepository(db)

	departmentService := service.NewDepartmentService(db, deptRepo)
	uploadService := service.NewUploadService(store, time.Duration(cfg.OSS.UploadTimeout)*time.Second)
	approvalService := service.NewApprovalService(db, approvalRepo, userRepo, departmentService, uploadService)
	submissionService := service.NewSubmissionService(db, submissionRepo, templateRepo, approvalRepo, userRepo, departmentService, uploadService)
	queryService := service.NewQueryService(db, departmentService)

	return &Container{
		db:                db,
		store:             store,
		departmentService: departmentService,
		uploadService:     uploadService,
		approvalService:   approvalService,
		submissionService: submissionService,
		queryService:      queryService,
	}, nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Storage 获取对象存储客户端
func (c *Container) Storage() storage.ObjectStorage {
	return c.store
}

// DepartmentService 获取部门服务
func (c *Container) DepartmentService() service.DepartmentService {
	return c.departmentService
}

// UploadService 获取附件上传服务
func (c *Container) UploadService() service.UploadService {
	return c.uploadService
}

// ApprovalService 获取审批申请服务
func (c *Container) ApprovalService() service.ApprovalService {
	return c.approvalService
}

// SubmissionService 获取表单提交服务
func (c *Container) SubmissionService() service.SubmissionService {
	return c.submissionService
}

// QueryService 获取查询服务
func (c *Container) QueryService() service.QueryService {
	return c.queryService
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
