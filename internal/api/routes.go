package api

import (
	"github.com/a11enyan97/enterprise-approval-sys/internal/container"
	"github.com/a11enyan97/enterprise-approval-sys/internal/metrics"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 配置路由
func SetupRoutes(c *container.Container, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// 中间件
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(CORSMiddleware(allowedOrigins))

	// 健康检查
	healthController := NewHealthController(c.DB())
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	approvalController := NewApprovalController(c.ApprovalService(), c.QueryService())
	departmentController := NewDepartmentController(c.DepartmentService())
	submissionController := NewSubmissionController(c.SubmissionService())
	attachmentController := NewAttachmentController(c.Storage())

	// API v1 路由组
	v1 := router.Group("/api/v1")
	{
		// 审批管理路由
		approvals := v1.Group("/approvals")
		{
			approvals.POST("", approvalController.Create)
			approvals.GET("", approvalController.List)
			approvals.GET("/:id", approvalController.Get)
			approvals.PUT("/:id", approvalController.Update)
			approvals.DELETE("/:id", approvalController.Delete)
			approvals.POST("/:id/submit", approvalController.Submit)
			approvals.POST("/:id/approve", approvalController.Approve)
			approvals.POST("/:id/reject", approvalController.Reject)
		}

		// 部门管理路由
		v1.GET("/departments", departmentController.List)

		// 表单提交路由
		submissions := v1.Group("/submissions")
		{
			submissions.POST("", submissionController.Create)
			submissions.GET("", submissionController.List)
			submissions.GET("/:id", submissionController.Get)
			submissions.PUT("/:id", submissionController.Update)
		}

		// 附件上传凭证
		v1.POST("/attachments/token", attachmentController.Token)
	}

	return router
}
