package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a11enyan97/enterprise-approval-sys/internal/api"
	"github.com/a11enyan97/enterprise-approval-sys/internal/model"
	"github.com/a11enyan97/enterprise-approval-sys/internal/repository"
	"github.com/a11enyan97/enterprise-approval-sys/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// passthroughUpload 测试用附件服务,直接转换输入不走对象存储
type passthroughUpload struct{}

func (passthroughUpload) Run(ctx context.Context, files []service.PendingFile, defaultKind string) ([]service.AttachmentInput, error) {
	inputs := make([]service.AttachmentInput, 0, len(files))
	for _, f := range files {
		kind := f.AttachmentType
		if kind == "" {
			kind = defaultKind
		}
		inputs = append(inputs, service.AttachmentInput{
			FilePath:       "https://cdn.example.com/uploads/" + f.FileName,
			FileName:       f.FileName,
			AttachmentType: kind,
			FileSize:       f.FileSize,
			MimeType:       f.ContentType,
		})
	}
	return inputs, nil
}

// setupRouter 构建测试路由与数据库
func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.UserModel{},
		&model.DepartmentModel{},
		&model.ApprovalRequestModel{},
		&model.ApprovalAttachmentModel{},
	))

	require.NoError(t, db.Create(&model.UserModel{ID: 100, Username: "alice", RealName: "测试用户", Status: 1}).Error)
	require.NoError(t, db.Create(&model.UserModel{ID: 200, Username: "bob", RealName: "审批人", Status: 1}).Error)
	require.NoError(t, db.Create(&model.DepartmentModel{ID: 1, DeptCode: "TECH", DeptName: "技术中心", Level: 1, Status: model.DeptStatusEnabled}).Error)

	deptSvc := service.NewDepartmentService(db, repository.NewDepartmentRepository(db))
	approvalSvc := service.NewApprovalService(
		db,
		repository.NewApprovalRequestRepository(db),
		repository.NewUserRepository(db),
		deptSvc,
		passthroughUpload{},
	)
	querySvc := service.NewQueryService(db, deptSvc)

	controller := api.NewApprovalController(approvalSvc, querySvc)
	deptController := api.NewDepartmentController(deptSvc)

	router := gin.New()
	v1 := router.Group("/api/v1")
	approvals := v1.Group("/approvals")
	{
		approvals.POST("", controller.Create)
		approvals.GET("", controller.List)
		approvals.GET("/:id", controller.Get)
		approvals.POST("/:id/submit", controller.Submit)
		approvals.POST("/:id/approve", controller.Approve)
		approvals.DELETE("/:id", controller.Delete)
	}
	v1.GET("/departments", deptController.List)

	return router, db
}

// createViaAPI 通过接口创建一条申请并返回其 ID
func createViaAPI(t *testing.T, router *gin.Engine) int64 {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("project_name", "数据中心扩容"))
	require.NoError(t, w.WriteField("execute_date", "2026-10-01"))
	require.NoError(t, w.WriteField("applicant_id", "100"))
	require.NoError(t, w.WriteField("dept_id", "1"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/approvals", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data model.ApprovalRequestModel `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotZero(t, resp.Data.ID)
	return resp.Data.ID
}

// TestApprovalAPI_CreateAndGet 测试创建与查询接口
func TestApprovalAPI_CreateAndGet(t *testing.T) {
	router, _ := setupRouter(t)
	id := createViaAPI(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/approvals/%d", id), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data model.ApprovalRequestModel `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "数据中心扩容", resp.Data.ProjectName)
	assert.Equal(t, string(model.StatusDraft), resp.Data.CurrentStatus)
	assert.Equal(t, "技术中心", resp.Data.DeptFullPath)
}

// TestApprovalAPI_SubmitAndApprove 测试提交与审批接口状态码
func TestApprovalAPI_SubmitAndApprove(t *testing.T) {
	router, _ := setupRouter(t)
	id := createViaAPI(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/approvals/%d/submit", id), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// 重复提交返回 409
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/approvals/%d/submit", id), nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// 审批通过
	payload := bytes.NewBufferString(`{"approver_id": 200}`)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/approvals/%d/approve", id), payload)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data model.ApprovalRequestModel `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(model.StatusApproved), resp.Data.CurrentStatus)
	assert.NotNil(t, resp.Data.CompletedAt)
}

// TestApprovalAPI_NotFound 测试不存在的申请返回 404
func TestApprovalAPI_NotFound(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/approvals/9999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/approvals/9999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestApprovalAPI_InvalidID 测试非法 ID 返回 400
func TestApprovalAPI_InvalidID(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/approvals/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestDepartmentAPI_Cascader 测试部门级联格式
func TestDepartmentAPI_Cascader(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/departments?format=cascader", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []struct {
			Title string `json:"title"`
			Key   string `json:"key"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "技术中心", resp.Data[0].Title)
	assert.Equal(t, "1", resp.Data[0].Key)
}
