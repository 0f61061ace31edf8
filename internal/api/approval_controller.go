package api

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a11enyan97/enterprise-approval-sys/internal/model"
	"github.com/a11enyan97/enterprise-approval-sys/internal/service"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// ApprovalController 审批申请控制器
type ApprovalController struct {
	approvalService service.ApprovalService
	queryService    service.QueryService
}

// NewApprovalController 创建审批申请控制器
func NewApprovalController(approvalService service.ApprovalService, queryService service.QueryService) *ApprovalController {
	return &ApprovalController{
		approvalService: approvalService,
		queryService:    queryService,
	}
}

// keptFile 编辑时沿用的已上传附件
type keptFile struct {
	FileName       string `json:"fileName"`
	FileURL        string `json:"fileUrl"`
	FileSize       int64  `json:"fileSize"`
	MimeType       string `json:"mimeType"`
	AttachmentType string `json:"attachmentType"`
}

// parseID 解析路径中的数字 ID
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		Fail(c, http.StatusBadRequest, service.CodeValidation, "无效的申请 ID", "id")
		return 0, false
	}
	return id, true
}

// collectFiles 从 multipart 表单收集新上传文件与沿用文件
// 附件类型按内容类型推断: 图片为 image,其余为 table
func collectFiles(c *gin.Context) ([]service.PendingFile, error) {
	var files []service.PendingFile

	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, err
	}

	for _, fh := range form.File["files"] {
		data, contentType, err := readMultipartFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, service.PendingFile{
			FileName:       fh.Filename,
			ContentType:    contentType,
			Data:           data,
			FileSize:       int64(len(data)),
			AttachmentType: attachmentTypeFor(contentType),
		})
	}

	// 沿用的旧文件以 JSON 形式携带,不再重复上传
	if raw := c.PostForm("keep_files"); raw != "" {
		var kept []keptFile
		if err := json.Unmarshal([]byte(raw), &kept); err != nil {
			return nil, err
		}
		for _, k := range kept {
			files = append(files, service.PendingFile{
				FileName:       k.FileName,
				ContentType:    k.MimeType,
				FileURL:        k.FileURL,
				FileSize:       k.FileSize,
				AttachmentType: k.AttachmentType,
			})
		}
	}
	return files, nil
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

func attachmentTypeFor(contentType string) string {
	if strings.HasPrefix(contentType, "image/") {
		return model.AttachmentTypeImage
	}
	return model.AttachmentTypeTable
}

// Create 创建审批申请
// @Summary      创建审批申请
// @Description  创建草稿状态的审批申请,可同时上传附件
// @Tags         审批管理
// @Accept       multipart/form-data
// @Produce      json
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /approvals [post]
func (ac *ApprovalController) Create(c *gin.Context) {
	applicantID, err := strconv.ParseInt(c.PostForm("applicant_id"), 10, 64)
	if err != nil || applicantID <= 0 {
		Fail(c, http.StatusBadRequest, service.CodeValidation, "无效的申请人 ID", "applicantId")
		return
	}
	executeDate, err := time.Parse(dateLayout, c.PostForm("execute_date"))
	if err != nil {
		Fail(c, http.StatusBadRequest, service.CodeValidation, "执行日期格式应为 YYYY-MM-DD", "executeDate")
		return
	}

	input := service.CreateApprovalInput{
		ProjectName:     c.PostForm("project_name"),
		ApprovalContent: c.PostForm("approval_content"),
		ExecuteDate:     executeDate,
		ApplicantID:     applicantID,
	}
	if raw := c.PostForm("dept_id"); raw != "" {
		deptID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || deptID <= 0 {
			Fail(c, http.StatusBadRequest, service.CodeValidation, "无效的部门 ID", "deptId")
			return
		}
		input.DeptID = &deptID
	}

	files, err := collectFiles(c)
	if err != nil {
		Fail(c, http.StatusBadRequest, service.CodeValidation, "附件数据无效: "+err.Error(), "files")
		return
	}
	input.Files = files

	request, err := ac.approvalService.Create(c.Request.Context(), input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, request)
}

// Get 获取审批申请详情
// @Summary      获取审批申请详情
// @Tags         审批管理
// @Produce      json
// @Param        id path int true "申请 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /approvals/{id} [get]
func (ac *ApprovalController) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	request, err := ac.approvalService.Get(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, request)
}

// List 分页查询审批申请
// @Summary      分页查询审批申请
// @Description  支持按状态、部门子树、项目名称与日期范围过滤
// @Tags         审批管理
// @Produce      json
// @Param        status query string false "审批状态"
// @Param        dept_id query int false "部门 ID,命中该部门及其全部子部门"
// @Param        project_name query string false "项目名称模糊匹配"
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200  {object}  PaginatedResponse
// @Router       /approvals [get]
func (ac *ApprovalController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	filter := service.ApprovalListFilter{
		Status:      c.Query("status"),
		ProjectName: c.Query("project_name"),
	}
	if raw := c.Query("applicant_id"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.ApplicantID = v
		}
	}
	if raw := c.Query("dept_id"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.DeptID = &v
		}
	}
	parseDateRange(c, "created_from", "created_to", &filter.CreatedFrom, &filter.CreatedTo)
	parseDateRange(c, "completed_from", "completed_to", &filter.CompletedFrom, &filter.CompletedTo)

	result, err := ac.queryService.ListApprovals(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Paginated(c, result.Items, NewPaginationInfo(result.Page, result.PageSize, result.Total))
}

// parseDateRange 解析一对日期查询参数,结束日期取当日末尾
func parseDateRange(c *gin.Context, fromKey, toKey string, from, to **time.Time) {
	if raw := c.Query(fromKey); raw != "" {
		if t, err := time.Parse(dateLayout, raw); err == nil {
			*from = &t
		}
	}
	if raw := c.Query(toKey); raw != "" {
		if t, err := time.Parse(dateLayout, raw); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			*to = &end
		}
	}
}

// Update 编辑审批申请
// @Summary      编辑审批申请
// @Description  仅草稿状态可编辑,携带附件时整体替换原有附件
// @Tags         审批管理
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path int true "申请 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /approvals/{id} [put]
func (ac *ApprovalController) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	input := service.UpdateApprovalInput{}
	if v, exists := c.GetPostForm("project_name"); exists {
		input.ProjectName = &v
	}
	if v, exists := c.GetPostForm("approval_content"); exists {
		input.ApprovalContent = &v
	}
	if v, exists := c.GetPostForm("execute_date"); exists {
		executeDate, err := time.Parse(dateLayout, v)
		if err != nil {
			Fail(c, http.StatusBadRequest, service.CodeValidation, "执行日期格式应为 YYYY-MM-DD", "executeDate")
			return
		}
		input.ExecuteDate = &executeDate
	}
	if v, exists := c.GetPostForm("dept_id"); exists && v != "" {
		deptID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || deptID <= 0 {
			Fail(c, http.StatusBadRequest, service.CodeValidation, "无效的部门 ID", "deptId")
			return
		}
		input.DeptID = &deptID
	}

	if c.PostForm("replace_files") == "true" {
		files, err := collectFiles(c)
		if err != nil {
			Fail(c, http.StatusBadRequest, service.CodeValidation, "附件数据无效: "+err.Error(), "files")
			return
		}
		input.Files = files
		input.ReplaceFiles = true
	}

	request, err := ac.approvalService.Update(c.Request.Context(), id, input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, request)
}

// Submit 提交审批申请
// @Summary      提交审批申请
// @Description  草稿转待审批
// @Tags         审批管理
// @Produce      json
// @Param        id path int true "申请 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /approvals/{id}/submit [post]
func (ac *ApprovalController) Submit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	request, err := ac.approvalService.Submit(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, request)
}

// decideRequest 审批处理请求体
type decideRequest struct {
	ApproverID int64 `json:"approver_id" binding:"required"`
}

// Approve 审批通过
// @Summary      审批通过
// @Tags         审批管理
// @Accept       json
// @Produce      json
// @Param        id path int true "申请 ID"
// @Param        request body decideRequest true "审批人"
// @Success      200  {object}  Response
// @Failure      409  {object}  ErrorResponse
// @Router       /approvals/{id}/approve [post]
func (ac *ApprovalController) Approve(c *gin.Context) {
	ac.decide(c, service.ActionApprove)
}

// Reject 审批拒绝
// @Summary      审批拒绝
// @Tags         审批管理
// @Accept       json
// @Produce      json
// @Param        id path int true "申请 ID"
// @Param        request body decideRequest true "审批人"
// @Success      200  {object}  Response
// @Failure      409  {object}  ErrorResponse
// @Router       /approvals/{id}/reject [post]
func (ac *ApprovalController) Reject(c *gin.Context) {
	ac.decide(c, service.ActionReject)
}

func (ac *ApprovalController) decide(c *gin.Context, action string) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, service.CodeValidation, "无效的请求体: "+err.Error(), "")
		return
	}
	request, err := ac.approvalService.Decide(c.Request.Context(), id, action, req.ApproverID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, request)
}

// Delete 删除审批申请
// @Summary      删除审批申请
// @Description  删除申请及其全部附件记录
// @Tags         审批管理
// @Produce      json
// @Param        id path int true "申请 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /approvals/{id} [delete]
func (ac *ApprovalController) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	request, err := ac.approvalService.Delete(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, request)
}
