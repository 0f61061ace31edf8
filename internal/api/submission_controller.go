package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/a11enyan97/enterprise-approval-sys/internal/service"
	"github.com/gin-gonic/gin"
)

// SubmissionController 表单提交控制器
type SubmissionController struct {
	submissionService service.SubmissionService
}

// NewSubmissionController 创建表单提交控制器
func NewSubmissionController(submissionService service.SubmissionService) *SubmissionController {
	return &SubmissionController{submissionService: submissionService}
}

// parseDerivedFields 从 multipart 表单解析审批派生字段
func parseDerivedFields(c *gin.Context) (service.DerivedApprovalFields, bool) {
	derived := service.DerivedApprovalFields{
		ProjectName:     c.PostForm("project_name"),
		ApprovalContent: c.PostForm("approval_content"),
	}
	executeDate, err := time.Parse(dateLayout, c.PostForm("execute_date"))
	if err != nil {
		Fail(c, http.StatusBadRequest, service.CodeValidation, "执行日期格式应为 YYYY-MM-DD", "executeDate")
		return derived, false
	}
	derived.ExecuteDate = executeDate

	if raw := c.PostForm("dept_id"); raw != "" {
		deptID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || deptID <= 0 {
			Fail(c, http.StatusBadRequest, service.CodeValidation, "无效的部门 ID", "deptId")
			return derived, false
		}
		derived.DeptID = &deptID
	}
	return derived, true
}

// parseFormData 校验并返回表单数据 JSON
func parseFormData(c *gin.Context) ([]byte, bool) {
	raw := c.PostForm("data")
	if raw == "" {
		raw = "{}"
	}
	if !json.Valid([]byte(raw)) {
		Fail(c, http.StatusBadRequest, service.CodeValidation, "表单数据不是合法 JSON", "data")
		return nil, false
	}
	return []byte(raw), true
}

// Create 创建表单提交
// @Summary      创建表单提交
// @Description  创建表单提交记录并同时生成关联的审批申请
// @Tags         表单提交
// @Accept       multipart/form-data
// @Produce      json
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /submissions [post]
func (sc *SubmissionController) Create(c *gin.Context) {
	submittedBy, err := strconv.ParseInt(c.PostForm("submitted_by"), 10, 64)
	if err != nil || submittedBy <= 0 {
		Fail(c, http.StatusBadRequest, service.CodeValidation, "无效的提交人 ID", "submittedBy")
		return
	}
	templateID := c.PostForm("template_id")
	if templateID == "" {
		Fail(c, http.StatusBadRequest, service.CodeValidation, "表单模板 ID 不能为空", "templateId")
		return
	}

	derived, ok := parseDerivedFields(c)
	if !ok {
		return
	}
	data, ok := parseFormData(c)
	if !ok {
		return
	}
	files, err := collectFiles(c)
	if err != nil {
		Fail(c, http.StatusBadRequest, service.CodeValidation, "附件数据无效: "+err.Error(), "files")
		return
	}

	result, err := sc.submissionService.CreateWithApproval(c.Request.Context(), service.CreateSubmissionInput{
		TemplateID:  templateID,
		Data:        data,
		SubmittedBy: submittedBy,
		Derived:     derived,
		Files:       files,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, result)
}

// Get 查询表单提交详情
// @Summary      查询表单提交详情
// @Tags         表单提交
// @Produce      json
// @Param        id path string true "提交记录 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /submissions/{id} [get]
func (sc *SubmissionController) Get(c *gin.Context) {
	result, err := sc.submissionService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, result)
}

// List 分页查询表单提交
// @Summary      分页查询表单提交
// @Tags         表单提交
// @Produce      json
// @Param        template_id query string false "模板 ID"
// @Param        status query string false "处理状态"
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200  {object}  PaginatedResponse
// @Router       /submissions [get]
func (sc *SubmissionController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	filter := service.SubmissionFilter{
		TemplateID: c.Query("template_id"),
		Status:     c.Query("status"),
	}
	if raw := c.Query("submitted_by"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.SubmittedBy = v
		}
	}

	items, total, err := sc.submissionService.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Paginated(c, items, NewPaginationInfo(page, pageSize, total))
}

// Update 更新表单提交
// @Summary      更新表单提交
// @Description  更新提交数据并同步更新关联的审批申请,附件整体替换
// @Tags         表单提交
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "提交记录 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /submissions/{id} [put]
func (sc *SubmissionController) Update(c *gin.Context) {
	updaterID, err := strconv.ParseInt(c.PostForm("updater_id"), 10, 64)
	if err != nil || updaterID <= 0 {
		Fail(c, http.StatusBadRequest, service.CodeValidation, "无效的更新人 ID", "updaterId")
		return
	}

	derived, ok := parseDerivedFields(c)
	if !ok {
		return
	}
	data, ok := parseFormData(c)
	if !ok {
		return
	}
	files, err := collectFiles(c)
	if err != nil {
		Fail(c, http.StatusBadRequest, service.CodeValidation, "附件数据无效: "+err.Error(), "files")
		return
	}

	result, err := sc.submissionService.UpdateWithApproval(c.Request.Context(), c.Param("id"), service.UpdateSubmissionInput{
		Data:      data,
		UpdaterID: updaterID,
		Derived:   derived,
		Files:     files,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, result)
}
