package api

import (
	"net/http"

	"github.com/a11enyan97/enterprise-approval-sys/internal/service"
	"github.com/a11enyan97/enterprise-approval-sys/internal/storage"
	"github.com/gin-gonic/gin"
)

// AttachmentController 附件控制器
type AttachmentController struct {
	store storage.ObjectStorage
}

// NewAttachmentController 创建附件控制器
func NewAttachmentController(store storage.ObjectStorage) *AttachmentController {
	return &AttachmentController{store: store}
}

// tokenRequest 上传凭证请求体
type tokenRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// Token 获取上传凭证
// @Summary      获取附件上传凭证
// @Description  返回预签名上传地址与访问地址,客户端直传对象存储
// @Tags         附件管理
// @Accept       json
// @Produce      json
// @Param        request body tokenRequest true "文件信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /attachments/token [post]
func (ac *AttachmentController) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, service.CodeValidation, "无效的请求体: "+err.Error(), "")
		return
	}

	cred, err := ac.store.SignPutURL(c.Request.Context(), req.FileName, req.ContentType)
	if err != nil {
		Fail(c, http.StatusInternalServerError, service.CodeUploadFailed, "获取上传凭证失败", "")
		return
	}
	Success(c, cred)
}
