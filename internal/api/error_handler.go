package api

import (
	"errors"
	"net/http"

	"github.com/a11enyan97/enterprise-approval-sys/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HandleServiceError 将服务层错误映射为 HTTP 响应
// 未识别的错误一律按内部错误处理,不向客户端泄露底层错误文本
func HandleServiceError(c *gin.Context, err error) {
	var uploadErr *service.UploadError
	if errors.As(err, &uploadErr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":     service.CodeUploadFailed,
			"message":  "附件上传失败",
			"failures": uploadErr.Failures,
		})
		return
	}

	if se, ok := service.AsError(err); ok {
		switch se.Code {
		case service.CodeNotFound:
			Fail(c, http.StatusNotFound, se.Code, se.Message, se.Field)
		case service.CodeInvalidState, service.CodeConflict:
			Fail(c, http.StatusConflict, se.Code, se.Message, se.Field)
		case service.CodeValidation:
			Fail(c, http.StatusBadRequest, se.Code, se.Message, se.Field)
		default:
			Fail(c, http.StatusInternalServerError, se.Code, se.Message, se.Field)
		}
		return
	}

	logrus.WithError(err).Error("未处理的服务错误")
	Fail(c, http.StatusInternalServerError, "INTERNAL", "服务内部错误", "")
}
