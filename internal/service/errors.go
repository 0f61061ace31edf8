package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// 业务错误码
const (
	CodeNotFound     = "NOT_FOUND"
	CodeInvalidState = "INVALID_STATE"
	CodeUploadFailed = "UPLOAD_FAILED"
	CodeConflict     = "CONFLICT"
	CodeValidation   = "VALIDATION"
)

// Error 业务错误,携带错误码与可选的字段名
type Error struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotFound 创建资源不存在错误
func NewNotFound(resource string, id interface{}) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s不存在: %v", resource, id)}
}

// NewInvalidState 创建状态不允许错误
func NewInvalidState(message string) *Error {
	return &Error{Code: CodeInvalidState, Message: message}
}

// NewValidation 创建参数校验错误
func NewValidation(field, message string) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: message}
}

// NewConflict 创建唯一性或引用冲突错误
func NewConflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// AsError 判断 err 是否为业务错误
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// FileFailure 单个文件的上传失败信息
type FileFailure struct {
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}

// UploadError 附件批量上传失败,汇总每个失败文件的原因
type UploadError struct {
	Failures []FileFailure `json:"failures"`
}

func (e *UploadError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.FileName, f.Reason))
	}
	return fmt.Sprintf("%s: 附件上传失败: %s", CodeUploadFailed, strings.Join(parts, "; "))
}

// translateDBError 将数据库约束错误翻译为业务冲突错误,其余原样返回
func translateDBError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return NewConflict("记录已存在,唯一键冲突")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return NewConflict("关联记录不存在或仍被引用")
	default:
		return err
	}
}
