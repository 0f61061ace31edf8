package utils

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// ErrEmptyProjectName 项目名称为空
	ErrEmptyProjectName = errors.New("project name is empty")
	// ErrProjectNameTooLong 项目名称超长
	ErrProjectNameTooLong = errors.New("project name exceeds 255 characters")
	// ErrContentTooLong 审批内容超长
	ErrContentTooLong = errors.New("approval content exceeds 300 characters")
	// ErrEmptyFileName 文件名为空
	ErrEmptyFileName = errors.New("file name is empty")
)

// fileNameUnsafe 对象键中需要替换的字符
var fileNameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ValidateProjectName 验证审批项目名称,返回去除首尾空白后的名称
func ValidateProjectName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyProjectName
	}
	if utf8.RuneCountInString(trimmed) > 255 {
		return "", ErrProjectNameTooLong
	}
	return trimmed, nil
}

// ValidateApprovalContent 验证审批内容,内容可为空但不超过 300 字
func ValidateApprovalContent(content string) error {
	if utf8.RuneCountInString(content) > 300 {
		return ErrContentTooLong
	}
	return nil
}

// SanitizeFileName 清理文件名,保证可以安全拼入对象存储键
func SanitizeFileName(name string) string {
	// 去掉路径部分,只保留文件名
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}
	sanitized := fileNameUnsafe.ReplaceAllString(name, "_")
	if sanitized == "" {
		sanitized = "file"
	}
	return sanitized
}

// ValidateFileName 验证上传文件名
func ValidateFileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyFileName
	}
	return nil
}
