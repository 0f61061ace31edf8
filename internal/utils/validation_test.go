package utils_test

import (
	"strings"
	"testing"

	"github.com/a11enyan97/enterprise-approval-sys/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateProjectName 测试项目名称校验
func TestValidateProjectName(t *testing.T) {
	name, err := utils.ValidateProjectName("  数据中心扩容  ")
	require.NoError(t, err)
	assert.Equal(t, "数据中心扩容", name)

	_, err = utils.ValidateProjectName("   ")
	assert.ErrorIs(t, err, utils.ErrEmptyProjectName)

	_, err = utils.ValidateProjectName(strings.Repeat("长", 256))
	assert.ErrorIs(t, err, utils.ErrProjectNameTooLong)

	// 255 个字符恰好合法
	_, err = utils.ValidateProjectName(strings.Repeat("长", 255))
	assert.NoError(t, err)
}

// TestValidateApprovalContent 测试审批内容校验
func TestValidateApprovalContent(t *testing.T) {
	assert.NoError(t, utils.ValidateApprovalContent(""))
	assert.NoError(t, utils.ValidateApprovalContent(strings.Repeat("字", 300)))
	assert.ErrorIs(t, utils.ValidateApprovalContent(strings.Repeat("字", 301)), utils.ErrContentTooLong)
}

// TestSanitizeFileName 测试文件名清理
func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "report_2026.xlsx", utils.SanitizeFileName("report 2026.xlsx"))
	assert.Equal(t, "photo.png", utils.SanitizeFileName("../secret/photo.png"))
	assert.Equal(t, "photo.png", utils.SanitizeFileName(`C:\Users\photo.png`))
	assert.Equal(t, "__.png", utils.SanitizeFileName("截图.png"))
	assert.Equal(t, "file", utils.SanitizeFileName(""))
}

// TestValidateFileName 测试文件名校验
func TestValidateFileName(t *testing.T) {
	assert.NoError(t, utils.ValidateFileName("a.png"))
	assert.ErrorIs(t, utils.ValidateFileName("  "), utils.ErrEmptyFileName)
}
