package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/a11enyan97/enterprise-approval-sys/internal/model"
	"github.com/a11enyan97/enterprise-approval-sys/internal/service"
	"github.com/a11enyan97/enterprise-approval-sys/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 创建内存测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.UserModel{},
		&model.DepartmentModel{},
		&model.FormTemplateModel{},
		&model.FormSubmissionModel{},
		&model.ApprovalRequestModel{},
		&model.ApprovalAttachmentModel{},
	)
	require.NoError(t, err)

	return db
}

// seedUser 写入测试用户
func seedUser(t *testing.T, db *gorm.DB, id int64) *model.UserModel {
	user := &model.UserModel{
		ID:       id,
		Username: fmt.Sprintf("user%d", id),
		RealName: fmt.Sprintf("测试用户%d", id),
		Status:   1,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// seedDeptTree 写入三级部门树:
//
//	1 技术中心 (level 1)
//	  2 平台部 (level 2)
//	    3 基础架构组 (level 3)
//	4 市场中心 (level 1)
//	5 已停用部 (level 2, disabled, parent 1)
func seedDeptTree(t *testing.T, db *gorm.DB) {
	id1, id2 := int64(1), int64(2)
	depts := []*model.DepartmentModel{
		{ID: 1, DeptCode: "TECH", DeptName: "技术中心", Level: 1, SortOrder: 1, Status: model.DeptStatusEnabled},
		{ID: 2, DeptCode: "PLATFORM", DeptName: "平台部", ParentID: &id1, Level: 2, SortOrder: 1, Status: model.DeptStatusEnabled},
		{ID: 3, DeptCode: "INFRA", DeptName: "基础架构组", ParentID: &id2, Level: 3, SortOrder: 1, Status: model.DeptStatusEnabled},
		{ID: 4, DeptCode: "MARKET", DeptName: "市场中心", Level: 1, SortOrder: 2, Status: model.DeptStatusEnabled},
		{ID: 5, DeptCode: "LEGACY", DeptName: "已停用部", ParentID: &id1, Level: 2, SortOrder: 9, Status: model.DeptStatusDisabled},
	}
	for _, d := range depts {
		require.NoError(t, db.Create(d).Error)
	}
}

// fakeStorage 测试用对象存储,记录签名与删除调用
type fakeStorage struct {
	mu        sync.Mutex
	uploadURL string // 预签名上传地址指向的测试服务器
	signErr   map[string]error
	deleted   []string
	deleteErr error
}

func newFakeStorage(uploadURL string) *fakeStorage {
	return &fakeStorage{
		uploadURL: uploadURL,
		signErr:   make(map[string]error),
	}
}

func (f *fakeStorage) SignPutURL(ctx context.Context, fileName, contentType string) (*storage.UploadCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.signErr[fileName]; ok {
		return nil, err
	}
	key := "uploads/" + fileName
	return &storage.UploadCredential{
		UploadURL: f.uploadURL + "/" + fileName,
		PublicURL: "https://cdn.example.com/" + key,
		ObjectKey: key,
	}, nil
}

func (f *fakeStorage) DeleteObjects(ctx context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, keys...)
	return nil
}

func (f *fakeStorage) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// stubUpload 跳过真实上传的附件服务,直接把输入转为附件记录
type stubUpload struct{}

func (stubUpload) Run(ctx context.Context, files []service.PendingFile, defaultKind string) ([]service.AttachmentInput, error) {
	inputs := make([]service.AttachmentInput, 0, len(files))
	for _, f := range files {
		kind := f.AttachmentType
		if kind == "" {
			kind = defaultKind
		}
		path := f.FileURL
		if path == "" {
			path = "https://cdn.example.com/uploads/" + f.FileName
		}
		inputs = append(inputs, service.AttachmentInput{
			FilePath:       path,
			FileName:       f.FileName,
			AttachmentType: kind,
			FileSize:       f.FileSize,
			MimeType:       f.ContentType,
		})
	}
	return inputs, nil
}
