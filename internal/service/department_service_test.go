package service_test

import (
	"context"
	"testing"

	"github.com/a11enyan97/enterprise-approval-sys/internal/model"
	"github.com/a11enyan97/enterprise-approval-sys/internal/repository"
	"github.com/a11enyan97/enterprise-approval-sys/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeptService(t *testing.T) service.DepartmentService {
	db := setupTestDB(t)
	seedDeptTree(t, db)
	return service.NewDepartmentService(db, repository.NewDepartmentRepository(db))
}

// TestDepartmentService_ResolvePath_Level2 测试解析二级部门路径
func TestDepartmentService_ResolvePath_Level2(t *testing.T) {
	svc := newDeptService(t)

	path, err := svc.ResolvePath(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, "技术中心/平台部", path.FullPath)
	require.NotNil(t, path.Level1ID)
	require.NotNil(t, path.Level2ID)
	assert.Equal(t, int64(1), *path.Level1ID)
	assert.Equal(t, int64(2), *path.Level2ID)
	assert.Nil(t, path.Level3ID)
}

// TestDepartmentService_ResolvePath_Level3 测试解析三级部门路径
func TestDepartmentService_ResolvePath_Level3(t *testing.T) {
	svc := newDeptService(t)

	path, err := svc.ResolvePath(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, "技术中心/平台部/基础架构组", path.FullPath)
	require.NotNil(t, path.Level3ID)
	assert.Equal(t, int64(3), *path.Level3ID)
}

// TestDepartmentService_ResolvePath_NotFound 测试解析不存在的部门
func TestDepartmentService_ResolvePath_NotFound(t *testing.T) {
	svc := newDeptService(t)

	_, err := svc.ResolvePath(context.Background(), 999)
	require.Error(t, err)
	se, ok := service.AsError(err)
	require.True(t, ok)
	assert.Equal(t, service.CodeNotFound, se.Code)
}

// TestDepartmentService_ResolvePath_Disabled 测试解析已禁用的部门
func TestDepartmentService_ResolvePath_Disabled(t *testing.T) {
	svc := newDeptService(t)

	_, err := svc.ResolvePath(context.Background(), 5)
	require.Error(t, err)
	se, ok := service.AsError(err)
	require.True(t, ok)
	assert.Equal(t, service.CodeNotFound, se.Code)
}

// TestDepartmentService_FilterTree 测试级联选择树构建
func TestDepartmentService_FilterTree(t *testing.T) {
	svc := newDeptService(t)

	tree, err := svc.FilterTree(context.Background())
	require.NoError(t, err)

	// 两个启用的根节点,禁用节点不出现
	require.Len(t, tree, 2)
	assert.Equal(t, "技术中心", tree[0].Title)
	assert.Equal(t, "1", tree[0].Key)
	assert.Equal(t, "市场中心", tree[1].Title)

	// 技术中心下只有平台部
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "平台部", tree[0].Children[0].Title)
	require.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, "基础架构组", tree[0].Children[0].Children[0].Title)

	assert.Empty(t, tree[1].Children)
}

// TestDepartmentService_NarrowFilter 测试部门筛选条件收窄
func TestDepartmentService_NarrowFilter(t *testing.T) {
	svc := newDeptService(t)
	ctx := context.Background()

	f1 := svc.NarrowFilter(ctx, 1)
	require.NotNil(t, f1)
	assert.Equal(t, "dept_level1_id", f1.Column)
	assert.Equal(t, int64(1), f1.Value)

	f2 := svc.NarrowFilter(ctx, 2)
	require.NotNil(t, f2)
	assert.Equal(t, "dept_level2_id", f2.Column)

	f3 := svc.NarrowFilter(ctx, 3)
	require.NotNil(t, f3)
	assert.Equal(t, "dept_level3_id", f3.Column)

	// 不存在或禁用的部门静默退化为不过滤
	assert.Nil(t, svc.NarrowFilter(ctx, 999))
	assert.Nil(t, svc.NarrowFilter(ctx, 5))
}

// TestDepartmentService_ListEnabled 测试启用部门列表
func TestDepartmentService_ListEnabled(t *testing.T) {
	svc := newDeptService(t)

	depts, err := svc.ListEnabled(context.Background())
	require.NoError(t, err)
	assert.Len(t, depts, 4)
	for _, d := range depts {
		assert.True(t, d.IsEnabled())
	}
}

// TestDepartment_DisabledStatusPersisted 测试禁用状态能通过 Create 落库
func TestDepartment_DisabledStatusPersisted(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewDepartmentService(db, repository.NewDepartmentRepository(db))

	require.NoError(t, db.Create(&model.DepartmentModel{
		ID: 10, DeptCode: "RETIRED", DeptName: "已裁撤部门", Level: 1, Status: model.DeptStatusDisabled,
	}).Error)

	var stored model.DepartmentModel
	require.NoError(t, db.First(&stored, 10).Error)
	assert.Equal(t, model.DeptStatusDisabled, stored.Status)
	assert.False(t, stored.IsEnabled())

	depts, err := svc.ListEnabled(context.Background())
	require.NoError(t, err)
	assert.Empty(t, depts)
}
