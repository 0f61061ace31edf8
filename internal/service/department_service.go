package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/a11enyan97/enterprise-approval-sys/internal/model"
	"github.com/a11enyan97/enterprise-approval-sys/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DeptPath 部门在组织树中的完整路径,以及逐级冗余的层级 ID
type DeptPath struct {
	FullPath string
	Level1ID *int64
	Level2ID *int64
	Level3ID *int64
}

// CascaderNode 级联选择器节点
type CascaderNode struct {
	Title    string          `json:"title"`
	Key      string          `json:"key"`
	Children []*CascaderNode `json:"children,omitempty"`
}

// DeptFilter 部门子树过滤条件,列名与过滤节点自身层级对应
type DeptFilter struct {
	Column string
	Value  int64
}

// DepartmentService 部门服务接口
type DepartmentService interface {
	// ResolvePath 解析部门完整路径与层级冗余列
	ResolvePath(ctx context.Context, deptID int64) (*DeptPath, error)
	// FilterTree 构建启用部门的级联选择树
	FilterTree(ctx context.Context) ([]*CascaderNode, error)
	// NarrowFilter 将部门筛选条件收窄为单列等值条件,部门无效时返回 nil
	NarrowFilter(ctx context.Context, deptID int64) *DeptFilter
	// ListEnabled 列出所有启用部门
	ListEnabled(ctx context.Context) ([]*model.DepartmentModel, error)
}

type departmentService struct {
	db       *gorm.DB
	deptRepo repository.DepartmentRepository
}

// NewDepartmentService 创建部门服务实例
func NewDepartmentService(db *gorm.DB, deptRepo repository.DepartmentRepository) DepartmentService {
	return &departmentService{db: db, deptRepo: deptRepo}
}

// ResolvePath 从目标部门沿 parent_id 逐级上溯到根,拼出完整路径
// 路径中任何一级被禁用或缺失都视为部门不可用
func (s *departmentService) ResolvePath(ctx context.Context, deptID int64) (*DeptPath, error) {
	// 1. 上溯收集祖先链,带深度护栏防御脏数据成环
	chain := make([]*model.DepartmentModel, 0, model.MaxDeptLevel)
	seen := make(map[int64]bool)
	currentID := &deptID

	for currentID != nil {
		if seen[*currentID] || len(chain) >= model.MaxDeptLevel {
			logrus.WithField("dept_id", deptID).Error("部门层级数据异常,存在环或超出最大深度")
			return nil, NewInvalidState("部门层级数据异常")
		}
		seen[*currentID] = true

		dept, err := s.deptRepo.FindByID(*currentID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, NewNotFound("部门", *currentID)
			}
			return nil, err
		}
		if !dept.IsEnabled() {
			return nil, NewNotFound("部门", *currentID)
		}
		chain = append(chain, dept)
		currentID = dept.ParentID
	}

	// 2. 反转为根到叶的顺序
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	// 3. 按节点自身声明的层级填充冗余列
	path := &DeptPath{}
	names := make([]string, 0, len(chain))
	for _, dept := range chain {
		names = append(names, dept.DeptName)
		id := dept.ID
		switch dept.Level {
		case 1:
			path.Level1ID = &id
		case 2:
			path.Level2ID = &id
		case 3:
			path.Level3ID = &id
		}
	}
	path.FullPath = strings.Join(names, "/")
	return path, nil
}

// FilterTree 两遍扫描构建树: 先建节点索引,再挂父子关系
// 父节点被禁用的子节点不会出现在树中
func (s *departmentService) FilterTree(ctx context.Context) ([]*CascaderNode, error) {
	depts, err := s.deptRepo.FindEnabled()
	if err != nil {
		return nil, err
	}

	nodes := make(map[int64]*CascaderNode, len(depts))
	for _, dept := range depts {
		nodes[dept.ID] = &CascaderNode{
			Title: dept.DeptName,
			Key:   strconv.FormatInt(dept.ID, 10),
		}
	}

	roots := make([]*CascaderNode, 0)
	for _, dept := range depts {
		node := nodes[dept.ID]
		if dept.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*dept.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}
	return roots, nil
}

// NarrowFilter 查出过滤部门自身的层级,返回对应冗余列上的等值条件
// 部门不存在或已禁用时静默退化为不过滤
func (s *departmentService) NarrowFilter(ctx context.Context, deptID int64) *DeptFilter {
	dept, err := s.deptRepo.FindByID(deptID)
	if err != nil {
		if !repository.IsNotFound(err) {
			logrus.WithError(err).WithField("dept_id", deptID).Warn("查询过滤部门失败,忽略部门条件")
		}
		return nil
	}
	if !dept.IsEnabled() {
		return nil
	}

	switch dept.Level {
	case 1:
		return &DeptFilter{Column: "dept_level1_id", Value: dept.ID}
	case 2:
		return &DeptFilter{Column: "dept_level2_id", Value: dept.ID}
	case 3:
		return &DeptFilter{Column: "dept_level3_id", Value: dept.ID}
	default:
		return nil
	}
}

// ListEnabled 列出所有启用部门,按层级和排序号排列
func (s *departmentService) ListEnabled(ctx context.Context) ([]*model.DepartmentModel, error) {
	return s.deptRepo.FindEnabled()
}
