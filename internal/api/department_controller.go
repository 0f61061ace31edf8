package api

import (
	"github.com/a11enyan97/enterprise-approval-sys/internal/service"
	"github.com/gin-gonic/gin"
)

// DepartmentController 部门控制器
type DepartmentController struct {
	deptService service.DepartmentService
}

// NewDepartmentController 创建部门控制器
func NewDepartmentController(deptService service.DepartmentService) *DepartmentController {
	return &DepartmentController{deptService: deptService}
}

// List 查询部门
// @Summary      查询启用部门
// @Description  format=cascader 返回级联选择树,默认返回平铺列表
// @Tags         部门管理
// @Produce      json
// @Param        format query string false "返回格式: cascader 或 list"
// @Success      200  {object}  Response
// @Router       /departments [get]
func (dc *DepartmentController) List(c *gin.Context) {
	if c.Query("format") == "cascader" {
		tree, err := dc.deptService.FilterTree(c.Request.Context())
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		Success(c, tree)
		return
	}

	depts, err := dc.deptService.ListEnabled(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, depts)
}
