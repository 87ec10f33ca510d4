package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/service"
)

// RoleHandler 角色权限处理器
type RoleHandler struct {
	svc *service.RoleService
}

func NewRoleHandler(svc *service.RoleService) *RoleHandler {
	return &RoleHandler{svc: svc}
}

// ListRoles 角色权限文档列表
func (h *RoleHandler) ListRoles(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), GetTenantID(c))
	if err != nil {
		InternalError(c, "获取角色权限失败: "+err.Error())
		return
	}
	Success(c, items)
}

// GetRole 指定角色的权限
func (h *RoleHandler) GetRole(c *gin.Context) {
	rp, err := h.svc.Get(c.Request.Context(), GetTenantID(c), c.Param("role"))
	if err != nil {
		InternalError(c, "获取角色权限失败: "+err.Error())
		return
	}
	Success(c, rp)
}

// UpsertRole 设置角色权限
func (h *RoleHandler) UpsertRole(c *gin.Context) {
	var req service.UpsertRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	rp, err := h.svc.Upsert(c.Request.Context(), GetTenantID(c), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, "设置角色权限失败: "+err.Error())
		return
	}
	Success(c, rp)
}

// MyPermissions 当前用户角色的权限键
func (h *RoleHandler) MyPermissions(c *gin.Context) {
	roles, _ := c.Get("roles")
	role := ""
	if rs, ok := roles.([]string); ok && len(rs) > 0 {
		role = rs[0]
	}

	perms, err := h.svc.MyPermissions(c.Request.Context(), GetTenantID(c), role)
	if err != nil {
		InternalError(c, "获取权限失败: "+err.Error())
		return
	}
	Success(c, perms)
}
