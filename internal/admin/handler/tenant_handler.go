package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/service"
)

// TenantHandler 租户/许可证处理器
type TenantHandler struct {
	svc *service.TenantService
}

func NewTenantHandler(svc *service.TenantService) *TenantHandler {
	return &TenantHandler{svc: svc}
}

// ListTenants 租户列表
func (h *TenantHandler) ListTenants(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"license_status": c.Query("license_status"),
		"search":         c.Query("search"),
	}

	result, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取租户列表失败: "+err.Error())
		return
	}

	Success(c, ListResponse{
		Items: result.Items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(result.Total),
			TotalPages: TotalPages(result.Total, pageSize),
		},
	})
}

// GetTenant 租户详情
func (h *TenantHandler) GetTenant(c *gin.Context) {
	tenant, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "租户不存在")
		return
	}
	Success(c, tenant)
}

// CreateTenant 创建租户
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	var req service.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	tenant, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, "创建租户失败: "+err.Error())
		return
	}
	Created(c, tenant)
}

// UpdateTenant 更新租户
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	var req service.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	tenant, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "租户不存在")
			return
		}
		InternalError(c, "更新租户失败: "+err.Error())
		return
	}
	Success(c, tenant)
}

// RenewTenantRequest 续期请求
type RenewTenantRequest struct {
	ExpiresAt string `json:"expires_at" binding:"required"` // YYYY-MM-DD
}

// RenewTenant 续期许可证
func (h *TenantHandler) RenewTenant(c *gin.Context) {
	var req RenewTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	expiresAt, err := time.Parse("2006-01-02", req.ExpiresAt)
	if err != nil {
		BadRequest(c, "到期日期格式无效: "+req.ExpiresAt)
		return
	}

	tenant, err := h.svc.Renew(c.Request.Context(), c.Param("id"), expiresAt)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "租户不存在")
			return
		}
		BadRequest(c, "续期失败: "+err.Error())
		return
	}
	Success(c, tenant)
}

// SuspendTenant 暂停许可证
func (h *TenantHandler) SuspendTenant(c *gin.Context) {
	tenant, err := h.svc.Suspend(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "租户不存在")
			return
		}
		InternalError(c, "暂停失败: "+err.Error())
		return
	}
	Success(c, tenant)
}

// ActivateTenant 恢复许可证
func (h *TenantHandler) ActivateTenant(c *gin.Context) {
	tenant, err := h.svc.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "租户不存在")
			return
		}
		InternalError(c, "恢复失败: "+err.Error())
		return
	}
	Success(c, tenant)
}

// DeleteTenant 删除租户及全部业务数据
func (h *TenantHandler) DeleteTenant(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "租户不存在")
			return
		}
		InternalError(c, "删除租户失败: "+err.Error())
		return
	}
	Success(c, nil)
}

// SweepExpired 标记到期租户
func (h *TenantHandler) SweepExpired(c *gin.Context) {
	count, err := h.svc.SweepExpired(c.Request.Context())
	if err != nil {
		InternalError(c, "处理到期租户失败: "+err.Error())
		return
	}
	Success(c, gin.H{"expired": count})
}
