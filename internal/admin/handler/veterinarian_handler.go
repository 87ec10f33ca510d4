package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/service"
)

// VeterinarianHandler 兽医处理器
type VeterinarianHandler struct {
	svc *service.VeterinarianService
}

func NewVeterinarianHandler(svc *service.VeterinarianService) *VeterinarianHandler {
	return &VeterinarianHandler{svc: svc}
}

// ListVeterinarians 兽医列表
func (h *VeterinarianHandler) ListVeterinarians(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
		"search": c.Query("search"),
	}

	result, err := h.svc.List(c.Request.Context(), GetTenantID(c), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取兽医列表失败: "+err.Error())
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

// GetVeterinarian 兽医详情
func (h *VeterinarianHandler) GetVeterinarian(c *gin.Context) {
	vet, err := h.svc.Get(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		NotFound(c, "兽医不存在")
		return
	}
	Success(c, vet)
}

// CreateVeterinarian 创建兽医
func (h *VeterinarianHandler) CreateVeterinarian(c *gin.Context) {
	var req service.CreateVeterinarianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	vet, err := h.svc.Create(c.Request.Context(), GetTenantID(c), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, "创建兽医失败: "+err.Error())
		return
	}
	Created(c, vet)
}

// UpdateVeterinarian 更新兽医
func (h *VeterinarianHandler) UpdateVeterinarian(c *gin.Context) {
	var req service.UpdateVeterinarianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	vet, err := h.svc.Update(c.Request.Context(), GetTenantID(c), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "兽医不存在")
			return
		}
		BadRequest(c, "更新兽医失败: "+err.Error())
		return
	}
	Success(c, vet)
}

// DeleteVeterinarian 删除兽医
func (h *VeterinarianHandler) DeleteVeterinarian(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "兽医不存在")
			return
		}
		InternalError(c, "删除兽医失败: "+err.Error())
		return
	}
	Success(c, nil)
}

// SchedulePayment 登记兽医结算
func (h *VeterinarianHandler) SchedulePayment(c *gin.Context) {
	var req service.SchedulePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	expense, err := h.svc.SchedulePayment(c.Request.Context(), GetTenantID(c), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "兽医不存在")
			return
		}
		BadRequest(c, "登记结算失败: "+err.Error())
		return
	}
	Created(c, expense)
}
