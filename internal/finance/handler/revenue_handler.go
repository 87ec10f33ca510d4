package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/service"
)

// RevenueHandler 收入处理器
type RevenueHandler struct {
	svc *service.RevenueService
}

func NewRevenueHandler(svc *service.RevenueService) *RevenueHandler {
	return &RevenueHandler{svc: svc}
}

// ListRevenues 收入列表
func (h *RevenueHandler) ListRevenues(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"company_id": c.Query("company_id"),
		"category":   c.Query("category"),
		"received":   c.Query("received"),
		"from":       c.Query("from"),
		"to":         c.Query("to"),
	}

	result, err := h.svc.List(c.Request.Context(), GetTenantID(c), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取收入列表失败: "+err.Error())
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

// GetRevenue 收入详情
func (h *RevenueHandler) GetRevenue(c *gin.Context) {
	revenue, err := h.svc.Get(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		NotFound(c, "收入不存在")
		return
	}
	Success(c, revenue)
}

// CreateRevenue 创建收入
func (h *RevenueHandler) CreateRevenue(c *gin.Context) {
	var req service.CreateRevenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	revenue, err := h.svc.Create(c.Request.Context(), GetTenantID(c), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, "创建收入失败: "+err.Error())
		return
	}
	Created(c, revenue)
}

// UpdateRevenue 更新收入
func (h *RevenueHandler) UpdateRevenue(c *gin.Context) {
	var req service.UpdateRevenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	revenue, err := h.svc.Update(c.Request.Context(), GetTenantID(c), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "收入不存在")
			return
		}
		BadRequest(c, "更新收入失败: "+err.Error())
		return
	}
	Success(c, revenue)
}

// DeleteRevenue 删除收入
func (h *RevenueHandler) DeleteRevenue(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "收入不存在")
			return
		}
		InternalError(c, "删除收入失败: "+err.Error())
		return
	}
	Success(c, nil)
}
