package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/service"
)

// ExpenseHandler 支出处理器
type ExpenseHandler struct {
	svc *service.ExpenseService
}

func NewExpenseHandler(svc *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{svc: svc}
}

// ListExpenses 支出列表
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"company_id": c.Query("company_id"),
		"category":   c.Query("category"),
		"paid":       c.Query("paid"),
		"from":       c.Query("from"),
		"to":         c.Query("to"),
	}

	result, err := h.svc.List(c.Request.Context(), GetTenantID(c), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取支出列表失败: "+err.Error())
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

// GetExpense 支出详情
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	expense, err := h.svc.Get(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		NotFound(c, "支出不存在")
		return
	}
	Success(c, expense)
}

// CreateExpense 创建支出
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	expense, err := h.svc.Create(c.Request.Context(), GetTenantID(c), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, "创建支出失败: "+err.Error())
		return
	}
	Created(c, expense)
}

// UpdateExpense 更新支出
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	var req service.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	expense, err := h.svc.Update(c.Request.Context(), GetTenantID(c), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "支出不存在")
			return
		}
		BadRequest(c, "更新支出失败: "+err.Error())
		return
	}
	Success(c, expense)
}

// DeleteExpense 删除支出
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "支出不存在")
			return
		}
		BadRequest(c, "删除支出失败: "+err.Error())
		return
	}
	Success(c, nil)
}
