package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/service"
)

// CompanyHandler 公司/成本中心处理器
type CompanyHandler struct {
	svc *service.CompanyService
}

func NewCompanyHandler(svc *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{svc: svc}
}

// ListCompanies 公司列表
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), GetTenantID(c))
	if err != nil {
		InternalError(c, "获取公司列表失败: "+err.Error())
		return
	}
	Success(c, items)
}

// GetCompany 公司详情
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	company, err := h.svc.Get(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		NotFound(c, "公司不存在")
		return
	}
	Success(c, company)
}

// CreateCompany 创建公司
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req service.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	company, err := h.svc.Create(c.Request.Context(), GetTenantID(c), GetUserID(c), &req)
	if err != nil {
		InternalError(c, "创建公司失败: "+err.Error())
		return
	}
	Created(c, company)
}

// UpdateCompany 更新公司
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	var req service.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	company, err := h.svc.Update(c.Request.Context(), GetTenantID(c), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "公司不存在")
			return
		}
		InternalError(c, "更新公司失败: "+err.Error())
		return
	}
	Success(c, company)
}

// DeleteCompany 删除公司
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "公司不存在")
			return
		}
		InternalError(c, "删除公司失败: "+err.Error())
		return
	}
	Success(c, nil)
}

// AddCostCenter 添加成本中心
func (h *CompanyHandler) AddCostCenter(c *gin.Context) {
	var req service.CreateCostCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	cc, err := h.svc.AddCostCenter(c.Request.Context(), GetTenantID(c), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "公司不存在")
			return
		}
		InternalError(c, "创建成本中心失败: "+err.Error())
		return
	}
	Created(c, cc)
}

// RemoveCostCenter 删除成本中心
func (h *CompanyHandler) RemoveCostCenter(c *gin.Context) {
	if err := h.svc.RemoveCostCenter(c.Request.Context(), GetTenantID(c), c.Param("ccId")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "成本中心不存在")
			return
		}
		InternalError(c, "删除成本中心失败: "+err.Error())
		return
	}
	Success(c, nil)
}
