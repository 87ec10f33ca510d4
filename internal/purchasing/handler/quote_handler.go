package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/service"
)

// QuoteHandler 报价单处理器
type QuoteHandler struct {
	svc *service.QuoteService
}

func NewQuoteHandler(svc *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{svc: svc}
}

// ListQuotes 报价单列表
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":      c.Query("status"),
		"supplier_id": c.Query("supplier_id"),
		"search":      c.Query("search"),
	}

	result, err := h.svc.List(c.Request.Context(), GetTenantID(c), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取报价单列表失败: "+err.Error())
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

// GetQuote 报价单详情
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	quote, err := h.svc.Get(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		NotFound(c, "报价单不存在")
		return
	}
	Success(c, quote)
}

// CreateQuote 创建报价单
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req service.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	quote, err := h.svc.Create(c.Request.Context(), GetTenantID(c), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, "创建报价单失败: "+err.Error())
		return
	}
	Created(c, quote)
}

// UpdateQuoteStatusRequest 更新报价单状态请求
type UpdateQuoteStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateQuoteStatus 接受/拒绝报价单
func (h *QuoteHandler) UpdateQuoteStatus(c *gin.Context) {
	var req UpdateQuoteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	quote, err := h.svc.UpdateStatus(c.Request.Context(), GetTenantID(c), c.Param("id"), req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "报价单不存在")
			return
		}
		BadRequest(c, "更新报价单失败: "+err.Error())
		return
	}
	Success(c, quote)
}

// UploadQuoteAttachment 上传报价附件（multipart表单，字段file）
func (h *QuoteHandler) UploadQuoteAttachment(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "必须上传附件文件")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "读取附件失败: "+err.Error())
		return
	}
	defer file.Close()

	quote, err := h.svc.AttachDocument(c.Request.Context(), GetTenantID(c), c.Param("id"), &service.FileUpload{
		Reader:      file,
		Name:        fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "报价单不存在")
			return
		}
		BadRequest(c, "上传附件失败: "+err.Error())
		return
	}
	Success(c, quote)
}

// DeleteQuote 删除报价单
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "报价单不存在")
			return
		}
		InternalError(c, "删除报价单失败: "+err.Error())
		return
	}
	Success(c, nil)
}
