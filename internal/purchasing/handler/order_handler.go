package handler

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/service"
)

// OrderHandler 采购订单处理器
type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// orderError 按错误类型映射响应
func orderError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "订单不存在")
	case errors.Is(err, repository.ErrConflict):
		Conflict(c, "订单已被其他操作修改，请刷新后重试")
	case errors.Is(err, entity.ErrInvalidTransition), errors.Is(err, entity.ErrGuardFailed):
		BadRequest(c, err.Error())
	default:
		InternalError(c, fallback+": "+err.Error())
	}
}

// ListOrders 订单列表
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":      c.Query("status"),
		"company_id":  c.Query("company_id"),
		"supplier_id": c.Query("supplier_id"),
		"from":        c.Query("from"),
		"to":          c.Query("to"),
		"search":      c.Query("search"),
	}

	result, err := h.svc.List(c.Request.Context(), GetTenantID(c), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取订单列表失败: "+err.Error())
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

// GetOrder 订单详情
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.svc.Get(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		NotFound(c, "订单不存在")
		return
	}
	Success(c, order)
}

// CreateOrder 创建订单
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	order, err := h.svc.Create(c.Request.Context(), GetTenantID(c), GetUserID(c), GetUserName(c), &req)
	if err != nil {
		BadRequest(c, "创建订单失败: "+err.Error())
		return
	}
	Created(c, order)
}

// UpdateOrderItems 更新订单行项
func (h *OrderHandler) UpdateOrderItems(c *gin.Context) {
	var req service.UpdateOrderItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	order, err := h.svc.UpdateItems(c.Request.Context(), GetTenantID(c), GetUserID(c), GetUserName(c), c.Param("id"), &req)
	if err != nil {
		orderError(c, err, "更新行项失败")
		return
	}
	Success(c, order)
}

// SubmitDocuments 提交单据（multipart表单）
// 表单字段: invoice(文件,必填) payout_method installments(JSON数组) boletos(文件,逐期)
func (h *OrderHandler) SubmitDocuments(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		BadRequest(c, "表单解析失败: "+err.Error())
		return
	}

	req := &service.SubmitDocumentsRequest{
		PayoutMethod: c.PostForm("payout_method"),
	}

	invoiceFiles := form.File["invoice"]
	if len(invoiceFiles) == 0 {
		BadRequest(c, "必须上传发票文件")
		return
	}
	invoiceHeader := invoiceFiles[0]
	invoiceFile, err := invoiceHeader.Open()
	if err != nil {
		InternalError(c, "读取发票文件失败: "+err.Error())
		return
	}
	defer invoiceFile.Close()
	req.Invoice = &service.FileUpload{
		Reader:      invoiceFile,
		Name:        invoiceHeader.Filename,
		Size:        invoiceHeader.Size,
		ContentType: invoiceHeader.Header.Get("Content-Type"),
	}

	if raw := c.PostForm("installments"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Installments); err != nil {
			BadRequest(c, "分期信息格式无效: "+err.Error())
			return
		}
	}

	for _, fh := range form.File["boletos"] {
		f, err := fh.Open()
		if err != nil {
			InternalError(c, "读取boleto文件失败: "+err.Error())
			return
		}
		defer f.Close()
		req.BoletoFiles = append(req.BoletoFiles, service.FileUpload{
			Reader:      f,
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}

	order, err := h.svc.SubmitDocuments(c.Request.Context(), GetTenantID(c), GetUserID(c), GetUserName(c), c.Param("id"), req)
	if err != nil {
		orderError(c, err, "提交单据失败")
		return
	}
	Success(c, order)
}

// ConfirmDelivery 确认收货
func (h *OrderHandler) ConfirmDelivery(c *gin.Context) {
	order, err := h.svc.ConfirmDelivery(c.Request.Context(), GetTenantID(c), GetUserID(c), GetUserName(c), c.Param("id"))
	if err != nil {
		orderError(c, err, "确认收货失败")
		return
	}
	Success(c, order)
}

// ApproveDocuments 审批单据
func (h *OrderHandler) ApproveDocuments(c *gin.Context) {
	order, err := h.svc.ApproveDocuments(c.Request.Context(), GetTenantID(c), GetUserID(c), GetUserName(c), c.Param("id"))
	if err != nil {
		orderError(c, err, "审批单据失败")
		return
	}
	Success(c, order)
}

// RejectOrder 驳回订单
func (h *OrderHandler) RejectOrder(c *gin.Context) {
	var req service.RejectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	order, err := h.svc.Reject(c.Request.Context(), GetTenantID(c), GetUserID(c), GetUserName(c), c.Param("id"), &req)
	if err != nil {
		orderError(c, err, "驳回订单失败")
		return
	}
	Success(c, order)
}

// SendToPayment 送交付款
func (h *OrderHandler) SendToPayment(c *gin.Context) {
	order, err := h.svc.SendToPayment(c.Request.Context(), GetTenantID(c), GetUserID(c), GetUserName(c), c.Param("id"))
	if err != nil {
		orderError(c, err, "送交付款失败")
		return
	}
	Success(c, order)
}

// CompleteOrder 付款完成
func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	order, err := h.svc.Complete(c.Request.Context(), GetTenantID(c), GetUserID(c), GetUserName(c), c.Param("id"))
	if err != nil {
		orderError(c, err, "完成订单失败")
		return
	}
	Success(c, order)
}

// SweepLate 扫描交付逾期订单
func (h *OrderHandler) SweepLate(c *gin.Context) {
	count, err := h.svc.SweepLate(c.Request.Context(), GetTenantID(c), GetUserID(c), GetUserName(c))
	if err != nil {
		InternalError(c, "扫描逾期订单失败: "+err.Error())
		return
	}
	Success(c, gin.H{"marked_late": count})
}

// DeleteOrder 删除订单（仅管理员）
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), GetUserID(c), GetUserName(c), c.Param("id")); err != nil {
		orderError(c, err, "删除订单失败")
		return
	}
	Success(c, nil)
}

// DownloadDocument 下载订单单据，kind为 nf 或 boleto-N
func (h *OrderHandler) DownloadDocument(c *gin.Context) {
	reader, fileName, err := h.svc.OpenDocument(c.Request.Context(), GetTenantID(c), c.Param("id"), c.Param("kind"))
	if err != nil {
		orderError(c, err, "下载单据失败")
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Header("Content-Type", "application/octet-stream")
	if _, err := io.Copy(c.Writer, reader); err != nil {
		_ = c.Error(err)
	}
}

// OrderActivity 订单操作日志
func (h *OrderHandler) OrderActivity(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}

	logs, err := h.svc.Activity(c.Request.Context(), GetTenantID(c), c.Param("id"), limit)
	if err != nil {
		InternalError(c, "获取操作日志失败: "+err.Error())
		return
	}
	Success(c, logs)
}
