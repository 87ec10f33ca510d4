package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	admrepo "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/repository"
	finentity "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/entity"
	finrepo "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/shared/storage"
)

// validPaymentMethods 订单支付方式
var validPaymentMethods = map[string]bool{
	entity.PaymentMethodBoleto:   true,
	entity.PaymentMethodPix:      true,
	entity.PaymentMethodTransfer: true,
	entity.PaymentMethodCartao:   true,
	entity.PaymentMethodFaturado: true,
}

// DocumentStore 单据附件存储，*storage.AttachmentStore实现
type DocumentStore interface {
	PutOrderDocument(ctx context.Context, tenantID, orderID, kind, fileName string, reader io.Reader, fileSize int64, contentType string) (string, error)
	PutQuoteDocument(ctx context.Context, tenantID, quoteID, fileName string, reader io.Reader, fileSize int64, contentType string) (string, error)
	Get(ctx context.Context, objectName string) (io.ReadCloser, error)
	RemoveOrderDocuments(ctx context.Context, tenantID, orderID string) error
}

// OrderService 采购订单服务
type OrderService struct {
	orderRepo    *repository.OrderRepository
	supplierRepo *repository.SupplierRepository
	logRepo      *repository.ActivityLogRepository
	companyRepo  *admrepo.CompanyRepository
	expenseRepo  *finrepo.ExpenseRepository
	store        DocumentStore
}

// NewOrderService 创建采购订单服务
func NewOrderService(
	orderRepo *repository.OrderRepository,
	supplierRepo *repository.SupplierRepository,
	logRepo *repository.ActivityLogRepository,
	companyRepo *admrepo.CompanyRepository,
	expenseRepo *finrepo.ExpenseRepository,
	store DocumentStore,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
		logRepo:      logRepo,
		companyRepo:  companyRepo,
		expenseRepo:  expenseRepo,
		store:        store,
	}
}

// OrderItemInput 行项输入
type OrderItemInput struct {
	Description string  `json:"description" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	UnitValue   float64 `json:"unit_value" binding:"required,gte=0"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	CompanyID    string  `json:"company_id" binding:"required"`
	CostCenterID *string `json:"cost_center_id"`

	SupplierID     *string `json:"supplier_id"`
	VendorName     string  `json:"vendor_name"`
	VendorCategory string  `json:"vendor_category"`

	PaymentMethod string `json:"payment_method" binding:"required"`
	OrderDate     string `json:"order_date"`    // YYYY-MM-DD，缺省为当天
	DeliveryDate  string `json:"delivery_date"` // YYYY-MM-DD

	Items []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	Notes string           `json:"notes"`
}

// UpdateOrderItemsRequest 更新行项请求，仅awaiting_documents状态允许
type UpdateOrderItemsRequest struct {
	Items []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// FileUpload 上传的文件
type FileUpload struct {
	Reader      io.Reader
	Name        string
	Size        int64
	ContentType string
}

// BoletoInput boleto分期输入
type BoletoInput struct {
	DueDate string `json:"due_date"` // YYYY-MM-DD
	Barcode string `json:"barcode"`
}

// SubmitDocumentsRequest 供应商提交单据请求
// boleto金额为订单总额按期数均分
type SubmitDocumentsRequest struct {
	PayoutMethod string
	Invoice      *FileUpload
	Installments []BoletoInput
	BoletoFiles  []FileUpload // 与Installments一一对应，可为空
}

// RejectOrderRequest 驳回请求
type RejectOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// OrderListResult 订单列表结果
type OrderListResult struct {
	Items    []entity.PurchaseOrder `json:"items"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
}

// List 获取订单列表
func (s *OrderService) List(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) (*OrderListResult, error) {
	items, total, err := s.orderRepo.FindAll(ctx, tenantID, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return &OrderListResult{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get 获取订单详情
func (s *OrderService) Get(ctx context.Context, tenantID, id string) (*entity.PurchaseOrder, error) {
	return s.orderRepo.FindByID(ctx, tenantID, id)
}

// Create 创建采购订单
// 必须指定注册供应商或自由文本线上商家二者之一
func (s *OrderService) Create(ctx context.Context, tenantID, requesterID, requesterName string, req *CreateOrderRequest) (*entity.PurchaseOrder, error) {
	if !validPaymentMethods[req.PaymentMethod] {
		return nil, fmt.Errorf("无效的支付方式: %s", req.PaymentMethod)
	}
	if req.SupplierID == nil && req.VendorName == "" {
		return nil, fmt.Errorf("必须指定供应商或填写商家名称")
	}
	if req.SupplierID != nil && req.VendorName != "" {
		return nil, fmt.Errorf("供应商和商家名称只能二选一")
	}

	company, err := s.companyRepo.FindByID(ctx, tenantID, req.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("公司不存在: %w", err)
	}
	if req.CostCenterID != nil {
		cc, err := s.companyRepo.FindCostCenterByID(ctx, tenantID, *req.CostCenterID)
		if err != nil {
			return nil, fmt.Errorf("成本中心不存在: %w", err)
		}
		if cc.CompanyID != company.ID {
			return nil, fmt.Errorf("成本中心不属于所选公司")
		}
	}

	if req.SupplierID != nil {
		supplier, err := s.supplierRepo.FindByID(ctx, tenantID, *req.SupplierID)
		if err != nil {
			return nil, fmt.Errorf("供应商不存在: %w", err)
		}
		if supplier.Status != entity.SupplierStatusActive {
			return nil, fmt.Errorf("供应商已停用: %s", supplier.Name)
		}
	}

	orderDate := time.Now()
	if req.OrderDate != "" {
		t, err := time.Parse("2006-01-02", req.OrderDate)
		if err != nil {
			return nil, fmt.Errorf("下单日期格式无效: %s", req.OrderDate)
		}
		orderDate = t
	}

	var deliveryDate *time.Time
	if req.DeliveryDate != "" {
		t, err := time.Parse("2006-01-02", req.DeliveryDate)
		if err != nil {
			return nil, fmt.Errorf("交付日期格式无效: %s", req.DeliveryDate)
		}
		deliveryDate = &t
	}

	code, err := s.orderRepo.GenerateCode(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	now := time.Now()
	order := &entity.PurchaseOrder{
		ID:             uuid.New().String()[:32],
		Code:           code,
		TenantID:       tenantID,
		CompanyID:      req.CompanyID,
		CostCenterID:   req.CostCenterID,
		RequesterID:    requesterID,
		SupplierID:     req.SupplierID,
		VendorName:     req.VendorName,
		VendorCategory: req.VendorCategory,
		PaymentMethod:  req.PaymentMethod,
		OrderDate:      orderDate,
		DeliveryDate:   deliveryDate,
		Status:         entity.OrderStatusAwaitingDocuments,
		Actions:        entity.OrderActions{},
		CreatedAt:      now,
		UpdatedAt:      now,
		Notes:          req.Notes,
	}
	order.Items = buildItems(order.ID, req.Items)
	order.RecomputeTotal()

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logActivity(ctx, order, "create", "", entity.OrderStatusAwaitingDocuments,
		fmt.Sprintf("订单创建，总额 %.2f", order.Total), requesterID, requesterName)
	return order, nil
}

func buildItems(orderID string, inputs []OrderItemInput) []entity.OrderItem {
	now := time.Now()
	items := make([]entity.OrderItem, 0, len(inputs))
	for i, in := range inputs {
		items = append(items, entity.OrderItem{
			ID:          uuid.New().String()[:32],
			OrderID:     orderID,
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitValue:   in.UnitValue,
			Total:       in.Quantity * in.UnitValue,
			SortOrder:   i,
			CreatedAt:   now,
		})
	}
	return items
}

// UpdateItems 更新行项并重算总额，仅awaiting_documents状态允许
func (s *OrderService) UpdateItems(ctx context.Context, tenantID, operatorID, operatorName, orderID string, req *UpdateOrderItemsRequest) (*entity.PurchaseOrder, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}

	if order.Status != entity.OrderStatusAwaitingDocuments {
		return nil, fmt.Errorf("%w: %s 状态下不能修改行项", entity.ErrInvalidTransition, order.Status)
	}

	order.Items = buildItems(order.ID, req.Items)
	order.RecomputeTotal()
	order.UpdatedAt = time.Now()

	if err := s.orderRepo.ReplaceItems(ctx, order.ID, order.Items); err != nil {
		return nil, fmt.Errorf("replace items: %w", err)
	}
	if err := s.orderRepo.UpdateWithVersion(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	s.logActivity(ctx, order, "update_items", order.Status, order.Status,
		fmt.Sprintf("行项更新，总额 %.2f", order.Total), operatorID, operatorName)
	return s.orderRepo.FindByID(ctx, tenantID, orderID)
}

// SubmitDocuments 供应商提交单据：上传发票（及boleto分期），进入待审批
// boleto分期金额为订单总额按期数均分
func (s *OrderService) SubmitDocuments(ctx context.Context, tenantID, actorID, actorName, orderID string, req *SubmitDocumentsRequest) (*entity.PurchaseOrder, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}

	if req.Invoice == nil {
		return nil, fmt.Errorf("%w: 必须上传发票文件", entity.ErrGuardFailed)
	}
	if err := storage.ValidateDocumentType(req.Invoice.Name, req.Invoice.ContentType); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrGuardFailed, err)
	}

	withBoleto := len(req.Installments) > 0
	if order.PaymentMethod == entity.PaymentMethodBoleto && !withBoleto {
		return nil, fmt.Errorf("%w: boleto订单必须提交分期信息", entity.ErrGuardFailed)
	}
	if len(req.BoletoFiles) > 0 && len(req.BoletoFiles) != len(req.Installments) {
		return nil, fmt.Errorf("%w: boleto文件数与分期数不一致", entity.ErrGuardFailed)
	}

	now := time.Now()
	fromStatus := order.Status
	if err := order.SubmitDocuments(actorID, now, withBoleto); err != nil {
		return nil, err
	}

	invoiceURL, err := s.store.PutOrderDocument(ctx, tenantID, order.ID, "nf",
		req.Invoice.Name, req.Invoice.Reader, req.Invoice.Size, req.Invoice.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload invoice: %w", err)
	}
	order.InvoiceName = req.Invoice.Name
	order.InvoiceURL = invoiceURL

	if withBoleto {
		boletos, err := s.buildBoletos(ctx, tenantID, order, req)
		if err != nil {
			return nil, err
		}
		if err := s.orderRepo.ReplaceBoletos(ctx, order.ID, boletos); err != nil {
			return nil, fmt.Errorf("replace boletos: %w", err)
		}
		order.Boletos = boletos
	}

	if req.PayoutMethod != "" {
		order.PayoutMethod = req.PayoutMethod
	}
	order.UpdatedAt = now

	if err := s.orderRepo.UpdateWithVersion(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	s.logActivity(ctx, order, string(entity.EventSubmitDocuments), fromStatus, order.Status,
		fmt.Sprintf("单据已提交：%s", req.Invoice.Name), actorID, actorName)
	return s.orderRepo.FindByID(ctx, tenantID, orderID)
}

// buildBoletos 构造boleto分期，金额为总额均分，逐期上传票据文件
func (s *OrderService) buildBoletos(ctx context.Context, tenantID string, order *entity.PurchaseOrder, req *SubmitDocumentsRequest) ([]entity.BoletoInstallment, error) {
	n := len(req.Installments)
	amount := order.Total / float64(n)
	now := time.Now()

	boletos := make([]entity.BoletoInstallment, 0, n)
	for i, in := range req.Installments {
		dueDate, err := time.Parse("2006-01-02", in.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: 第%d期到期日格式无效: %s", entity.ErrGuardFailed, i+1, in.DueDate)
		}

		b := entity.BoletoInstallment{
			ID:        uuid.New().String()[:32],
			OrderID:   order.ID,
			Seq:       i + 1,
			DueDate:   dueDate,
			Amount:    amount,
			Barcode:   in.Barcode,
			CreatedAt: now,
		}

		if i < len(req.BoletoFiles) {
			f := req.BoletoFiles[i]
			if err := storage.ValidateDocumentType(f.Name, f.ContentType); err != nil {
				return nil, fmt.Errorf("%w: %v", entity.ErrGuardFailed, err)
			}
			url, err := s.store.PutOrderDocument(ctx, tenantID, order.ID,
				fmt.Sprintf("boleto-%d", i+1), f.Name, f.Reader, f.Size, f.ContentType)
			if err != nil {
				return nil, fmt.Errorf("upload boleto: %w", err)
			}
			b.FileName = f.Name
			b.FileURL = url
		}

		boletos = append(boletos, b)
	}
	return boletos, nil
}

// OpenDocument 打开订单单据流，kind为 nf 或 boleto-N
func (s *OrderService) OpenDocument(ctx context.Context, tenantID, orderID, kind string) (io.ReadCloser, string, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, "", fmt.Errorf("find order: %w", err)
	}

	var objectName, fileName string
	switch {
	case kind == "nf":
		objectName, fileName = order.InvoiceURL, order.InvoiceName
	case strings.HasPrefix(kind, "boleto-"):
		seq, err := strconv.Atoi(strings.TrimPrefix(kind, "boleto-"))
		if err != nil {
			return nil, "", fmt.Errorf("%w: 无效的单据类型: %s", entity.ErrGuardFailed, kind)
		}
		for _, b := range order.Boletos {
			if b.Seq == seq {
				objectName, fileName = b.FileURL, b.FileName
				break
			}
		}
	default:
		return nil, "", fmt.Errorf("%w: 无效的单据类型: %s", entity.ErrGuardFailed, kind)
	}

	if objectName == "" {
		return nil, "", fmt.Errorf("%w: 单据未上传", repository.ErrNotFound)
	}

	reader, err := s.store.Get(ctx, objectName)
	if err != nil {
		return nil, "", fmt.Errorf("get document: %w", err)
	}
	return reader, fileName, nil
}

// ConfirmDelivery 确认收货，重复确认安全
func (s *OrderService) ConfirmDelivery(ctx context.Context, tenantID, actorID, actorName, orderID string) (*entity.PurchaseOrder, error) {
	return s.transition(ctx, tenantID, orderID, string(entity.EventConfirmDelivery), "收货已确认", actorID, actorName,
		func(o *entity.PurchaseOrder) error {
			return o.ConfirmDelivery(actorID, time.Now())
		})
}

// ApproveDocuments 财务审批单据
func (s *OrderService) ApproveDocuments(ctx context.Context, tenantID, actorID, actorName, orderID string) (*entity.PurchaseOrder, error) {
	return s.transition(ctx, tenantID, orderID, string(entity.EventApproveDocuments), "单据审批通过", actorID, actorName,
		func(o *entity.PurchaseOrder) error {
			return o.ApproveDocuments(actorID, time.Now())
		})
}

// Reject 财务驳回订单
func (s *OrderService) Reject(ctx context.Context, tenantID, actorID, actorName, orderID string, req *RejectOrderRequest) (*entity.PurchaseOrder, error) {
	return s.transition(ctx, tenantID, orderID, string(entity.EventReject), "订单已驳回: "+req.Reason, actorID, actorName,
		func(o *entity.PurchaseOrder) error {
			return o.Reject(req.Reason)
		})
}

// SendToPayment 送交付款
func (s *OrderService) SendToPayment(ctx context.Context, tenantID, actorID, actorName, orderID string) (*entity.PurchaseOrder, error) {
	return s.transition(ctx, tenantID, orderID, string(entity.EventSendToPayment), "已送交付款", actorID, actorName,
		func(o *entity.PurchaseOrder) error {
			return o.SendToPayment()
		})
}

// Complete 付款完成，同时生成一笔已支付的采购支出
func (s *OrderService) Complete(ctx context.Context, tenantID, actorID, actorName, orderID string) (*entity.PurchaseOrder, error) {
	order, err := s.transition(ctx, tenantID, orderID, string(entity.EventComplete), "付款完成", actorID, actorName,
		func(o *entity.PurchaseOrder) error {
			return o.Complete()
		})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	vendor := order.VendorName
	if order.Supplier != nil {
		vendor = order.Supplier.Name
	}
	expense := &finentity.Expense{
		ID:            uuid.New().String()[:32],
		TenantID:      tenantID,
		CompanyID:     order.CompanyID,
		CostCenterID:  order.CostCenterID,
		Category:      finentity.ExpenseCategoryInsumos,
		Description:   fmt.Sprintf("Compra %s - %s", order.Code, vendor),
		Amount:        order.Total,
		Date:          now,
		PaymentMethod: order.PaymentMethod,
		Paid:          true,
		PaidAt:        &now,
		SourceType:    finentity.ExpenseSourcePurchaseOrder,
		SourceID:      &order.ID,
		CreatedBy:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	return order, nil
}

// transition 加载订单、应用转换、条件更新并记录日志
func (s *OrderService) transition(ctx context.Context, tenantID, orderID, event, content, actorID, actorName string, fn func(*entity.PurchaseOrder) error) (*entity.PurchaseOrder, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}

	fromStatus := order.Status
	if err := fn(order); err != nil {
		return nil, err
	}
	order.UpdatedAt = time.Now()

	if err := s.orderRepo.UpdateWithVersion(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	s.logActivity(ctx, order, event, fromStatus, order.Status, content, actorID, actorName)
	return order, nil
}

// SweepLate 扫描交付逾期订单并标记delivery_late，返回处理数量
func (s *OrderService) SweepLate(ctx context.Context, tenantID, actorID, actorName string) (int, error) {
	now := time.Now()
	orders, err := s.orderRepo.FindOverdue(ctx, tenantID, now)
	if err != nil {
		return 0, fmt.Errorf("find overdue orders: %w", err)
	}

	count := 0
	for i := range orders {
		o := &orders[i]
		fromStatus := o.Status
		if err := o.MarkLate(now); err != nil {
			continue
		}
		o.UpdatedAt = now
		if err := s.orderRepo.UpdateWithVersion(ctx, o); err != nil {
			// 并发冲突跳过，下次扫描重试
			continue
		}
		s.logActivity(ctx, o, string(entity.EventMarkLate), fromStatus, o.Status, "交付逾期", actorID, actorName)
		count++
	}
	return count, nil
}

// Delete 删除订单及附件，仅管理员
func (s *OrderService) Delete(ctx context.Context, tenantID, operatorID, operatorName, orderID string) error {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return fmt.Errorf("find order: %w", err)
	}

	if err := s.orderRepo.Delete(ctx, tenantID, orderID); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	// 附件清理失败不回滚订单删除
	_ = s.store.RemoveOrderDocuments(ctx, tenantID, orderID)

	log := &entity.OrderActivityLog{
		ID:           uuid.New().String()[:32],
		TenantID:     tenantID,
		OrderID:      order.ID,
		OrderCode:    order.Code,
		Event:        "delete",
		FromStatus:   order.Status,
		Content:      "订单已删除",
		OperatorID:   operatorID,
		OperatorName: operatorName,
		CreatedAt:    time.Now(),
	}
	_ = s.logRepo.Create(ctx, log)
	return nil
}

// Activity 获取订单操作日志
func (s *OrderService) Activity(ctx context.Context, tenantID, orderID string, limit int) ([]entity.OrderActivityLog, error) {
	return s.logRepo.FindByOrder(ctx, tenantID, orderID, limit)
}

func (s *OrderService) logActivity(ctx context.Context, order *entity.PurchaseOrder, event, fromStatus, toStatus, content, operatorID, operatorName string) {
	log := &entity.OrderActivityLog{
		ID:           uuid.New().String()[:32],
		TenantID:     order.TenantID,
		OrderID:      order.ID,
		OrderCode:    order.Code,
		Event:        event,
		FromStatus:   fromStatus,
		ToStatus:     toStatus,
		Content:      content,
		OperatorID:   operatorID,
		OperatorName: operatorName,
		CreatedAt:    time.Now(),
	}
	// 日志写入失败不阻断主流程
	_ = s.logRepo.Create(ctx, log)
}
