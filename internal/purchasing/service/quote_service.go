package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/shared/storage"
)

// QuoteService 报价单服务
type QuoteService struct {
	quoteRepo    *repository.QuoteRepository
	supplierRepo *repository.SupplierRepository
	store        DocumentStore
}

// NewQuoteService 创建报价单服务
func NewQuoteService(quoteRepo *repository.QuoteRepository, supplierRepo *repository.SupplierRepository, store DocumentStore) *QuoteService {
	return &QuoteService{quoteRepo: quoteRepo, supplierRepo: supplierRepo, store: store}
}

// QuoteItemInput 报价行项输入
type QuoteItemInput struct {
	Description string  `json:"description" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	UnitValue   float64 `json:"unit_value" binding:"required,gte=0"`
}

// CreateQuoteRequest 创建报价单请求
type CreateQuoteRequest struct {
	SupplierID  *string          `json:"supplier_id"`
	VendorName  string           `json:"vendor_name"`
	Description string           `json:"description" binding:"required"`
	ValidUntil  string           `json:"valid_until"` // YYYY-MM-DD
	Items       []QuoteItemInput `json:"items" binding:"required,min=1,dive"`
	Notes       string           `json:"notes"`
}

// QuoteListResult 报价单列表结果
type QuoteListResult struct {
	Items    []entity.Quote `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// List 获取报价单列表
func (s *QuoteService) List(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) (*QuoteListResult, error) {
	items, total, err := s.quoteRepo.FindAll(ctx, tenantID, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return &QuoteListResult{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get 获取报价单详情
func (s *QuoteService) Get(ctx context.Context, tenantID, id string) (*entity.Quote, error) {
	return s.quoteRepo.FindByID(ctx, tenantID, id)
}

// Create 创建报价单
func (s *QuoteService) Create(ctx context.Context, tenantID, requesterID string, req *CreateQuoteRequest) (*entity.Quote, error) {
	if req.SupplierID == nil && req.VendorName == "" {
		return nil, fmt.Errorf("必须指定供应商或填写商家名称")
	}
	if req.SupplierID != nil {
		if _, err := s.supplierRepo.FindByID(ctx, tenantID, *req.SupplierID); err != nil {
			return nil, fmt.Errorf("供应商不存在: %w", err)
		}
	}

	var validUntil *time.Time
	if req.ValidUntil != "" {
		t, err := time.Parse("2006-01-02", req.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("有效期格式无效: %s", req.ValidUntil)
		}
		validUntil = &t
	}

	code, err := s.quoteRepo.GenerateCode(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	now := time.Now()
	quote := &entity.Quote{
		ID:          uuid.New().String()[:32],
		TenantID:    tenantID,
		Code:        code,
		SupplierID:  req.SupplierID,
		VendorName:  req.VendorName,
		Description: req.Description,
		ValidUntil:  validUntil,
		Status:      entity.QuoteStatusOpen,
		RequestedBy: requesterID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Notes:       req.Notes,
	}

	var total float64
	items := make([]entity.QuoteItem, 0, len(req.Items))
	for i, in := range req.Items {
		itemTotal := in.Quantity * in.UnitValue
		total += itemTotal
		items = append(items, entity.QuoteItem{
			ID:          uuid.New().String()[:32],
			QuoteID:     quote.ID,
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitValue:   in.UnitValue,
			Total:       itemTotal,
			SortOrder:   i,
			CreatedAt:   now,
		})
	}
	quote.Total = total
	quote.Items = items

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("create quote: %w", err)
	}
	return quote, nil
}

// UpdateStatus 更新报价单状态（接受/拒绝）
func (s *QuoteService) UpdateStatus(ctx context.Context, tenantID, id, status string) (*entity.Quote, error) {
	if status != entity.QuoteStatusAccepted && status != entity.QuoteStatusDeclined {
		return nil, fmt.Errorf("无效的状态: %s", status)
	}

	quote, err := s.quoteRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("find quote: %w", err)
	}

	if quote.Status != entity.QuoteStatusOpen {
		return nil, fmt.Errorf("只有open状态的报价单可以变更: 当前 %s", quote.Status)
	}
	if quote.ValidUntil != nil && time.Now().After(*quote.ValidUntil) {
		quote.Status = entity.QuoteStatusExpired
		quote.UpdatedAt = time.Now()
		if err := s.quoteRepo.Update(ctx, quote); err != nil {
			return nil, fmt.Errorf("expire quote: %w", err)
		}
		return nil, fmt.Errorf("报价单已过期")
	}

	quote.Status = status
	quote.UpdatedAt = time.Now()
	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("update quote: %w", err)
	}
	return quote, nil
}

// AttachDocument 上传报价附件，覆盖已有附件
func (s *QuoteService) AttachDocument(ctx context.Context, tenantID, id string, file *FileUpload) (*entity.Quote, error) {
	quote, err := s.quoteRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("find quote: %w", err)
	}

	if err := storage.ValidateDocumentType(file.Name, file.ContentType); err != nil {
		return nil, err
	}

	url, err := s.store.PutQuoteDocument(ctx, tenantID, quote.ID, file.Name, file.Reader, file.Size, file.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload attachment: %w", err)
	}

	quote.AttachmentName = file.Name
	quote.AttachmentURL = url
	quote.UpdatedAt = time.Now()
	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("update quote: %w", err)
	}
	return quote, nil
}

// Delete 删除报价单
func (s *QuoteService) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.quoteRepo.FindByID(ctx, tenantID, id); err != nil {
		return fmt.Errorf("find quote: %w", err)
	}
	return s.quoteRepo.Delete(ctx, tenantID, id)
}
