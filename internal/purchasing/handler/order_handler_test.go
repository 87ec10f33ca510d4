package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	admentity "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/entity"
	admrepo "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/testutil"
	finentity "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/entity"
	finrepo "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/middleware"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/service"
)

// memStore keeps uploaded documents in memory so the submit and download
// paths run end-to-end without object storage
type memStore struct {
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) PutOrderDocument(_ context.Context, tenantID, orderID, kind, fileName string, reader io.Reader, _ int64, _ string) (string, error) {
	name := fmt.Sprintf("clients/%s/purchase-orders/%s/%s-%s", tenantID, orderID, kind, fileName)
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.objects[name] = data
	return name, nil
}

func (m *memStore) PutQuoteDocument(_ context.Context, tenantID, quoteID, fileName string, reader io.Reader, _ int64, _ string) (string, error) {
	name := fmt.Sprintf("clients/%s/quotes/%s/%s", tenantID, quoteID, fileName)
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.objects[name] = data
	return name, nil
}

func (m *memStore) Get(_ context.Context, objectName string) (io.ReadCloser, error) {
	data, ok := m.objects[objectName]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", objectName)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) RemoveOrderDocuments(_ context.Context, tenantID, orderID string) error {
	prefix := fmt.Sprintf("clients/%s/purchase-orders/%s/", tenantID, orderID)
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			delete(m.objects, k)
		}
	}
	return nil
}

func setupOrderTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	if err := db.AutoMigrate(
		&entity.Supplier{},
		&entity.PurchaseOrder{},
		&entity.OrderItem{},
		&entity.BoletoInstallment{},
		&entity.OrderActivityLog{},
		&finentity.Expense{},
	); err != nil {
		t.Fatalf("Failed to migrate tables: %v", err)
	}

	purRepos := repository.NewRepositories(db)
	companyRepo := admrepo.NewCompanyRepository(db)
	expenseRepo := finrepo.NewExpenseRepository(db)
	store := newMemStore()

	svc := service.NewOrderService(purRepos.Order, purRepos.Supplier, purRepos.ActivityLog, companyRepo, expenseRepo, store)
	h := NewOrderHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	orders := api.Group("/purchase-orders", middleware.RequirePermission(admentity.PermPurchasing))
	orders.GET("", h.ListOrders)
	orders.GET("/:id", h.GetOrder)
	orders.GET("/:id/activity", h.OrderActivity)
	orders.GET("/:id/documents/:kind", h.DownloadDocument)
	orders.POST("", middleware.RequireAnyRole("admin", "compras"), h.CreateOrder)
	orders.POST("/:id/documents", middleware.RequireAnyRole("admin", "compras", "fornecedor"), h.SubmitDocuments)
	orders.POST("/:id/confirm-delivery", middleware.RequireAnyRole("admin", "compras"), h.ConfirmDelivery)
	orders.POST("/:id/approve", middleware.RequireAnyRole("admin", "financeiro", "compras"), h.ApproveDocuments)
	orders.POST("/:id/reject", middleware.RequireAnyRole("admin", "financeiro", "compras"), h.RejectOrder)
	orders.POST("/:id/send-to-payment", middleware.RequireAnyRole("admin", "financeiro", "compras"), h.SendToPayment)
	orders.POST("/:id/complete", middleware.RequireAnyRole("admin", "financeiro", "compras"), h.CompleteOrder)
	api.POST("/purchase-orders/sweep-late", middleware.RequirePermission(admentity.PermPurchasing), middleware.RequireAnyRole("admin", "compras"), h.SweepLate)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func seedOrderTestData(t *testing.T, env *testutil.TestEnv) {
	t.Helper()
	testutil.SeedTestTenant(t, env.DB)
	testutil.SeedTestCompany(t, env.DB, "comp-001", "Clínica Matriz")
}

type uploadFile struct {
	field   string
	name    string
	content string
}

func doUpload(t *testing.T, env *testutil.TestEnv, path, token string, fields map[string]string, files []uploadFile) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write form field: %v", err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := fw.Write([]byte(f.content)); err != nil {
			t.Fatalf("Failed to write form file: %v", err)
		}
	}
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	return w
}

// submitInvoice submits the invoice (and optional installments) through the
// multipart endpoint
func submitInvoice(t *testing.T, env *testutil.TestEnv, token, orderID string, installments []map[string]string) {
	t.Helper()
	fields := map[string]string{}
	if installments != nil {
		raw, _ := json.Marshal(installments)
		fields["installments"] = string(raw)
	}
	w := doUpload(t, env, "/api/v1/purchase-orders/"+orderID+"/documents", token,
		fields, []uploadFile{{field: "invoice", name: "nf-123.pdf", content: "%PDF-1.4 nota fiscal"}})
	if w.Code != http.StatusOK {
		t.Fatalf("submit documents expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func createOrder(t *testing.T, env *testutil.TestEnv, token string, body map[string]interface{}) string {
	t.Helper()
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create order expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	return resp["data"].(map[string]interface{})["id"].(string)
}

func TestOrderCreateValidation(t *testing.T) {
	env := setupOrderTest(t)
	token := testutil.DefaultTestToken()
	seedOrderTestData(t, env)

	// 供应商和商家名称都缺失
	body := map[string]interface{}{
		"company_id":     "comp-001",
		"payment_method": "pix",
		"items": []map[string]interface{}{
			{"description": "Ração", "quantity": 2, "unit_value": 100},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// 无效支付方式
	body["vendor_name"] = "Petshop Online"
	body["payment_method"] = "cheque"
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payment method, got %d", w.Code)
	}
}

func TestOrderLifecycleToCompletion(t *testing.T) {
	env := setupOrderTest(t)
	token := testutil.DefaultTestToken()
	seedOrderTestData(t, env)

	body := map[string]interface{}{
		"company_id":     "comp-001",
		"cost_center_id": "comp-001-cc1",
		"vendor_name":    "Petshop Online",
		"payment_method": "pix",
		"delivery_date":  time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		"items": []map[string]interface{}{
			{"description": "Ração premium", "quantity": 10, "unit_value": 85.5},
			{"description": "Vacinas", "quantity": 5, "unit_value": 30},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	orderID := data["id"].(string)
	if data["total"].(float64) != 1005 {
		t.Fatalf("expected total 1005, got %v", data["total"])
	}
	if data["status"].(string) != entity.OrderStatusAwaitingDocuments {
		t.Fatalf("expected awaiting_documents, got %v", data["status"])
	}

	// 未提交单据前不能审批
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+orderID+"/approve", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("approve without invoice expected 400, got %d: %s", w.Code, w.Body.String())
	}

	submitInvoice(t, env, token, orderID, nil)

	// 未确认收货前不能审批
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+orderID+"/approve", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("approve without delivery expected 400, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+orderID+"/confirm-delivery", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("confirm-delivery expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+orderID+"/approve", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("approve expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+orderID+"/send-to-payment", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("send-to-payment expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+orderID+"/complete", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("complete expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 完成后生成已支付的采购支出
	var expense finentity.Expense
	if err := env.DB.First(&expense, "source_type = ? AND source_id = ?", finentity.ExpenseSourcePurchaseOrder, orderID).Error; err != nil {
		t.Fatalf("expected generated expense: %v", err)
	}
	if !expense.Paid || expense.Amount != 1005 {
		t.Fatalf("unexpected expense: paid=%v amount=%v", expense.Paid, expense.Amount)
	}

	// 发票可下载
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/purchase-orders/"+orderID+"/documents/nf", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("download nf expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "nota fiscal") {
		t.Fatalf("unexpected document body: %q", w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "nf-123.pdf") {
		t.Fatalf("unexpected content disposition: %q", w.Header().Get("Content-Disposition"))
	}

	// 活动日志覆盖全流程
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/purchase-orders/"+orderID+"/activity", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("activity expected 200, got %d", w.Code)
	}
	resp = testutil.ParseResponse(w)
	logs := resp["data"].([]interface{})
	if len(logs) < 4 {
		t.Fatalf("expected at least 4 activity entries, got %d", len(logs))
	}
}

func TestSubmitDocumentsSplitsInstallments(t *testing.T) {
	env := setupOrderTest(t)
	token := testutil.DefaultTestToken()
	seedOrderTestData(t, env)

	orderID := createOrder(t, env, token, map[string]interface{}{
		"company_id":     "comp-001",
		"vendor_name":    "Agro Pet",
		"payment_method": "boleto",
		"items": []map[string]interface{}{
			{"description": "Medicamentos", "quantity": 2, "unit_value": 50},
		},
	})

	// boleto订单必须带分期信息
	w := doUpload(t, env, "/api/v1/purchase-orders/"+orderID+"/documents", token,
		nil, []uploadFile{{field: "invoice", name: "nf-001.pdf", content: "%PDF-1.4"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("submit without installments expected 400, got %d: %s", w.Code, w.Body.String())
	}

	submitInvoice(t, env, token, orderID, []map[string]string{
		{"due_date": time.Now().AddDate(0, 1, 0).Format("2006-01-02")},
		{"due_date": time.Now().AddDate(0, 2, 0).Format("2006-01-02")},
		{"due_date": time.Now().AddDate(0, 3, 0).Format("2006-01-02")},
	})

	// 总额100按3期均分，无尾差调整
	var boletos []entity.BoletoInstallment
	if err := env.DB.Order("seq").Find(&boletos, "order_id = ?", orderID).Error; err != nil {
		t.Fatalf("Failed to load boletos: %v", err)
	}
	if len(boletos) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(boletos))
	}
	for i, b := range boletos {
		if b.Seq != i+1 {
			t.Fatalf("expected seq %d, got %d", i+1, b.Seq)
		}
		if b.Amount != boletos[0].Amount {
			t.Fatalf("expected equal installment amounts, got %v and %v", boletos[0].Amount, b.Amount)
		}
	}

	// 单据与收货齐备后可送交付款
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+orderID+"/confirm-delivery", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("confirm-delivery expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+orderID+"/approve", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("approve expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+orderID+"/send-to-payment", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("send-to-payment expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestOrderRejectAndFilter(t *testing.T) {
	env := setupOrderTest(t)
	token := testutil.DefaultTestToken()
	seedOrderTestData(t, env)

	orderID := createOrder(t, env, token, map[string]interface{}{
		"company_id":     "comp-001",
		"vendor_name":    "Distribuidora Vet",
		"payment_method": "transferencia",
		"items": []map[string]interface{}{
			{"description": "Material cirúrgico", "quantity": 1, "unit_value": 900},
		},
	})

	// 原因必填
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+orderID+"/reject", map[string]interface{}{}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("reject without reason expected 400, got %d", w.Code)
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+orderID+"/reject",
		map[string]interface{}{"reason": "pedido duplicado"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("reject expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 按状态过滤
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/purchase-orders?status=rejected", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("list expected 200, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 rejected order, got %d", len(items))
	}
	order := items[0].(map[string]interface{})
	if order["rejection_reason"].(string) != "pedido duplicado" {
		t.Fatalf("unexpected rejection reason: %v", order["rejection_reason"])
	}

	// 重新提交清除驳回原因
	submitInvoice(t, env, token, orderID, nil)
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/purchase-orders/"+orderID, nil, token)
	resp = testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["status"].(string) != entity.OrderStatusAwaitingApproval {
		t.Fatalf("expected awaiting_approval after resubmit, got %v", data["status"])
	}
	if data["rejection_reason"].(string) != "" {
		t.Fatalf("expected cleared rejection reason, got %v", data["rejection_reason"])
	}
}

func TestOrderListDateRangeFilter(t *testing.T) {
	env := setupOrderTest(t)
	token := testutil.DefaultTestToken()
	seedOrderTestData(t, env)

	createOrder(t, env, token, map[string]interface{}{
		"company_id":     "comp-001",
		"vendor_name":    "Fornecedor Janeiro",
		"payment_method": "pix",
		"order_date":     "2026-01-10",
		"items": []map[string]interface{}{
			{"description": "Insumos", "quantity": 1, "unit_value": 100},
		},
	})
	createOrder(t, env, token, map[string]interface{}{
		"company_id":     "comp-001",
		"vendor_name":    "Fornecedor Março",
		"payment_method": "pix",
		"order_date":     "2026-03-15",
		"items": []map[string]interface{}{
			{"description": "Insumos", "quantity": 1, "unit_value": 200},
		},
	})

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/purchase-orders?from=2026-02-01&to=2026-12-31", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("list expected 200, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 order in range, got %d", len(items))
	}
	if items[0].(map[string]interface{})["vendor_name"].(string) != "Fornecedor Março" {
		t.Fatalf("unexpected order in range: %v", items[0])
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/purchase-orders?from=2026-01-01&to=2026-12-31", nil, token)
	resp = testutil.ParseResponse(w)
	items = resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("expected 2 orders in range, got %d", len(items))
	}
}

func TestOrderRoleAndPermissionGates(t *testing.T) {
	env := setupOrderTest(t)
	seedOrderTestData(t, env)

	comprasToken := testutil.GenerateTestToken("compras-001", "Comprador", "compras@teste.com",
		testutil.TestTenant, []string{"compras"}, []string{"*"})

	// compras可以走完审批流
	orderID := createOrder(t, env, comprasToken, map[string]interface{}{
		"company_id":     "comp-001",
		"vendor_name":    "Pet Supply",
		"payment_method": "pix",
		"items": []map[string]interface{}{
			{"description": "Ração", "quantity": 1, "unit_value": 300},
		},
	})
	submitInvoice(t, env, comprasToken, orderID, nil)
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+orderID+"/confirm-delivery", nil, comprasToken)
	if w.Code != http.StatusOK {
		t.Fatalf("confirm-delivery expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+orderID+"/approve", nil, comprasToken)
	if w.Code != http.StatusOK {
		t.Fatalf("approve by compras expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+orderID+"/send-to-payment", nil, comprasToken)
	if w.Code != http.StatusOK {
		t.Fatalf("send-to-payment by compras expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 权限文档关闭purchasing时拒绝访问
	noPermToken := testutil.GenerateTestToken("fin-001", "Financeiro", "fin@teste.com",
		testutil.TestTenant, []string{"financeiro"}, []string{admentity.PermExpenses})
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/purchase-orders", nil, noPermToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without purchasing permission, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSweepLateMarksOverdueOrders(t *testing.T) {
	env := setupOrderTest(t)
	token := testutil.DefaultTestToken()
	seedOrderTestData(t, env)

	orderID := createOrder(t, env, token, map[string]interface{}{
		"company_id":     "comp-001",
		"vendor_name":    "Fornecedor Lento",
		"payment_method": "pix",
		"delivery_date":  time.Now().AddDate(0, 0, -3).Format("2006-01-02"),
		"items": []map[string]interface{}{
			{"description": "Insumos", "quantity": 1, "unit_value": 50},
		},
	})

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/sweep-late", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("sweep-late expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["marked_late"].(float64) != 1 {
		t.Fatalf("expected 1 order marked late, got %v", resp["data"])
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/purchase-orders/"+orderID, nil, token)
	resp = testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["status"].(string) != entity.OrderStatusDeliveryLate {
		t.Fatalf("expected delivery_late, got %v", resp["data"].(map[string]interface{})["status"])
	}
}
