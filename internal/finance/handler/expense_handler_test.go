package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/testutil"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/service"
)

func setupExpenseTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	if err := db.AutoMigrate(&entity.Expense{}, &entity.Revenue{}); err != nil {
		t.Fatalf("Failed to migrate tables: %v", err)
	}

	finRepos := repository.NewRepositories(db)
	svc := service.NewExpenseService(finRepos.Expense)
	h := NewExpenseHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/expenses", h.ListExpenses)
	api.POST("/expenses", h.CreateExpense)
	api.GET("/expenses/:id", h.GetExpense)
	api.PUT("/expenses/:id", h.UpdateExpense)
	api.DELETE("/expenses/:id", h.DeleteExpense)

	testutil.SeedTestTenant(t, db)
	testutil.SeedTestCompany(t, db, "comp-001", "Clínica Matriz")

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func seedGeneratedExpense(t *testing.T, env *testutil.TestEnv) *entity.Expense {
	t.Helper()
	sourceID := "vet-001"
	expense := &entity.Expense{
		ID:          "exp-gen-001",
		TenantID:    testutil.TestTenant,
		CompanyID:   "comp-001",
		Category:    entity.ExpenseCategoryVeterinarios,
		Description: "Pagamento veterinário: Dra. Ana",
		Amount:      2500,
		Date:        time.Now(),
		SourceType:  entity.ExpenseSourceVetPayment,
		SourceID:    &sourceID,
		CreatedBy:   "test-user-001",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := env.DB.Create(expense).Error; err != nil {
		t.Fatalf("Failed to seed generated expense: %v", err)
	}
	return expense
}

func TestExpenseCreateAndList(t *testing.T) {
	env := setupExpenseTest(t)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"company_id":  "comp-001",
		"category":    "aluguel",
		"description": "Aluguel da unidade centro",
		"amount":      4200.0,
		"date":        "2026-08-01",
		"paid":        true,
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/expenses", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["source_type"].(string) != entity.ExpenseSourceManual {
		t.Fatalf("expected manual source, got %v", data["source_type"])
	}
	if data["paid_at"] == nil {
		t.Fatal("paid_at not set for paid expense")
	}

	// 无效分类
	body["category"] = "jardinagem"
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/expenses", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid category, got %d", w.Code)
	}

	// 按分类过滤
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/expenses?category=aluguel&paid=true", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("list expected 200, got %d", w.Code)
	}
	resp = testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(items))
	}
}

func TestGeneratedExpenseRestrictions(t *testing.T) {
	env := setupExpenseTest(t)
	token := testutil.DefaultTestToken()
	expense := seedGeneratedExpense(t, env)

	// 金额不可修改
	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/expenses/"+expense.ID,
		map[string]interface{}{"amount": 100.0}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 changing generated amount, got %d: %s", w.Code, w.Body.String())
	}

	// 支付状态和备注可以修改
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/expenses/"+expense.ID,
		map[string]interface{}{"paid": true, "notes": "pago via pix"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 marking generated as paid, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["paid"].(bool) != true || data["notes"].(string) != "pago via pix" {
		t.Fatalf("unexpected update result: %v", data)
	}

	// 不可删除
	w = testutil.DoRequest(env.Router, http.MethodDelete, "/api/v1/expenses/"+expense.ID, nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 deleting generated expense, got %d", w.Code)
	}

	// 手工支出可以删除
	manual := map[string]interface{}{
		"company_id":  "comp-001",
		"category":    "outros",
		"description": "Material de escritório",
		"amount":      80.0,
	}
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/expenses", manual, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	id := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)
	w = testutil.DoRequest(env.Router, http.MethodDelete, "/api/v1/expenses/"+id, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting manual expense, got %d: %s", w.Code, w.Body.String())
	}
}
