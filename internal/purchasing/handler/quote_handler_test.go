package handler

import (
	"net/http"
	"testing"

	admentity "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/testutil"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/middleware"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/service"
)

func setupQuoteTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	if err := db.AutoMigrate(
		&entity.Supplier{},
		&entity.Quote{},
		&entity.QuoteItem{},
	); err != nil {
		t.Fatalf("Failed to migrate tables: %v", err)
	}

	purRepos := repository.NewRepositories(db)
	svc := service.NewQuoteService(purRepos.Quote, purRepos.Supplier, newMemStore())
	h := NewQuoteHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	quotes := api.Group("/quotes", middleware.RequirePermission(admentity.PermPurchasing))
	quotes.GET("/:id", h.GetQuote)
	quotes.POST("", middleware.RequireAnyRole("admin", "compras"), h.CreateQuote)
	quotes.POST("/:id/attachment", middleware.RequireAnyRole("admin", "compras"), h.UploadQuoteAttachment)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestQuoteAttachmentUpload(t *testing.T) {
	env := setupQuoteTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedTestTenant(t, env.DB)

	body := map[string]interface{}{
		"vendor_name": "Distribuidora Vet",
		"description": "Cotação de medicamentos",
		"items": []map[string]interface{}{
			{"description": "Antibiótico", "quantity": 10, "unit_value": 25},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/quotes", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create quote expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	quoteID := resp["data"].(map[string]interface{})["id"].(string)

	// 不支持的文件类型
	w = doUpload(t, env, "/api/v1/quotes/"+quoteID+"/attachment", token,
		nil, []uploadFile{{field: "file", name: "planilha.xlsx", content: "zzz"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported type, got %d: %s", w.Code, w.Body.String())
	}

	w = doUpload(t, env, "/api/v1/quotes/"+quoteID+"/attachment", token,
		nil, []uploadFile{{field: "file", name: "cotacao.pdf", content: "%PDF-1.4 cotação"}})
	if w.Code != http.StatusOK {
		t.Fatalf("upload expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["attachment_name"].(string) != "cotacao.pdf" {
		t.Fatalf("unexpected attachment name: %v", data["attachment_name"])
	}
	if data["attachment_url"].(string) == "" {
		t.Fatal("expected stored attachment url")
	}
}
