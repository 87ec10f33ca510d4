package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/repository"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/service"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/testutil"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/middleware"
)

func setupTenantTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	svc := service.NewTenantService(repos.Tenant, repos.User)
	h := NewTenantHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	tenants := api.Group("/tenants", middleware.RequireLicenseAdmin())
	tenants.GET("", h.ListTenants)
	tenants.POST("", h.CreateTenant)
	tenants.POST("/sweep-expired", h.SweepExpired)
	tenants.GET("/:id", h.GetTenant)
	tenants.POST("/:id/renew", h.RenewTenant)
	tenants.POST("/:id/suspend", h.SuspendTenant)
	tenants.POST("/:id/activate", h.ActivateTenant)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func licenseAdminToken() string {
	return testutil.GenerateTestToken(
		"license-admin-001", "Suporte", "suporte@gestor.com", "",
		[]string{"license_admin"}, []string{"*"},
	)
}

func TestTenantCreateRequiresLicenseAdmin(t *testing.T) {
	env := setupTenantTest(t)

	body := map[string]interface{}{
		"name":           "clinica-nova",
		"display_name":   "Clínica Nova",
		"admin_name":     "Admin",
		"admin_email":    "admin@clinica.com",
		"admin_password": "senha-forte-123",
	}

	// 普通租户管理员无权访问
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/tenants", body, testutil.DefaultTestToken())
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for tenant admin, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/tenants", body, licenseAdminToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	tenantID := resp["data"].(map[string]interface{})["id"].(string)

	// 初始管理员用户随租户建立
	var admin entity.User
	if err := env.DB.First(&admin, "tenant_id = ? AND role = ?", tenantID, entity.RoleAdmin).Error; err != nil {
		t.Fatalf("expected seeded admin user: %v", err)
	}
	if admin.Email != "admin@clinica.com" {
		t.Fatalf("unexpected admin email: %s", admin.Email)
	}

	// 租户标识必须唯一
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/tenants", body, licenseAdminToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate tenant name, got %d", w.Code)
	}

	// 标识格式校验
	body["name"] = "Clínica Inválida"
	body["admin_email"] = "other@clinica.com"
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/tenants", body, licenseAdminToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid tenant name, got %d", w.Code)
	}
}

func TestTenantLicenseLifecycle(t *testing.T) {
	env := setupTenantTest(t)
	token := licenseAdminToken()

	body := map[string]interface{}{
		"name":           "clinica-licenca",
		"display_name":   "Clínica Licença",
		"expires_at":     time.Now().AddDate(0, 0, -1).Format("2006-01-02"),
		"admin_name":     "Admin",
		"admin_email":    "admin@licenca.com",
		"admin_password": "senha-forte-123",
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/tenants", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	tenantID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	// 过期扫描将其标记为expired
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/tenants/sweep-expired", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("sweep-expired expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["expired"].(float64) < 1 {
		t.Fatalf("expected at least 1 expired tenant, got %v", resp["data"])
	}

	// 续期日期必须在未来
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/tenants/"+tenantID+"/renew",
		map[string]interface{}{"expires_at": "2020-01-01"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for past renewal date, got %d", w.Code)
	}

	// 正常续期恢复active
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/tenants/"+tenantID+"/renew",
		map[string]interface{}{"expires_at": time.Now().AddDate(1, 0, 0).Format("2006-01-02")}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("renew expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["license_status"].(string) != entity.LicenseStatusActive {
		t.Fatalf("expected active after renew, got %v", resp["data"])
	}

	// 暂停与恢复
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/tenants/"+tenantID+"/suspend", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("suspend expected 200, got %d", w.Code)
	}
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/tenants/"+tenantID, nil, token)
	resp = testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["license_status"].(string) != entity.LicenseStatusSuspended {
		t.Fatalf("expected suspended, got %v", resp["data"])
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/tenants/"+tenantID+"/activate", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("activate expected 200, got %d", w.Code)
	}
}
