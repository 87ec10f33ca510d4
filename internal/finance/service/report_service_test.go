package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/testutil"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/entity"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/repository"
	purentity "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/entity"
	purrepo "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/repository"
	"gorm.io/gorm"
)

func setupReportTest(t *testing.T) (*gorm.DB, *ReportService) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	if err := db.AutoMigrate(
		&entity.Expense{},
		&entity.Revenue{},
		&purentity.PurchaseOrder{},
		&purentity.OrderItem{},
		&purentity.BoletoInstallment{},
	); err != nil {
		t.Fatalf("Failed to migrate tables: %v", err)
	}

	finRepos := repository.NewRepositories(db)
	orderRepo := purrepo.NewOrderRepository(db)
	return db, NewReportService(finRepos.Expense, finRepos.Revenue, orderRepo)
}

func seedMonthlyData(t *testing.T, db *gorm.DB, year int) {
	t.Helper()
	day := func(month, d int) time.Time {
		return time.Date(year, time.Month(month), d, 12, 0, 0, 0, time.UTC)
	}

	revenues := []entity.Revenue{
		{ID: "rev-1", TenantID: testutil.TestTenant, CompanyID: "comp-001", Category: entity.RevenueCategoryConsultas, Description: "Consultas janeiro", Amount: 8000, Date: day(1, 10)},
		{ID: "rev-2", TenantID: testutil.TestTenant, CompanyID: "comp-001", Category: entity.RevenueCategoryCirurgias, Description: "Cirurgias março", Amount: 12000, Date: day(3, 5)},
		// 其他租户的数据不应计入
		{ID: "rev-3", TenantID: "tenant-other", CompanyID: "comp-x", Category: entity.RevenueCategoryVendas, Description: "Outro", Amount: 99999, Date: day(3, 6)},
	}
	expenses := []entity.Expense{
		{ID: "exp-1", TenantID: testutil.TestTenant, CompanyID: "comp-001", Category: entity.ExpenseCategoryAluguel, Description: "Aluguel", Amount: 3000, Date: day(1, 5), SourceType: entity.ExpenseSourceManual},
		{ID: "exp-2", TenantID: testutil.TestTenant, CompanyID: "comp-001", Category: entity.ExpenseCategoryFolha, Description: "Folha", Amount: 5000, Date: day(3, 1), SourceType: entity.ExpenseSourceManual},
		{ID: "exp-3", TenantID: testutil.TestTenant, CompanyID: "comp-001", Category: entity.ExpenseCategoryAluguel, Description: "Aluguel março", Amount: 3000, Date: day(3, 5), SourceType: entity.ExpenseSourceManual},
	}
	for i := range revenues {
		if err := db.Create(&revenues[i]).Error; err != nil {
			t.Fatalf("Failed to seed revenue: %v", err)
		}
	}
	for i := range expenses {
		if err := db.Create(&expenses[i]).Error; err != nil {
			t.Fatalf("Failed to seed expense: %v", err)
		}
	}
}

func TestYearlyReport(t *testing.T) {
	db, svc := setupReportTest(t)
	year := 2026
	seedMonthlyData(t, db, year)

	report, err := svc.Yearly(context.Background(), testutil.TestTenant, "", year)
	if err != nil {
		t.Fatalf("Yearly failed: %v", err)
	}

	if len(report.Months) != 12 {
		t.Fatalf("expected 12 months, got %d", len(report.Months))
	}
	jan := report.Months[0]
	if jan.Revenue != 8000 || jan.Expense != 3000 || jan.Net != 5000 {
		t.Fatalf("unexpected january summary: %+v", jan)
	}
	mar := report.Months[2]
	if mar.Revenue != 12000 || mar.Expense != 8000 {
		t.Fatalf("unexpected march summary: %+v", mar)
	}
	if report.TotalRevenue != 20000 || report.TotalExpense != 11000 || report.TotalNet != 9000 {
		t.Fatalf("unexpected totals: %+v", report)
	}
}

func TestExpenseBreakdownSorted(t *testing.T) {
	db, svc := setupReportTest(t)
	year := 2026
	seedMonthlyData(t, db, year)

	from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, 12, 31, 23, 59, 59, 0, time.UTC)
	breakdown, err := svc.ExpenseBreakdown(context.Background(), testutil.TestTenant, "", from, to)
	if err != nil {
		t.Fatalf("ExpenseBreakdown failed: %v", err)
	}

	if len(breakdown) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(breakdown))
	}
	if breakdown[0].Category != entity.ExpenseCategoryAluguel || breakdown[0].Amount != 6000 {
		t.Fatalf("expected aluguel 6000 first, got %+v", breakdown[0])
	}
	if breakdown[1].Category != entity.ExpenseCategoryFolha || breakdown[1].Amount != 5000 {
		t.Fatalf("expected folha 5000 second, got %+v", breakdown[1])
	}
}

func TestCashflowMergesExpensesAndBoletos(t *testing.T) {
	db, svc := setupReportTest(t)

	due1 := time.Now().AddDate(0, 0, 5)
	expense := entity.Expense{
		ID: "exp-due", TenantID: testutil.TestTenant, CompanyID: "comp-001",
		Category: entity.ExpenseCategoryImpostos, Description: "DAS agosto",
		Amount: 1200, Date: time.Now(), DueDate: &due1,
		SourceType: entity.ExpenseSourceManual,
	}
	if err := db.Create(&expense).Error; err != nil {
		t.Fatalf("Failed to seed expense: %v", err)
	}

	order := purentity.PurchaseOrder{
		ID: "po-cf-001", Code: "PC-2026-0009", TenantID: testutil.TestTenant,
		CompanyID: "comp-001", RequesterID: "test-user-001",
		VendorName: "Fornecedor", PaymentMethod: purentity.PaymentMethodBoleto,
		Status: purentity.OrderStatusAwaitingPayment, Total: 600,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	for i := 1; i <= 2; i++ {
		b := purentity.BoletoInstallment{
			ID: fmt.Sprintf("bol-cf-%03d", i), OrderID: order.ID, Seq: i,
			DueDate: time.Now().AddDate(0, 0, 10*i), Amount: 300,
		}
		if err := db.Create(&b).Error; err != nil {
			t.Fatalf("Failed to seed boleto: %v", err)
		}
	}
	// 已完成订单的boleto不计入
	doneOrder := order
	doneOrder.ID = "po-cf-002"
	doneOrder.Code = "PC-2026-0010"
	doneOrder.Status = purentity.OrderStatusCompleted
	if err := db.Create(&doneOrder).Error; err != nil {
		t.Fatalf("Failed to seed completed order: %v", err)
	}
	doneBoleto := purentity.BoletoInstallment{
		ID: "bol-cf-done", OrderID: doneOrder.ID, Seq: 1,
		DueDate: time.Now().AddDate(0, 0, 3), Amount: 999,
	}
	if err := db.Create(&doneBoleto).Error; err != nil {
		t.Fatalf("Failed to seed completed boleto: %v", err)
	}

	forecast, err := svc.Cashflow(context.Background(), testutil.TestTenant, 30)
	if err != nil {
		t.Fatalf("Cashflow failed: %v", err)
	}

	if len(forecast.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(forecast.Entries), forecast.Entries)
	}
	if forecast.Total != 1800 {
		t.Fatalf("expected total 1800, got %v", forecast.Total)
	}
	// 按到期日排序，第一个是5天后的支出
	if forecast.Entries[0].Source != "expense" {
		t.Fatalf("expected expense first, got %+v", forecast.Entries[0])
	}
	for i := 1; i < len(forecast.Entries); i++ {
		if forecast.Entries[i].DueDate.Before(forecast.Entries[i-1].DueDate) {
			t.Fatal("entries not sorted by due date")
		}
	}
}
