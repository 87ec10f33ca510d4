package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	finrepo "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/repository"
	purrepo "github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/repository"
)

// ReportService 财务报表服务
type ReportService struct {
	expenseRepo *finrepo.ExpenseRepository
	revenueRepo *finrepo.RevenueRepository
	orderRepo   *purrepo.OrderRepository
}

// NewReportService 创建报表服务
func NewReportService(
	expenseRepo *finrepo.ExpenseRepository,
	revenueRepo *finrepo.RevenueRepository,
	orderRepo *purrepo.OrderRepository,
) *ReportService {
	return &ReportService{expenseRepo: expenseRepo, revenueRepo: revenueRepo, orderRepo: orderRepo}
}

// MonthlySummary 单月收支汇总
type MonthlySummary struct {
	Month   int     `json:"month"`
	Revenue float64 `json:"revenue"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

// YearlyReport 年度收支报表
type YearlyReport struct {
	Year         int              `json:"year"`
	CompanyID    string           `json:"company_id,omitempty"`
	Months       []MonthlySummary `json:"months"`
	TotalRevenue float64          `json:"total_revenue"`
	TotalExpense float64          `json:"total_expense"`
	TotalNet     float64          `json:"total_net"`
}

// Yearly 按月汇总全年收支
func (s *ReportService) Yearly(ctx context.Context, tenantID, companyID string, year int) (*YearlyReport, error) {
	revenues, err := s.revenueRepo.SumByMonth(ctx, tenantID, companyID, year)
	if err != nil {
		return nil, fmt.Errorf("sum revenues: %w", err)
	}
	expenses, err := s.expenseRepo.SumByMonth(ctx, tenantID, companyID, year)
	if err != nil {
		return nil, fmt.Errorf("sum expenses: %w", err)
	}

	report := &YearlyReport{Year: year, CompanyID: companyID}
	for m := 1; m <= 12; m++ {
		rev := revenues[m]
		exp := expenses[m]
		report.Months = append(report.Months, MonthlySummary{
			Month:   m,
			Revenue: rev,
			Expense: exp,
			Net:     rev - exp,
		})
		report.TotalRevenue += rev
		report.TotalExpense += exp
	}
	report.TotalNet = report.TotalRevenue - report.TotalExpense
	return report, nil
}

// CategoryBreakdown 支出分类占比
type CategoryBreakdown struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// ExpenseBreakdown 按分类汇总指定区间的支出，降序排列
func (s *ReportService) ExpenseBreakdown(ctx context.Context, tenantID, companyID string, from, to time.Time) ([]CategoryBreakdown, error) {
	sums, err := s.expenseRepo.SumByCategory(ctx, tenantID, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}

	result := make([]CategoryBreakdown, 0, len(sums))
	for cat, amount := range sums {
		result = append(result, CategoryBreakdown{Category: cat, Amount: amount})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Amount > result[j].Amount
	})
	return result, nil
}

// CashflowEntry 现金流预测条目
type CashflowEntry struct {
	DueDate     time.Time `json:"due_date"`
	Amount      float64   `json:"amount"`
	Source      string    `json:"source"` // expense/boleto
	Description string    `json:"description"`
}

// CashflowForecast 现金流出预测
type CashflowForecast struct {
	From    time.Time       `json:"from"`
	To      time.Time       `json:"to"`
	Entries []CashflowEntry `json:"entries"`
	Total   float64         `json:"total"`
}

// Cashflow 预测未来days天内的现金流出：
// 未支付且有到期日的支出 + 待付款订单的boleto分期
func (s *ReportService) Cashflow(ctx context.Context, tenantID string, days int) (*CashflowForecast, error) {
	if days <= 0 {
		days = 30
	}
	from := time.Now()
	to := from.AddDate(0, 0, days)

	forecast := &CashflowForecast{From: from, To: to}

	expenses, err := s.expenseRepo.FindUnpaidDue(ctx, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("find unpaid expenses: %w", err)
	}
	for _, e := range expenses {
		forecast.Entries = append(forecast.Entries, CashflowEntry{
			DueDate:     *e.DueDate,
			Amount:      e.Amount,
			Source:      "expense",
			Description: e.Description,
		})
		forecast.Total += e.Amount
	}

	boletos, err := s.orderRepo.FindAwaitingPaymentBoletos(ctx, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("find pending boletos: %w", err)
	}
	for _, b := range boletos {
		forecast.Entries = append(forecast.Entries, CashflowEntry{
			DueDate:     b.DueDate,
			Amount:      b.Amount,
			Source:      "boleto",
			Description: fmt.Sprintf("Boleto parcela %d", b.Seq),
		})
		forecast.Total += b.Amount
	}

	sort.Slice(forecast.Entries, func(i, j int) bool {
		return forecast.Entries[i].DueDate.Before(forecast.Entries[j].DueDate)
	})
	return forecast, nil
}
