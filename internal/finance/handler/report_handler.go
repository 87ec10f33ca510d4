package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/finance/service"
)

// ReportHandler 财务报表处理器
type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// YearlyReport 年度收支报表
func (h *ReportHandler) YearlyReport(c *gin.Context) {
	year := time.Now().Year()
	if y := c.Query("year"); y != "" {
		if v, err := strconv.Atoi(y); err == nil && v >= 2000 && v <= 2100 {
			year = v
		}
	}

	report, err := h.svc.Yearly(c.Request.Context(), GetTenantID(c), c.Query("company_id"), year)
	if err != nil {
		InternalError(c, "生成年度报表失败: "+err.Error())
		return
	}
	Success(c, report)
}

// ExpenseBreakdown 支出分类汇总
func (h *ReportHandler) ExpenseBreakdown(c *gin.Context) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0).Add(-time.Second)

	if f := c.Query("from"); f != "" {
		t, err := time.Parse("2006-01-02", f)
		if err != nil {
			BadRequest(c, "起始日期格式无效: "+f)
			return
		}
		from = t
	}
	if tq := c.Query("to"); tq != "" {
		t, err := time.Parse("2006-01-02", tq)
		if err != nil {
			BadRequest(c, "结束日期格式无效: "+tq)
			return
		}
		to = t
	}

	breakdown, err := h.svc.ExpenseBreakdown(c.Request.Context(), GetTenantID(c), c.Query("company_id"), from, to)
	if err != nil {
		InternalError(c, "生成分类汇总失败: "+err.Error())
		return
	}
	Success(c, breakdown)
}

// Cashflow 现金流出预测
func (h *ReportHandler) Cashflow(c *gin.Context) {
	days := 30
	if d := c.Query("days"); d != "" {
		if v, err := strconv.Atoi(d); err == nil && v > 0 && v <= 365 {
			days = v
		}
	}

	forecast, err := h.svc.Cashflow(c.Request.Context(), GetTenantID(c), days)
	if err != nil {
		InternalError(c, "生成现金流预测失败: "+err.Error())
		return
	}
	Success(c, forecast)
}
