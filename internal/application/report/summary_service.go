package report

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ordertrack/backend/internal/domain/ledger"
	"github.com/ordertrack/backend/internal/domain/order"
	"github.com/ordertrack/backend/internal/domain/shared"
)

var hundred = decimal.NewFromInt(100)

// SummaryService computes financial aggregates over the ledger and the order
// book. All reads, no writes; missing data sums to zero rather than erroring.
type SummaryService struct {
	orders order.Repository
	txns   ledger.Repository
	logger *zap.Logger
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(orders order.Repository, txns ledger.Repository, logger *zap.Logger) *SummaryService {
	return &SummaryService{orders: orders, txns: txns, logger: logger}
}

// PeriodSummary holds the income, expense and net totals for one period.
// Net is computed per currency independently; the two currencies are never
// re-converted into each other. ProfitMargin is net over income in the
// primary currency, as a percentage, and 0 when there is no income.
type PeriodSummary struct {
	Label            string          `json:"label"`
	Month            int             `json:"month,omitempty"` // 1-12, absent on the total row
	Year             int             `json:"year"`
	IncomePrimary    decimal.Decimal `json:"income_tzs"`
	IncomeSecondary  decimal.Decimal `json:"income_usd"`
	ExpensePrimary   decimal.Decimal `json:"expense_tzs"`
	ExpenseSecondary decimal.Decimal `json:"expense_usd"`
	NetPrimary       decimal.Decimal `json:"net_tzs"`
	NetSecondary     decimal.Decimal `json:"net_usd"`
	ProfitMargin     decimal.Decimal `json:"profit_margin"`
}

// AnnualSummary is the twelve monthly summaries of a year plus a total row
// and the best and worst months by primary-currency net.
type AnnualSummary struct {
	Year       int             `json:"year"`
	Months     []PeriodSummary `json:"months"`
	Total      PeriodSummary   `json:"total"`
	BestMonth  PeriodSummary   `json:"best_month"`
	WorstMonth PeriodSummary   `json:"worst_month"`
}

// ProductStat is one row of the product ranking
type ProductStat struct {
	ProductService string          `json:"product_service"`
	OrderCount     int             `json:"order_count"`
	Revenue        decimal.Decimal `json:"revenue"`
}

// DashboardStats is the snapshot shown on the landing view
type DashboardStats struct {
	TotalOrders         int64           `json:"total_orders"`
	UnpaidOrders        int64           `json:"unpaid_orders"`
	PendingDeliveries   int64           `json:"pending_deliveries"`
	TotalPendingPrimary decimal.Decimal `json:"total_pending_tzs"`
	MonthToDate         PeriodSummary   `json:"month_to_date"`
	YearToDate          PeriodSummary   `json:"year_to_date"`
}

// MonthlySummary sums the ledger over one calendar month
func (s *SummaryService) MonthlySummary(ctx context.Context, year int, month time.Month) (*PeriodSummary, error) {
	if month < time.January || month > time.December {
		return nil, shared.NewDomainError("INVALID_INPUT", "month must be between 1 and 12")
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	totals, err := s.txns.SumByCategory(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary := newPeriodSummary(month.String(), int(month), year, totals)
	return &summary, nil
}

// AnnualSummary sums the ledger month by month over one year
func (s *SummaryService) AnnualSummary(ctx context.Context, year int) (*AnnualSummary, error) {
	result := &AnnualSummary{Year: year, Months: make([]PeriodSummary, 0, 12)}

	var total ledger.PeriodTotals
	for month := time.January; month <= time.December; month++ {
		from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, -1)

		totals, err := s.txns.SumByCategory(ctx, from, to)
		if err != nil {
			return nil, err
		}
		result.Months = append(result.Months, newPeriodSummary(month.String(), int(month), year, totals))

		total.IncomePrimary = total.IncomePrimary.Add(totals.IncomePrimary)
		total.IncomeSecondary = total.IncomeSecondary.Add(totals.IncomeSecondary)
		total.ExpensePrimary = total.ExpensePrimary.Add(totals.ExpensePrimary)
		total.ExpenseSecondary = total.ExpenseSecondary.Add(totals.ExpenseSecondary)
	}
	result.Total = newPeriodSummary("Total", 0, year, total)

	best, worst := 0, 0
	for i := range result.Months {
		if result.Months[i].NetPrimary.GreaterThan(result.Months[best].NetPrimary) {
			best = i
		}
		if result.Months[i].NetPrimary.LessThan(result.Months[worst].NetPrimary) {
			worst = i
		}
	}
	result.BestMonth = result.Months[best]
	result.WorstMonth = result.Months[worst]
	return result, nil
}

// TopProducts ranks products by paid revenue across all orders. The sort is
// stable, so products with equal revenue keep their first-seen order.
func (s *SummaryService) TopProducts(ctx context.Context, limit int) ([]ProductStat, error) {
	if limit <= 0 {
		limit = 10
	}

	orders, err := s.orders.FindAll(ctx, order.Filter{})
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	stats := make([]ProductStat, 0)
	for i := range orders {
		o := &orders[i]
		pos, ok := index[o.ProductService]
		if !ok {
			pos = len(stats)
			index[o.ProductService] = pos
			stats = append(stats, ProductStat{ProductService: o.ProductService})
		}
		stats[pos].OrderCount++
		stats[pos].Revenue = stats[pos].Revenue.Add(o.PaidAmount)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Revenue.GreaterThan(stats[j].Revenue)
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

// Dashboard assembles the landing-view snapshot for the given reference time
func (s *SummaryService) Dashboard(ctx context.Context, now time.Time) (*DashboardStats, error) {
	orders, err := s.orders.FindAll(ctx, order.Filter{})
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{TotalOrders: int64(len(orders))}
	for i := range orders {
		o := &orders[i]
		if !o.IsPaid() {
			stats.UnpaidOrders++
		}
		if o.DeliveryStatus != order.DeliveryStatusDelivered {
			stats.PendingDeliveries++
		}
		stats.TotalPendingPrimary = stats.TotalPendingPrimary.Add(o.PendingAmount)
	}

	now = now.UTC()
	monthly, err := s.MonthlySummary(ctx, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	stats.MonthToDate = *monthly

	yearFrom := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	yearTo := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	yearTotals, err := s.txns.SumByCategory(ctx, yearFrom, yearTo)
	if err != nil {
		return nil, err
	}
	stats.YearToDate = newPeriodSummary("Year to date", 0, now.Year(), yearTotals)
	return stats, nil
}

func newPeriodSummary(label string, month, year int, totals ledger.PeriodTotals) PeriodSummary {
	summary := PeriodSummary{
		Label:            label,
		Month:            month,
		Year:             year,
		IncomePrimary:    totals.IncomePrimary,
		IncomeSecondary:  totals.IncomeSecondary,
		ExpensePrimary:   totals.ExpensePrimary,
		ExpenseSecondary: totals.ExpenseSecondary,
		NetPrimary:       totals.NetPrimary(),
		NetSecondary:     totals.NetSecondary(),
		ProfitMargin:     decimal.Zero,
	}
	if summary.IncomePrimary.IsPositive() {
		summary.ProfitMargin = summary.NetPrimary.Div(summary.IncomePrimary).Mul(hundred).Round(2)
	}
	return summary
}
