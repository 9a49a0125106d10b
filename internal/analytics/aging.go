package analytics

import (
	"time"

	"rentledger/internal/models"

	"github.com/shopspring/decimal"
)

// agingBand is one fixed days-overdue range. max < 0 means unbounded.
type agingBand struct {
	label string
	min   int
	max   int
}

// agingBands partition [0, ∞) and are reported in this order.
var agingBands = []agingBand{
	{label: "0-7", min: 0, max: 7},
	{label: "8-15", min: 8, max: 15},
	{label: "16-30", min: 16, max: 30},
	{label: "31+", min: 31, max: -1},
}

func (b agingBand) contains(days int) bool {
	return days >= b.min && (b.max < 0 || days <= b.max)
}

// bucketIndex returns the band holding days, or -1.
func bucketIndex(days int) int {
	for i, b := range agingBands {
		if b.contains(days) {
			return i
		}
	}
	return -1
}

// effectiveDaysOverdue is 0 for DUE periods and the clamped stored value otherwise.
func effectiveDaysOverdue(p models.UnpaidPeriod) int {
	if p.Status != models.RentStatusOverdue {
		return 0
	}
	if p.DaysOverdue == nil || *p.DaysOverdue < 0 {
		return 0
	}
	return *p.DaysOverdue
}

// BuildAgingReport buckets unpaid periods by days overdue. All four buckets
// are always present, in fixed order.
func BuildAgingReport(periods []models.UnpaidPeriod, now time.Time) *models.AgingReport {
	counts := make([]int, len(agingBands))
	amounts := make([]decimal.Decimal, len(agingBands))
	for i := range amounts {
		amounts[i] = decimal.Zero
	}

	var totals models.AgingTotals
	totalAmount := decimal.Zero

	for _, p := range periods {
		idx := bucketIndex(effectiveDaysOverdue(p))
		if idx < 0 {
			continue
		}
		amount := decimal.NewFromFloat(p.Amount)

		counts[idx]++
		amounts[idx] = amounts[idx].Add(amount)

		totals.UnpaidPeriods++
		totalAmount = totalAmount.Add(amount)
		switch p.Status {
		case models.RentStatusDue:
			totals.DuePeriods++
		case models.RentStatusOverdue:
			totals.OverduePeriods++
		}
	}
	totals.UnpaidAmount = totalAmount.InexactFloat64()

	buckets := make([]models.AgingBucket, len(agingBands))
	for i, b := range agingBands {
		bucket := models.AgingBucket{
			Label:         b.label,
			MinDays:       b.min,
			UnpaidPeriods: counts[i],
			UnpaidAmount:  amounts[i].InexactFloat64(),
		}
		if b.max >= 0 {
			upper := b.max
			bucket.MaxDays = &upper
		}
		buckets[i] = bucket
	}

	return &models.AgingReport{
		Buckets:     buckets,
		Totals:      totals,
		GeneratedAt: now,
	}
}
