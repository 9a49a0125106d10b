package analytics

import (
	"time"

	"rentledger/internal/common"
	"rentledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ReportWindow is an inclusive range of calendar days, both ends at midnight UTC.
type ReportWindow struct {
	Start time.Time
	End   time.Time
}

// ParseReportWindow validates and normalizes the caller's bounds.
func ParseReportWindow(startDate, endDate string) (ReportWindow, error) {
	start, err := common.ParseCalendarDate(startDate)
	if err != nil {
		return ReportWindow{}, common.NewInvalidDateRangeError("start_date must be a valid date")
	}
	end, err := common.ParseCalendarDate(endDate)
	if err != nil {
		return ReportWindow{}, common.NewInvalidDateRangeError("end_date must be a valid date")
	}
	if start.After(end) {
		return ReportWindow{}, common.NewInvalidDateRangeError("start_date cannot be after end_date")
	}
	return ReportWindow{Start: start, End: end}, nil
}

// DateRange renders the window in the storage date convention.
func (w ReportWindow) DateRange() models.DateRange {
	return models.DateRange{
		StartDate: common.FormatDate(w.Start),
		EndDate:   common.FormatDate(w.End),
	}
}

// PaidAtFrom is 00:00:00Z on the first day.
func (w ReportWindow) PaidAtFrom() time.Time {
	return w.Start
}

// PaidAtTo is 23:59:59Z on the last day.
func (w ReportWindow) PaidAtTo() time.Time {
	return w.End.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
}

func (w ReportWindow) containsDueDate(d time.Time) bool {
	day := common.FormatDate(d.UTC())
	r := w.DateRange()
	return day >= r.StartDate && day <= r.EndDate
}

func (w ReportWindow) containsPaidAt(t time.Time) bool {
	return !t.Before(w.PaidAtFrom()) && !t.After(w.PaidAtTo())
}

// EmptyCollectionReport is the all-zero report for a window with no due periods.
func EmptyCollectionReport(window ReportWindow, now time.Time) *models.CollectionReport {
	return &models.CollectionReport{
		DateRange:   window.DateRange(),
		GeneratedAt: now,
	}
}

// BuildCollectionReport compares what fell due in the window with what was
// paid in the window against those same periods. A payment counts only when
// both its period's due date and its own timestamp are inside the window.
func BuildCollectionReport(window ReportWindow, periods []models.DuePeriod, payments []models.PeriodPayment, now time.Time) *models.CollectionReport {
	inWindow := make(map[uuid.UUID]struct{}, len(periods))
	totalDue := decimal.Zero
	for _, p := range periods {
		if !window.containsDueDate(p.DueDate) {
			continue
		}
		if _, seen := inWindow[p.PeriodID]; seen {
			continue
		}
		inWindow[p.PeriodID] = struct{}{}
		totalDue = totalDue.Add(decimal.NewFromFloat(p.Amount))
	}
	if len(inWindow) == 0 {
		return EmptyCollectionReport(window, now)
	}

	totalCollected := decimal.Zero
	paidPeriods := make(map[uuid.UUID]struct{})
	for _, pay := range payments {
		if _, ok := inWindow[pay.RentPeriodID]; !ok {
			continue
		}
		if !window.containsPaidAt(pay.PaidAt) {
			continue
		}
		totalCollected = totalCollected.Add(decimal.NewFromFloat(pay.Amount))
		paidPeriods[pay.RentPeriodID] = struct{}{}
	}

	return &models.CollectionReport{
		Metrics: models.CollectionMetrics{
			TotalDue:        totalDue.InexactFloat64(),
			TotalCollected:  totalCollected.InexactFloat64(),
			CollectionRate:  collectionRate(totalCollected, totalDue),
			PeriodCount:     len(inWindow),
			PaidPeriodCount: len(paidPeriods),
		},
		DateRange:   window.DateRange(),
		GeneratedAt: now,
	}
}

// collectionRate is collected/due as a percentage rounded half away from zero
// to two places, or 0 when nothing was due. Values above 100 are kept.
func collectionRate(collected, due decimal.Decimal) float64 {
	if !due.IsPositive() {
		return 0
	}
	return collected.Div(due).Mul(hundred).Round(2).InexactFloat64()
}
