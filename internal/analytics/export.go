package analytics

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"rentledger/internal/common"
	"rentledger/internal/models"
)

const csvContentType = "text/csv"

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func writeCSV(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderAgingCSV writes one row per bucket followed by a totals row.
func RenderAgingCSV(report *models.AgingReport) ([]byte, error) {
	records := [][]string{{"bucket", "min_days", "max_days", "unpaid_periods", "unpaid_amount"}}
	for _, b := range report.Buckets {
		maxDays := ""
		if b.MaxDays != nil {
			maxDays = strconv.Itoa(*b.MaxDays)
		}
		records = append(records, []string{
			b.Label, strconv.Itoa(b.MinDays), maxDays, strconv.Itoa(b.UnpaidPeriods), formatAmount(b.UnpaidAmount),
		})
	}
	records = append(records,
		[]string{"total", "", "", strconv.Itoa(report.Totals.UnpaidPeriods), formatAmount(report.Totals.UnpaidAmount)},
		[]string{"generated_at", report.GeneratedAt.Format(time.RFC3339)},
	)
	return writeCSV(fixedWidth(records, 5))
}

// RenderRollupCSV writes buildings in report order followed by a totals row.
func RenderRollupCSV(report *models.RollupReport) ([]byte, error) {
	records := [][]string{{"building_id", "building_name", "building_address", "unpaid_periods", "overdue_periods", "due_periods", "unpaid_amount"}}
	for _, b := range report.Buildings {
		records = append(records, []string{
			b.BuildingID,
			b.BuildingName,
			common.SafeString(b.BuildingAddress),
			strconv.Itoa(b.UnpaidPeriods),
			strconv.Itoa(b.OverduePeriods),
			strconv.Itoa(b.DuePeriods),
			formatAmount(b.UnpaidAmount),
		})
	}
	t := report.Totals
	records = append(records,
		[]string{"total", fmt.Sprintf("%d buildings", t.BuildingsWithUnpaid), "", strconv.Itoa(t.UnpaidPeriods), strconv.Itoa(t.OverduePeriods), strconv.Itoa(t.DuePeriods), formatAmount(t.UnpaidAmount)},
		[]string{"generated_at", report.GeneratedAt.Format(time.RFC3339)},
	)
	return writeCSV(fixedWidth(records, 7))
}

// RenderCollectionCSV writes the window and its metrics as key/value rows.
func RenderCollectionCSV(report *models.CollectionReport) ([]byte, error) {
	m := report.Metrics
	return writeCSV([][]string{
		{"metric", "value"},
		{"start_date", report.DateRange.StartDate},
		{"end_date", report.DateRange.EndDate},
		{"total_due", formatAmount(m.TotalDue)},
		{"total_collected", formatAmount(m.TotalCollected)},
		{"collection_rate", formatAmount(m.CollectionRate)},
		{"period_count", strconv.Itoa(m.PeriodCount)},
		{"paid_period_count", strconv.Itoa(m.PaidPeriodCount)},
		{"generated_at", report.GeneratedAt.Format(time.RFC3339)},
	})
}

// fixedWidth pads short records to width columns.
func fixedWidth(records [][]string, width int) [][]string {
	for i, r := range records {
		for len(r) < width {
			r = append(r, "")
		}
		records[i] = r
	}
	return records
}
