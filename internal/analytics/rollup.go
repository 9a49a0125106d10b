package analytics

import (
	"slices"
	"strings"
	"time"

	"rentledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type buildingAggregate struct {
	row    models.BuildingRollup
	amount decimal.Decimal
}

// BuildBuildingRollups groups unpaid periods by building and ranks buildings
// by unpaid amount, largest first. Equal amounts are ordered by name, then by
// building id so the order does not depend on row order.
func BuildBuildingRollups(periods []models.BuildingUnpaidPeriod, now time.Time) *models.RollupReport {
	byBuilding := make(map[uuid.UUID]*buildingAggregate)
	order := make([]uuid.UUID, 0)

	for _, p := range periods {
		agg, ok := byBuilding[p.BuildingID]
		if !ok {
			agg = &buildingAggregate{
				row: models.BuildingRollup{
					BuildingID:      p.BuildingID.String(),
					BuildingName:    p.BuildingName,
					BuildingAddress: p.BuildingAddress,
				},
				amount: decimal.Zero,
			}
			byBuilding[p.BuildingID] = agg
			order = append(order, p.BuildingID)
		}

		agg.row.UnpaidPeriods++
		switch p.Status {
		case models.RentStatusOverdue:
			agg.row.OverduePeriods++
		case models.RentStatusDue:
			agg.row.DuePeriods++
		}
		agg.amount = agg.amount.Add(decimal.NewFromFloat(p.Amount))
	}

	aggregates := make([]*buildingAggregate, 0, len(order))
	for _, id := range order {
		agg := byBuilding[id]
		agg.row.UnpaidAmount = agg.amount.InexactFloat64()
		aggregates = append(aggregates, agg)
	}

	// collate.Collator is not safe for concurrent use; one per call.
	names := collate.New(language.English)
	slices.SortFunc(aggregates, func(a, b *buildingAggregate) int {
		if c := b.amount.Cmp(a.amount); c != 0 {
			return c
		}
		if c := names.CompareString(a.row.BuildingName, b.row.BuildingName); c != 0 {
			return c
		}
		return strings.Compare(a.row.BuildingID, b.row.BuildingID)
	})

	rows := make([]models.BuildingRollup, len(aggregates))
	var totals models.RollupTotals
	totalAmount := decimal.Zero
	for i, agg := range aggregates {
		rows[i] = agg.row
		totals.UnpaidPeriods += agg.row.UnpaidPeriods
		totals.OverduePeriods += agg.row.OverduePeriods
		totals.DuePeriods += agg.row.DuePeriods
		totalAmount = totalAmount.Add(agg.amount)
		if agg.row.UnpaidPeriods > 0 {
			totals.BuildingsWithUnpaid++
		}
	}
	totals.UnpaidAmount = totalAmount.InexactFloat64()

	return &models.RollupReport{
		Buildings:   rows,
		Totals:      totals,
		GeneratedAt: now,
	}
}
