package models

import "time"

// AgingBucket is one days-overdue band. MaxDays is nil for the open-ended band.
type AgingBucket struct {
	Label         string  `json:"label"`
	MinDays       int     `json:"min_days"`
	MaxDays       *int    `json:"max_days"`
	UnpaidPeriods int     `json:"unpaid_periods"`
	UnpaidAmount  float64 `json:"unpaid_amount"`
}

type AgingTotals struct {
	UnpaidPeriods  int     `json:"unpaid_periods"`
	UnpaidAmount   float64 `json:"unpaid_amount"`
	DuePeriods     int     `json:"due_periods"`
	OverduePeriods int     `json:"overdue_periods"`
}

type AgingReport struct {
	Buckets     []AgingBucket `json:"buckets"`
	Totals      AgingTotals   `json:"totals"`
	GeneratedAt time.Time     `json:"generated_at"`
}

type BuildingRollup struct {
	BuildingID      string  `json:"building_id"`
	BuildingName    string  `json:"building_name"`
	BuildingAddress *string `json:"building_address"`
	UnpaidPeriods   int     `json:"unpaid_periods"`
	OverduePeriods  int     `json:"overdue_periods"`
	DuePeriods      int     `json:"due_periods"`
	UnpaidAmount    float64 `json:"unpaid_amount"`
}

type RollupTotals struct {
	UnpaidPeriods       int     `json:"unpaid_periods"`
	OverduePeriods      int     `json:"overdue_periods"`
	DuePeriods          int     `json:"due_periods"`
	UnpaidAmount        float64 `json:"unpaid_amount"`
	BuildingsWithUnpaid int     `json:"buildings_with_unpaid"`
}

type RollupReport struct {
	Buildings   []BuildingRollup `json:"buildings"`
	Totals      RollupTotals     `json:"totals"`
	GeneratedAt time.Time        `json:"generated_at"`
}

type CollectionMetrics struct {
	TotalDue        float64 `json:"total_due"`
	TotalCollected  float64 `json:"total_collected"`
	CollectionRate  float64 `json:"collection_rate"`
	PeriodCount     int     `json:"period_count"`
	PaidPeriodCount int     `json:"paid_period_count"`
}

// DateRange is an inclusive window of YYYY-MM-DD dates.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type CollectionReport struct {
	Metrics     CollectionMetrics `json:"metrics"`
	DateRange   DateRange         `json:"date_range"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// OrgStats are raw row counts for an organization's dashboard.
type OrgStats struct {
	Buildings      int64 `json:"buildings"`
	Units          int64 `json:"units"`
	Tenants        int64 `json:"tenants"`
	Occupancies    int64 `json:"occupancies"`
	RentConfigs    int64 `json:"rent_configs"`
	RentPeriods    int64 `json:"rent_periods"`
	OverduePeriods int64 `json:"overdue_periods"`
}

// ReportKind names one of the fixed report shapes.
type ReportKind string

const (
	ReportDelinquencyAging ReportKind = "delinquency-aging"
	ReportBuildingRollups  ReportKind = "building-rollups"
	ReportCollectionRate   ReportKind = "collection-rate"
)

// ReportExport describes an uploaded CSV rendering of a report.
type ReportExport struct {
	Kind        ReportKind `json:"kind"`
	Bucket      string     `json:"bucket"`
	ObjectName  string     `json:"object_name"`
	URL         string     `json:"url"`
	SizeBytes   int64      `json:"size_bytes"`
	GeneratedAt time.Time  `json:"generated_at"`
}
