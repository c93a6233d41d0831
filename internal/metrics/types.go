package metrics

import (
	"errors"
	"time"
)

var (
	// ErrDataNotFound is returned by LoadAndClean when the source file is absent.
	ErrDataNotFound = errors.New("data source not found")
	// ErrNotLoaded is returned by queries issued before LoadAndClean.
	ErrNotLoaded = errors.New("data not loaded")
)

// NoCampaign is reported as the worst campaign when the current period is empty.
const NoCampaign = "N/A"

// Row is one cleaned performance record.
type Row struct {
	Date            time.Time
	CampaignName    string
	CreativeMessage string
	Spend           float64
	Revenue         float64
	Clicks          float64
	Purchases       float64
	CTR             float64
	// HasCTR is false when the source row had no click-through rate.
	HasCTR bool
	// ROAS is Revenue/Spend, or 0 when Spend is not positive.
	ROAS float64
}

// Summary is the fixed-shape period-over-period view of the data.
type Summary struct {
	PeriodEndDate       string  `json:"period_end_date"`
	CurrentROAS         float64 `json:"current_roas"`
	PreviousROAS        float64 `json:"previous_roas"`
	SpendChangePercent  float64 `json:"spend_change_percent"`
	WorstCampaignByROAS string  `json:"worst_campaign_by_roas"`
}

// CreativeCandidate is an underperforming ad message.
type CreativeCandidate struct {
	CampaignName    string  `json:"campaign_name"`
	CreativeMessage string  `json:"creative_message"`
	CTR             float64 `json:"ctr"`
}

const (
	currentWindow  = 7 * 24 * time.Hour
	creativeWindow = 30 * 24 * time.Hour
	// MaxCreativeCandidates caps the list returned by BadCreatives.
	MaxCreativeCandidates = 5
)
