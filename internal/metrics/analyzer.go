package metrics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"adanalyst/internal/llm"
)

// Options configures an Analyzer.
type Options struct {
	Path          string
	UseSampleData bool
	SampleSize    int
	LowCTR        float64
	// NormalizeNames merges inconsistent campaign names through Generator.
	NormalizeNames bool
	Generator      llm.Generator
	Logger         *zap.Logger
}

// Analyzer loads, cleans and summarizes ad performance data.
type Analyzer struct {
	opts    Options
	log     *zap.Logger
	rows    []Row
	maxDate time.Time
	loaded  bool
}

// NewAnalyzer returns an Analyzer for the given options.
func NewAnalyzer(opts Options) *Analyzer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.UseSampleData && opts.SampleSize <= 0 {
		opts.SampleSize = 50
	}
	return &Analyzer{opts: opts, log: log}
}

// LoadAndClean reads the CSV source, normalizes campaign names, fills missing
// numbers and computes per-row ROAS. A missing file wraps ErrDataNotFound.
func (a *Analyzer) LoadAndClean(ctx context.Context) error {
	a.log.Info(fmt.Sprintf("Loading data from %s...", a.opts.Path))

	limit := 0
	if a.opts.UseSampleData {
		limit = a.opts.SampleSize
		a.log.Warn(fmt.Sprintf("SAMPLE MODE ACTIVE: Loading only first %d rows.", limit))
	}

	rows, err := readRows(a.opts.Path, limit)
	if err != nil {
		a.log.Error("Data load failed", zap.Error(err))
		return err
	}

	if names := uniqueCampaigns(rows); len(names) > 0 && a.opts.NormalizeNames && a.opts.Generator != nil {
		mapping := campaignNameMap(ctx, a.opts.Generator, names, a.log)
		for i := range rows {
			if standard, ok := mapping[rows[i].CampaignName]; ok {
				rows[i].CampaignName = standard
			}
		}
	}

	var maxDate time.Time
	for _, row := range rows {
		if row.Date.After(maxDate) {
			maxDate = row.Date
		}
	}

	a.rows = rows
	a.maxDate = maxDate
	a.loaded = true
	a.log.Info(fmt.Sprintf("Successfully loaded %d rows.", len(rows)))
	return nil
}

// Rows returns a copy of the cleaned rows.
func (a *Analyzer) Rows() ([]Row, error) {
	if !a.loaded {
		return nil, ErrNotLoaded
	}
	out := make([]Row, len(a.rows))
	copy(out, a.rows)
	return out, nil
}

// PerformanceSummary compares the trailing 7 days to the 7 days before them.
func (a *Analyzer) PerformanceSummary() (Summary, error) {
	if !a.loaded {
		return Summary{}, ErrNotLoaded
	}
	summary := Summary{WorstCampaignByROAS: NoCampaign}
	if len(a.rows) == 0 {
		return summary, nil
	}
	summary.PeriodEndDate = a.maxDate.Format("2006-01-02")

	lastWeek := a.maxDate.Add(-currentWindow)
	prevWeek := lastWeek.Add(-currentWindow)

	var current, previous []Row
	for _, row := range a.rows {
		switch {
		case row.Date.After(lastWeek):
			current = append(current, row)
		case row.Date.After(prevWeek):
			previous = append(previous, row)
		}
	}

	summary.CurrentROAS = round2(meanROAS(current))
	summary.PreviousROAS = round2(meanROAS(previous))

	if prevSpend := totalSpend(previous); len(previous) > 0 && prevSpend > 0 {
		summary.SpendChangePercent = round2((totalSpend(current) - prevSpend) / prevSpend * 100)
	}
	if len(current) > 0 {
		summary.WorstCampaignByROAS = worstCampaign(current)
	}
	return summary, nil
}

// BadCreatives lists up to MaxCreativeCandidates distinct messages from the
// trailing 30 days whose CTR is below the configured threshold.
func (a *Analyzer) BadCreatives() ([]CreativeCandidate, error) {
	if !a.loaded {
		return nil, ErrNotLoaded
	}
	cutoff := a.maxDate.Add(-creativeWindow)
	seen := make(map[string]struct{})
	out := []CreativeCandidate{}
	for _, row := range a.rows {
		if len(out) == MaxCreativeCandidates {
			break
		}
		if !row.Date.After(cutoff) || !row.HasCTR || row.CTR >= a.opts.LowCTR {
			continue
		}
		if _, dup := seen[row.CreativeMessage]; dup {
			continue
		}
		seen[row.CreativeMessage] = struct{}{}
		out = append(out, CreativeCandidate{
			CampaignName:    row.CampaignName,
			CreativeMessage: row.CreativeMessage,
			CTR:             row.CTR,
		})
	}
	return out, nil
}

func meanROAS(rows []Row) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for _, row := range rows {
		sum += row.ROAS
	}
	return sum / float64(len(rows))
}

func totalSpend(rows []Row) float64 {
	var sum float64
	for _, row := range rows {
		sum += row.Spend
	}
	return sum
}

// worstCampaign returns the campaign with the lowest mean ROAS. Ties resolve
// to the lexically smallest name.
func worstCampaign(rows []Row) string {
	type agg struct {
		sum   float64
		count int
	}
	byName := make(map[string]*agg)
	for _, row := range rows {
		g, ok := byName[row.CampaignName]
		if !ok {
			g = &agg{}
			byName[row.CampaignName] = g
		}
		g.sum += row.ROAS
		g.count++
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	worst := names[0]
	worstMean := byName[worst].sum / float64(byName[worst].count)
	for _, name := range names[1:] {
		if mean := byName[name].sum / float64(byName[name].count); mean < worstMean {
			worst, worstMean = name, mean
		}
	}
	return worst
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
