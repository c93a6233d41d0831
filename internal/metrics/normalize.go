package metrics

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"adanalyst/internal/guardrails"
	"adanalyst/internal/llm"
)

const normalizePrompt = `You are a Data Quality Expert. Map inconsistent campaign names to their standard versions.
Return ONLY a valid JSON object: {"messy_name": "Standard Name"}.`

// uniqueCampaigns lists campaign names in order of first appearance.
func uniqueCampaigns(rows []Row) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, row := range rows {
		if _, ok := seen[row.CampaignName]; ok {
			continue
		}
		seen[row.CampaignName] = struct{}{}
		names = append(names, row.CampaignName)
	}
	return names
}

// campaignNameMap asks the generator for a messy -> standard mapping. Any
// failure yields the identity mapping.
func campaignNameMap(ctx context.Context, gen llm.Generator, names []string, log *zap.Logger) map[string]string {
	identity := make(map[string]string, len(names))
	for _, n := range names {
		identity[n] = n
	}

	log.Info(fmt.Sprintf("Asking AI to standardize %d unique campaign variations...", len(names)))
	list, err := json.Marshal(names)
	if err != nil {
		log.Error("AI Cleaning failed", zap.Error(err))
		return identity
	}
	reply := gen.Generate(ctx, normalizePrompt, "List: "+string(list))
	if reply.Failed() {
		log.Error("AI Cleaning failed", zap.Error(reply.Err))
		return identity
	}

	var mapping map[string]string
	if err := guardrails.NameMap.Decode(reply.Text, &mapping); err != nil {
		log.Error("AI Cleaning failed", zap.Error(err))
		return identity
	}
	for messy, standard := range mapping {
		if _, known := identity[messy]; known && standard != "" {
			identity[messy] = standard
		}
	}
	return identity
}
