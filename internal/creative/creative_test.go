package creative

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"adanalyst/internal/llm/llmtest"
	"adanalyst/internal/metrics"
	"adanalyst/internal/prompts"
	"adanalyst/internal/stage"
)

var (
	withTemplate = prompts.Static{prompts.Creative: "Rewrite these."}
	candidates   = []metrics.CreativeCandidate{
		{CampaignName: "Spring", CreativeMessage: "Buy now", CTR: 0.004},
	}
)

func TestGenerateVariations(t *testing.T) {
	script := llmtest.NewScript("```json\n[{\"original\": \"Buy now\", \"new_headline\": \"Spring is here\"}]\n```")
	a := New(withTemplate, script, zaptest.NewLogger(t))

	out := a.GenerateVariations(context.Background(), candidates)
	require.False(t, out.IsFallback())
	require.Len(t, out.Value, 1)
	assert.Equal(t, "Spring is here", out.Value[0]["new_headline"])

	calls := script.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Here are the failing ads: [\n  {\n"+
		"    \"campaign_name\": \"Spring\",\n"+
		"    \"creative_message\": \"Buy now\",\n"+
		"    \"ctr\": 0.004\n  }\n]", calls[0].User)
}

func TestGenerateVariationsNoCandidates(t *testing.T) {
	script := llmtest.NewScript("[]")
	out := New(withTemplate, script, nil).GenerateVariations(context.Background(), nil)
	assert.Equal(t, stage.NoInput, out.Reason)
	assert.NotNil(t, out.Value)
	assert.Empty(t, out.Value)
	assert.Empty(t, script.Calls())
}

func TestGenerateVariationsFallbacks(t *testing.T) {
	cases := []struct {
		name    string
		prompts prompts.Reader
		script  *llmtest.Script
		reason  stage.Reason
	}{
		{"template missing", prompts.Static{}, llmtest.NewScript("[]"), stage.TemplateMissing},
		{"transport", withTemplate, llmtest.NewScript().Fail(), stage.TransportError},
		{"prose", withTemplate, llmtest.NewScript("Here are some ideas..."), stage.ParseFailure},
		{"array of strings", withTemplate, llmtest.NewScript(`["a", "b"]`), stage.ParseFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := New(tc.prompts, tc.script, zaptest.NewLogger(t)).GenerateVariations(context.Background(), candidates)
			assert.Equal(t, tc.reason, out.Reason)
			assert.NotNil(t, out.Value)
			assert.Empty(t, out.Value)
		})
	}
}
