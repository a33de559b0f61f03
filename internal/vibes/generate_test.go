package vibes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/relocation-matcher/internal/llm"
)

type fakeLLM struct {
	response string
	err      error
	prompt   string
	tier     llm.ModelTier
}

func (f *fakeLLM) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateJSON(ctx, prompt, tier)
}

func (f *fakeLLM) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.prompt = prompt
	f.tier = tier
	return f.response, f.err
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake" }

func (f *fakeLLM) Close() error { return nil }

func TestGenerator_Assess(t *testing.T) {
	client := &fakeLLM{response: "```json\n" +
		`{"scores":{"nature":40,"nightlife":95,"family":35.6,"culture":70,"shopping":130},"summary":" Lively after dark. "}` +
		"\n```"}
	g := NewGenerator(client, nil)

	got, err := g.Assess(context.Background(), "  Shinjuku ")
	require.NoError(t, err)

	assert.Contains(t, client.prompt, "Area: Shinjuku")
	assert.Equal(t, llm.TierLite, client.tier)

	assert.Equal(t, "Shinjuku", got.Area)
	assert.Equal(t, "Lively after dark.", got.Summary)
	assert.Equal(t, map[string]int{Nature: 40, Nightlife: 95, Family: 36, Culture: 70, Shopping: 100}, got.Base)
	require.Len(t, got.Periods, 4)
	assert.Equal(t, 100, got.Periods[Night][Nightlife])
	assert.Equal(t, 50, got.Periods[Night][Shopping])
}

func TestNewAssessment_PeriodsUseUnroundedBase(t *testing.T) {
	got := NewAssessment("Kannai", "", map[string]float64{Nightlife: 64.6, Family: 35.6})

	assert.Equal(t, 65, got.Base[Nightlife])
	assert.Equal(t, 36, got.Base[Family])
	// 64.6*1.30 = 83.98, not 65*1.30 = 84.5
	assert.Equal(t, 84, got.Periods[Night][Nightlife])
	// 35.6*0.60 = 21.36, not 36*0.60 = 21.6
	assert.Equal(t, 21, got.Periods[Night][Family])
}

func TestGenerator_Assess_FillsMissingCategories(t *testing.T) {
	g := NewGenerator(&fakeLLM{response: `{"scores":{"nature":90,"onsen":80}}`}, nil)

	got, err := g.Assess(context.Background(), "Hakone")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		Nature: 90, Nightlife: DefaultScore, Family: DefaultScore, Culture: DefaultScore, Shopping: DefaultScore,
		"onsen": 80,
	}, got.Base)
	assert.Equal(t, 80, got.Periods[Night]["onsen"])
}

func TestGenerator_Assess_InvalidPayload(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "not json", response: "I cannot rate that area."},
		{name: "missing scores", response: `{"summary":"nice"}`},
		{name: "string score", response: `{"scores":{"nature":"high"}}`},
		{name: "empty scores", response: `{"scores":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(&fakeLLM{response: tt.response}, nil)

			_, err := g.Assess(context.Background(), "Nowhere")
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestGenerator_Assess_ClientError(t *testing.T) {
	cause := errors.New("quota exceeded")
	g := NewGenerator(&fakeLLM{err: cause}, nil)

	_, err := g.Assess(context.Background(), "Kyoto")

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInvalidPayload)
}

func TestGenerator_Assess_EmptyArea(t *testing.T) {
	client := &fakeLLM{}
	g := NewGenerator(client, nil)

	_, err := g.Assess(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrEmptyArea)
	assert.Empty(t, client.prompt)
}
