package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/relocation-matcher/internal/matching"
	"github.com/jonathan/relocation-matcher/internal/types"
)

type panickingMatcher struct{}

func (panickingMatcher) Match(context.Context, uuid.UUID, types.AnswerSet) ([]types.ScoredProperty, error) {
	panic("scorer exploded")
}

const fullAnswers = `{"q1_work_mode":"remote_majority","q3_household":"single","q4_priority":"nature","q5_budget":"under_150k"}`

func decodeMatch(t *testing.T, body []byte) types.MatchResponse {
	t.Helper()
	var resp types.MatchResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestAIMatch_RanksAndExplains(t *testing.T) {
	env := newTestEnv(t)
	tokyo := env.store.addProperty("Tokyo", 320000)
	nagano := env.store.addProperty("Nagano", 140000)
	userID, token := env.token(t, "aki@example.com")

	rec := env.do(http.MethodPost, "/api/ai-match", token, fullAnswers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeMatch(t, rec.Body.Bytes())
	assert.True(t, resp.Success)
	require.Len(t, resp.Properties, 2)

	first := resp.Properties[0]
	assert.Equal(t, nagano.ID, first.ID)
	assert.Equal(t, 84, first.AIScore)
	assert.Equal(t, []string{
		matching.ReasonBudgetFit,
		matching.ReasonNature,
		matching.ReasonRemoteWork,
		matching.ReasonSingleAffordable,
	}, first.MatchReasons)
	assert.Equal(t, types.ScoreBreakdown{Budget: 100, Lifestyle: 90, Environment: 50, Workstyle: 90, Family: 80}, first.ScoreBreakdown)

	second := resp.Properties[1]
	assert.Equal(t, tokyo.ID, second.ID)
	assert.Equal(t, 54, second.AIScore)
	assert.Equal(t, []string{matching.ReasonUrban}, second.MatchReasons)

	stored, err := env.store.ListMatchResults(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestAIMatch_WireShape(t *testing.T) {
	env := newTestEnv(t)
	env.store.addProperty("Nagano", 140000)
	_, token := env.token(t, "aki@example.com")

	rec := env.do(http.MethodPost, "/api/ai-match", token, fullAnswers)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	items := raw["properties"].([]any)
	item := items[0].(map[string]any)
	for _, key := range []string{"id", "title", "region", "monthly_cost", "ai_score", "match_reasons", "score_breakdown"} {
		assert.Contains(t, item, key)
	}
	breakdown := item["score_breakdown"].(map[string]any)
	assert.Len(t, breakdown, 5)
}

func TestAIMatch_TruncatesToDisplayLimit(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 15; i++ {
		env.store.addProperty("Tokyo", 100000+i*10000)
	}
	userID, token := env.token(t, "aki@example.com")

	rec := env.do(http.MethodPost, "/api/ai-match", token, `{"q5_budget":"150k_250k"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeMatch(t, rec.Body.Bytes())
	assert.Len(t, resp.Properties, matching.DisplayLimit)

	stored, err := env.store.ListMatchResults(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, stored, matching.PersistLimit)
}

func TestAIMatch_SparseAnswersAccepted(t *testing.T) {
	env := newTestEnv(t)
	env.store.addProperty("Okinawa", 200000)
	_, token := env.token(t, "aki@example.com")

	rec := env.do(http.MethodPost, "/api/ai-match", token, `{"q5_budget":"whatever","extra_key":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeMatch(t, rec.Body.Bytes())
	require.Len(t, resp.Properties, 1)
	// budget 30, the rest neutral: (900+1250+1000+750+500+50)/100
	assert.Equal(t, 44, resp.Properties[0].AIScore)
	assert.Empty(t, resp.Properties[0].MatchReasons)
	assert.NotNil(t, resp.Properties[0].MatchReasons)
}

func TestAIMatch_EmptyBodyUsesStoredAnswers(t *testing.T) {
	env := newTestEnv(t)
	env.store.addProperty("Nagano", 140000)
	userID, token := env.token(t, "aki@example.com")

	_, err := env.store.SaveAnswers(context.Background(), userID, types.AnswerSet{
		WorkMode:  types.WorkModeRemoteMajority,
		Household: types.HouseholdSingle,
		Priority:  types.PriorityNature,
		Budget:    types.BudgetUnder150k,
	})
	require.NoError(t, err)

	for _, body := range []string{"", "  \n"} {
		rec := env.do(http.MethodPost, "/api/ai-match", token, body)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeMatch(t, rec.Body.Bytes())
		require.Len(t, resp.Properties, 1)
		assert.Equal(t, 84, resp.Properties[0].AIScore)
	}
}

func TestAIMatch_ExplicitEmptyObjectIsNeutral(t *testing.T) {
	neutral := types.ScoreBreakdown{Budget: 50, Lifestyle: 50, Environment: 50, Workstyle: 50, Family: 50}

	t.Run("stored diagnosis is ignored", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.addProperty("Nagano", 140000)
		userID, token := env.token(t, "aki@example.com")
		_, err := env.store.SaveAnswers(context.Background(), userID, types.AnswerSet{
			Priority: types.PriorityNature,
			Budget:   types.BudgetUnder150k,
		})
		require.NoError(t, err)

		rec := env.do(http.MethodPost, "/api/ai-match", token, "{}")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeMatch(t, rec.Body.Bytes())
		require.Len(t, resp.Properties, 1)
		assert.Equal(t, 50, resp.Properties[0].AIScore)
		assert.Equal(t, neutral, resp.Properties[0].ScoreBreakdown)
		assert.Empty(t, resp.Properties[0].MatchReasons)
	})

	t.Run("no stored diagnosis", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.addProperty("Tokyo", 320000)
		env.store.addProperty("Nagano", 140000)
		_, token := env.token(t, "aki@example.com")

		rec := env.do(http.MethodPost, "/api/ai-match", token, "{}")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeMatch(t, rec.Body.Bytes())
		require.Len(t, resp.Properties, 2)
		for _, p := range resp.Properties {
			assert.Equal(t, 50, p.AIScore)
			assert.Equal(t, neutral, p.ScoreBreakdown)
		}
	})
}

func TestAIMatch_EmptyBodyWithoutStoredAnswers(t *testing.T) {
	env := newTestEnv(t)
	env.store.addProperty("Nagano", 140000)
	_, token := env.token(t, "aki@example.com")

	rec := env.do(http.MethodPost, "/api/ai-match", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeMatch(t, rec.Body.Bytes())
	require.Len(t, resp.Properties, 1)
	assert.Equal(t, 50, resp.Properties[0].AIScore)
}

func TestAIMatch_StoredAnswersErrorIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	env.store.addProperty("Nagano", 140000)
	env.store.answersErr = errors.New("db down")
	_, token := env.token(t, "aki@example.com")

	rec := env.do(http.MethodPost, "/api/ai-match", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAIMatch_BadBodies(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.token(t, "aki@example.com")

	tests := []struct {
		name string
		body string
	}{
		{name: "number value", body: `{"q5_budget":150000}`},
		{name: "array value", body: `{"q4_priority":["nature"]}`},
		{name: "null value", body: `{"q3_household":null}`},
		{name: "not an object", body: `["remote_majority"]`},
		{name: "malformed", body: `{"q1_work_mode":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/api/ai-match", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, false, resp["success"])
		})
	}
}

func TestAIMatch_CatalogFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.addProperty("Nagano", 140000)
	env.store.catalogErr = errors.New("connection reset")
	_, token := env.token(t, "aki@example.com")

	rec := env.do(http.MethodPost, "/api/ai-match", token, fullAnswers)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"matching failed"}`, rec.Body.String())
}

func TestAIMatch_PanicReportsMatchingFailed(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) { d.Matcher = panickingMatcher{} })
	_, token := env.token(t, "aki@example.com")

	for _, body := range []string{`{"q5_budget":"under_150k"}`, ""} {
		rec := env.do(http.MethodPost, "/api/ai-match", token, body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"matching failed"}`, rec.Body.String())
	}
}

func TestAIMatch_RequiresToken(t *testing.T) {
	env := newTestEnv(t)
	env.store.addProperty("Nagano", 140000)

	rec := env.do(http.MethodPost, "/api/ai-match", "", fullAnswers)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/ai-match", "forged.token.value", fullAnswers)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Zero(t, env.store.catalogHits)
}

func TestAIMatch_EmptyCatalog(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.token(t, "aki@example.com")

	rec := env.do(http.MethodPost, "/api/ai-match", token, fullAnswers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"properties":[]}`, rec.Body.String())
}

func TestListMatches(t *testing.T) {
	env := newTestEnv(t)
	env.store.addProperty("Tokyo", 320000)
	nagano := env.store.addProperty("Nagano", 140000)
	_, token := env.token(t, "aki@example.com")

	rec := env.do(http.MethodGet, "/api/matches", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"results":[]}`, rec.Body.String())

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/ai-match", token, fullAnswers).Code)

	rec = env.do(http.MethodGet, "/api/matches", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                `json:"success"`
		Results []types.MatchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, nagano.ID, resp.Results[0].PropertyID)
	assert.Equal(t, 84, resp.Results[0].Overall)
}

func TestListMatches_StoreError(t *testing.T) {
	env := newTestEnv(t)
	env.store.resultsErr = errors.New("db down")
	_, token := env.token(t, "aki@example.com")

	rec := env.do(http.MethodGet, "/api/matches", token, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
