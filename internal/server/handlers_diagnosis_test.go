package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/relocation-matcher/internal/db"
	"github.com/jonathan/relocation-matcher/internal/types"
)

func TestDiagnosis_SaveAndLatest(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.token(t, "aki@example.com")

	rec := env.do(http.MethodGet, "/api/diagnosis/latest", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPost, "/api/diagnosis", token, `{"q3_household":"couple","q6_duration":"long_term"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/diagnosis/latest", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success   bool             `json:"success"`
		Diagnosis db.StoredAnswers `json:"diagnosis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, types.HouseholdCouple, resp.Diagnosis.Answers.Household)
	assert.Equal(t, "long_term", resp.Diagnosis.Answers.Duration)
}

func TestDiagnosis_Rejects(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.token(t, "aki@example.com")

	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: `{}`},
		{name: "unknown enum", body: `{"q5_budget":"whatever"}`},
		{name: "non-string", body: `{"q1_work_mode":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/api/diagnosis", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestDiagnosis_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/diagnosis", "", `{"q3_household":"single"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/diagnosis/latest", "", "").Code)
}
