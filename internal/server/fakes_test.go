package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/relocation-matcher/internal/authz"
	"github.com/jonathan/relocation-matcher/internal/config"
	"github.com/jonathan/relocation-matcher/internal/db"
	"github.com/jonathan/relocation-matcher/internal/matching"
	"github.com/jonathan/relocation-matcher/internal/types"
	"github.com/jonathan/relocation-matcher/internal/vibes"
)

// memStore is an in-memory stand-in for the PostgreSQL store.
type memStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*db.User
	properties  []types.Property
	answers     map[uuid.UUID][]db.StoredAnswers
	results     map[uuid.UUID]map[uuid.UUID]types.MatchResult
	catalogErr  error
	answersErr  error
	resultsErr  error
	createErr   error
	catalogHits int
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[uuid.UUID]*db.User),
		answers: make(map[uuid.UUID][]db.StoredAnswers),
		results: make(map[uuid.UUID]map[uuid.UUID]types.MatchResult),
	}
}

func (m *memStore) CheckEmailExists(_ context.Context, email string) (bool, error) {
	u, _ := m.GetUserByEmail(context.Background(), email)
	return u != nil, nil
}

func (m *memStore) CreateUser(_ context.Context, displayName, email, passwordHash string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return uuid.Nil, m.createErr
	}
	now := time.Now()
	u := &db.User{
		ID:           uuid.New(),
		DisplayName:  displayName,
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *memStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListProperties(_ context.Context) ([]types.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogHits++
	if m.catalogErr != nil {
		return nil, m.catalogErr
	}
	return append([]types.Property(nil), m.properties...), nil
}

func (m *memStore) addProperty(region string, cost int) types.Property {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := types.Property{ID: uuid.New(), Title: "House in " + region, Region: region, MonthlyCost: cost}
	m.properties = append(m.properties, p)
	return p
}

func (m *memStore) GetProperty(_ context.Context, id uuid.UUID) (*types.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.properties {
		if m.properties[i].ID == id {
			p := m.properties[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateProperty(_ context.Context, in types.PropertyInput) (*types.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := types.Property{
		ID:          uuid.New(),
		Title:       in.Title,
		Region:      in.Region,
		City:        in.City,
		MonthlyCost: in.MonthlyCost,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}
	m.properties = append(m.properties, p)
	return &p, nil
}

func (m *memStore) UpdateProperty(_ context.Context, id uuid.UUID, in types.PropertyInput) (*types.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.properties {
		if m.properties[i].ID == id {
			p := &m.properties[i]
			p.Title, p.Region, p.City, p.MonthlyCost = in.Title, in.Region, in.City, in.MonthlyCost
			p.Description, p.ImageURL = in.Description, in.ImageURL
			out := *p
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memStore) DeleteProperty(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.properties {
		if m.properties[i].ID == id {
			m.properties = append(m.properties[:i], m.properties[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) SaveAnswers(_ context.Context, userID uuid.UUID, answers types.AnswerSet) (*db.StoredAnswers, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.answersErr != nil {
		return nil, m.answersErr
	}
	stored := db.StoredAnswers{ID: uuid.New(), UserID: userID, Answers: answers, CreatedAt: time.Now()}
	m.answers[userID] = append(m.answers[userID], stored)
	return &stored, nil
}

func (m *memStore) GetLatestAnswers(_ context.Context, userID uuid.UUID) (*db.StoredAnswers, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.answersErr != nil {
		return nil, m.answersErr
	}
	list := m.answers[userID]
	if len(list) == 0 {
		return nil, nil
	}
	latest := list[len(list)-1]
	return &latest, nil
}

func (m *memStore) UpsertMatchResult(_ context.Context, userID, propertyID uuid.UUID, score types.MatchScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.results[userID] == nil {
		m.results[userID] = make(map[uuid.UUID]types.MatchResult)
	}
	m.results[userID][propertyID] = types.MatchResult{
		UserID:     userID,
		PropertyID: propertyID,
		Overall:    score.Overall,
		Breakdown:  score.Breakdown,
		Reasons:    score.Reasons,
		UpdatedAt:  time.Now(),
	}
	return nil
}

func (m *memStore) ListMatchResults(_ context.Context, userID uuid.UUID) ([]types.MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resultsErr != nil {
		return nil, m.resultsErr
	}
	out := make([]types.MatchResult, 0, len(m.results[userID]))
	for _, r := range m.results[userID] {
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Overall > out[j].Overall })
	return out, nil
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

type fakeVibes struct {
	err   error
	areas []string
}

func (f *fakeVibes) Assess(_ context.Context, area string) (*vibes.Assessment, error) {
	f.areas = append(f.areas, area)
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(area) == "" {
		return nil, vibes.ErrEmptyArea
	}
	return vibes.NewAssessment(area, "quiet hills", map[string]float64{"nature": 80, "nightlife": 20}), nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

const adminEmail = "ops@example.com"

type testEnv struct {
	server      *Server
	store       *memStore
	invalidator *countingInvalidator
	vibes       *fakeVibes
	jwt         *JWTService
}

func newTestEnv(t *testing.T, opts ...func(*Deps)) *testEnv {
	t.Helper()
	store := newMemStore()
	policy := authz.NewEmailAllowlist([]string{adminEmail})
	jwtSvc := testJWTService()
	env := &testEnv{
		store:       store,
		invalidator: &countingInvalidator{},
		vibes:       &fakeVibes{},
		jwt:         jwtSvc,
	}

	deps := Deps{
		Matcher:     matching.NewEngine(store, store, nil, nil),
		Catalog:     store,
		Properties:  store,
		Invalidator: env.invalidator,
		Answers:     store,
		Results:     store,
		Vibes:       env.vibes,
		Users:       NewUserService(store, &config.PasswordConfig{BcryptCost: config.MinBcryptCost}, policy),
		JWT:         jwtSvc,
		Policy:      policy,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	srv, err := New(Config{Port: 0}, deps)
	require.NoError(t, err)
	env.server = srv
	return env
}

// token issues a bearer token for a fresh identity.
func (e *testEnv) token(t *testing.T, email string) (uuid.UUID, string) {
	t.Helper()
	userID := uuid.New()
	tok, err := e.jwt.GenerateToken(userID, email)
	require.NoError(t, err)
	return userID, tok
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}
