package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/freeeve/gridwar/internal/auth"
	"github.com/freeeve/gridwar/internal/model"
	"github.com/freeeve/gridwar/internal/repository"
	"github.com/freeeve/gridwar/internal/service"
)

// --- Mock Repositories ---

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *mockUserRepo) FindByProviderID(_ context.Context, provider, providerID string) (*model.User, error) {
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderID == providerID {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Upsert(_ context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error) {
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderID == providerID {
			u.DisplayName = displayName
			return u, nil
		}
	}
	m.seq++
	u := &model.User{
		ID:          fmt.Sprintf("user-%d", m.seq),
		Provider:    provider,
		ProviderID:  providerID,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		CreatedAt:   time.Now(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) UpdateDisplayName(_ context.Context, id, displayName string) error {
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.DisplayName = displayName
	return nil
}

func (m *mockUserRepo) CreditBalance(_ context.Context, id string, amount int) error {
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.Balance += amount
	return nil
}

func (m *mockUserRepo) RecordResult(_ context.Context, winnerID, loserID string) error {
	if u, ok := m.users[winnerID]; ok {
		u.Wins++
	}
	if u, ok := m.users[loserID]; ok {
		u.Losses++
	}
	return nil
}

type mockTemplateRepo struct {
	templates map[string]*model.UnitTemplate
}

func newMockTemplateRepo() *mockTemplateRepo {
	return &mockTemplateRepo{templates: make(map[string]*model.UnitTemplate)}
}

func (m *mockTemplateRepo) FindByID(_ context.Context, id string) (*model.UnitTemplate, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, nil
	}
	return t, nil
}

func (m *mockTemplateRepo) List(_ context.Context) ([]model.UnitTemplate, error) {
	var result []model.UnitTemplate
	for _, t := range m.templates {
		result = append(result, *t)
	}
	return result, nil
}

type mockMatchRepo struct {
	matches   map[string]*model.Match
	obstacles map[string][]model.Obstacle
	seq       int
}

func newMockMatchRepo() *mockMatchRepo {
	return &mockMatchRepo{
		matches:   make(map[string]*model.Match),
		obstacles: make(map[string][]model.Obstacle),
	}
}

func (m *mockMatchRepo) Create(_ context.Context, creatorID, opponentID string, boardWidth, boardHeight int) (*model.Match, error) {
	m.seq++
	match := &model.Match{
		ID:          fmt.Sprintf("match-%d", m.seq),
		CreatorID:   creatorID,
		OpponentID:  opponentID,
		BoardWidth:  boardWidth,
		BoardHeight: boardHeight,
		Status:      "waiting",
		CreatedAt:   time.Now(),
	}
	m.matches[match.ID] = match
	return match, nil
}

func (m *mockMatchRepo) FindByID(_ context.Context, id string) (*model.Match, error) {
	match, ok := m.matches[id]
	if !ok {
		return nil, nil
	}
	cp := *match
	return &cp, nil
}

func (m *mockMatchRepo) ListWaiting(_ context.Context) ([]model.Match, error) {
	return m.listByStatus("waiting"), nil
}

func (m *mockMatchRepo) ListByUser(_ context.Context, userID string) ([]model.Match, error) {
	var result []model.Match
	for _, match := range m.matches {
		if match.CreatorID == userID || match.OpponentID == userID {
			result = append(result, *match)
		}
	}
	return result, nil
}

func (m *mockMatchRepo) ListCompleted(_ context.Context) ([]model.Match, error) {
	return m.listByStatus("completed"), nil
}

func (m *mockMatchRepo) ListInProgress(_ context.Context) ([]model.Match, error) {
	return m.listByStatus("in_progress"), nil
}

func (m *mockMatchRepo) listByStatus(status string) []model.Match {
	var result []model.Match
	for _, match := range m.matches {
		if match.Status == status {
			result = append(result, *match)
		}
	}
	return result
}

func (m *mockMatchRepo) SetInProgress(_ context.Context, matchID, currentTurn string) error {
	match, ok := m.matches[matchID]
	if !ok {
		return fmt.Errorf("match not found")
	}
	match.Status = "in_progress"
	match.CurrentTurn = currentTurn
	now := time.Now()
	match.StartedAt = &now
	return nil
}

func (m *mockMatchRepo) SetCurrentTurn(_ context.Context, matchID, currentTurn string) error {
	match, ok := m.matches[matchID]
	if !ok {
		return fmt.Errorf("match not found")
	}
	match.CurrentTurn = currentTurn
	return nil
}

func (m *mockMatchRepo) SetCompleted(_ context.Context, matchID, winner string) error {
	match, ok := m.matches[matchID]
	if !ok {
		return fmt.Errorf("match not found")
	}
	if match.Status == "completed" {
		return nil
	}
	match.Status = "completed"
	match.Winner = winner
	match.CurrentTurn = ""
	now := time.Now()
	match.FinishedAt = &now
	return nil
}

func (m *mockMatchRepo) Delete(_ context.Context, matchID string) error {
	delete(m.matches, matchID)
	delete(m.obstacles, matchID)
	return nil
}

func (m *mockMatchRepo) InsertObstacles(_ context.Context, matchID string, obstacles []model.Obstacle) error {
	m.obstacles[matchID] = append(m.obstacles[matchID], obstacles...)
	return nil
}

func (m *mockMatchRepo) ListObstacles(_ context.Context, matchID string) ([]model.Obstacle, error) {
	return m.obstacles[matchID], nil
}

type mockGroupRepo struct {
	groups     map[string]*model.UnitGroup
	casualties map[string]map[string]map[string]int
	seq        int
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{
		groups:     make(map[string]*model.UnitGroup),
		casualties: make(map[string]map[string]map[string]int),
	}
}

func (m *mockGroupRepo) Insert(_ context.Context, g *model.UnitGroup) (*model.UnitGroup, error) {
	m.seq++
	cp := *g
	cp.ID = fmt.Sprintf("group-%d", m.seq)
	m.groups[cp.ID] = &cp
	return &cp, nil
}

func (m *mockGroupRepo) ListByMatch(_ context.Context, matchID string) ([]model.UnitGroup, error) {
	var result []model.UnitGroup
	for i := 1; i <= m.seq; i++ {
		if g, ok := m.groups[fmt.Sprintf("group-%d", i)]; ok && g.MatchID == matchID {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGroupRepo) Update(_ context.Context, g *model.UnitGroup) error {
	if _, ok := m.groups[g.ID]; !ok {
		return fmt.Errorf("group not found")
	}
	cp := *g
	m.groups[g.ID] = &cp
	return nil
}

func (m *mockGroupRepo) Delete(_ context.Context, id string) error {
	delete(m.groups, id)
	return nil
}

func (m *mockGroupRepo) AddCasualties(_ context.Context, matchID, playerID, templateID string, count int) error {
	if m.casualties[matchID] == nil {
		m.casualties[matchID] = make(map[string]map[string]int)
	}
	if m.casualties[matchID][playerID] == nil {
		m.casualties[matchID][playerID] = make(map[string]int)
	}
	m.casualties[matchID][playerID][templateID] += count
	return nil
}

func (m *mockGroupRepo) ListCasualties(_ context.Context, matchID string) ([]model.Casualty, error) {
	var result []model.Casualty
	for player, byTmpl := range m.casualties[matchID] {
		for tmpl, n := range byTmpl {
			result = append(result, model.Casualty{MatchID: matchID, PlayerID: player, TemplateID: tmpl, Count: n})
		}
	}
	return result, nil
}

type mockLogRepo struct {
	entries map[string][]model.LogEntry
	seq     int
}

func newMockLogRepo() *mockLogRepo {
	return &mockLogRepo{entries: make(map[string][]model.LogEntry)}
}

func (m *mockLogRepo) Append(_ context.Context, matchID, kind, message string, data json.RawMessage) error {
	m.seq++
	m.entries[matchID] = append(m.entries[matchID], model.LogEntry{
		ID:        int64(m.seq),
		MatchID:   matchID,
		Kind:      kind,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now(),
	})
	return nil
}

func (m *mockLogRepo) ListByMatch(_ context.Context, matchID string) ([]model.LogEntry, error) {
	return m.entries[matchID], nil
}

// mockStore bundles the in-memory repos and implements UnitOfWork.
type mockStore struct {
	users     *mockUserRepo
	templates *mockTemplateRepo
	matches   *mockMatchRepo
	groups    *mockGroupRepo
	logs      *mockLogRepo
}

func newMockStore() *mockStore {
	return &mockStore{
		users:     newMockUserRepo(),
		templates: newMockTemplateRepo(),
		matches:   newMockMatchRepo(),
		groups:    newMockGroupRepo(),
		logs:      newMockLogRepo(),
	}
}

func (s *mockStore) Repos() repository.Repos {
	return repository.Repos{
		Users:     s.users,
		Templates: s.templates,
		Matches:   s.matches,
		Groups:    s.groups,
		Logs:      s.logs,
	}
}

func (s *mockStore) WithinTx(_ context.Context, fn func(r repository.Repos) error) error {
	return fn(s.Repos())
}

type mockCache struct {
	locks     map[string]bool
	snapshots map[string]json.RawMessage
}

func newMockCache() *mockCache {
	return &mockCache{
		locks:     make(map[string]bool),
		snapshots: make(map[string]json.RawMessage),
	}
}

func (c *mockCache) AcquireLock(_ context.Context, matchID string, _ time.Duration) (bool, error) {
	if c.locks[matchID] {
		return false, nil
	}
	c.locks[matchID] = true
	return true, nil
}

func (c *mockCache) ReleaseLock(_ context.Context, matchID string) error {
	delete(c.locks, matchID)
	return nil
}

func (c *mockCache) SetSnapshot(_ context.Context, matchID string, snapshot json.RawMessage) error {
	c.snapshots[matchID] = snapshot
	return nil
}

func (c *mockCache) GetSnapshot(_ context.Context, matchID string) (json.RawMessage, error) {
	return c.snapshots[matchID], nil
}

func (c *mockCache) DeleteSnapshot(_ context.Context, matchID string) error {
	delete(c.snapshots, matchID)
	return nil
}

// --- Helpers ---

func reqWithUserID(method, path string, body string, userID string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	ctx := auth.SetUserIDForTest(req.Context(), userID)
	return req.WithContext(ctx)
}

// newMatchHandler wires a MatchHandler over in-memory repos with two players
// and a basic unit template seeded.
func newMatchHandler() (*MatchHandler, *mockStore) {
	store := newMockStore()
	store.users.users["alice"] = &model.User{ID: "alice", DisplayName: "Alice"}
	store.users.users["bob"] = &model.User{ID: "bob", DisplayName: "Bob"}
	store.templates.templates["swordsman"] = &model.UnitTemplate{
		ID: "swordsman", Name: "Swordsman",
		Damage: 10, Defense: 3, Health: 100, Range: 1, Speed: 2, Price: 50,
	}
	cache := newMockCache()
	matchSvc := service.NewMatchService(store, store.Repos(), cache, NewHub())
	actionSvc := service.NewActionService(store, cache, NewHub())
	return NewMatchHandler(matchSvc, actionSvc), store
}

const createMatchBody = `{
	"opponent_id": "bob",
	"board": {"width": 8, "height": 8},
	"placements": [
		{"player_id": "alice", "template_id": "swordsman", "x": 0, "y": 0, "count": 2},
		{"player_id": "bob", "template_id": "swordsman", "x": 7, "y": 7, "count": 2}
	]
}`

// --- User Handler Tests ---

func TestGetMe(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["user-1"] = &model.User{
		ID:          "user-1",
		DisplayName: "Alice",
		Provider:    "google",
	}
	h := NewUserHandler(repo)

	req := reqWithUserID(http.MethodGet, "/users/me", "", "user-1")
	rec := httptest.NewRecorder()
	h.GetMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var user model.User
	json.Unmarshal(rec.Body.Bytes(), &user)
	if user.DisplayName != "Alice" {
		t.Errorf("expected Alice, got %s", user.DisplayName)
	}
}

func TestGetMeNotFound(t *testing.T) {
	repo := newMockUserRepo()
	h := NewUserHandler(repo)

	req := reqWithUserID(http.MethodGet, "/users/me", "", "nonexistent")
	rec := httptest.NewRecorder()
	h.GetMe(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateMe(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["user-1"] = &model.User{
		ID:          "user-1",
		DisplayName: "Alice",
	}
	h := NewUserHandler(repo)

	req := reqWithUserID(http.MethodPatch, "/users/me", `{"display_name":"Bob"}`, "user-1")
	rec := httptest.NewRecorder()
	h.UpdateMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var user model.User
	json.Unmarshal(rec.Body.Bytes(), &user)
	if user.DisplayName != "Bob" {
		t.Errorf("expected Bob, got %s", user.DisplayName)
	}
}

func TestUpdateMeEmptyName(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["user-1"] = &model.User{ID: "user-1"}
	h := NewUserHandler(repo)

	req := reqWithUserID(http.MethodPatch, "/users/me", `{"display_name":""}`, "user-1")
	rec := httptest.NewRecorder()
	h.UpdateMe(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateMeInvalidJSON(t *testing.T) {
	repo := newMockUserRepo()
	h := NewUserHandler(repo)

	req := reqWithUserID(http.MethodPatch, "/users/me", "not json", "user-1")
	rec := httptest.NewRecorder()
	h.UpdateMe(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// --- Template Handler Tests ---

func TestListTemplatesEmpty(t *testing.T) {
	h := NewTemplateHandler(newMockTemplateRepo())

	req := reqWithUserID(http.MethodGet, "/templates", "", "user-1")
	rec := httptest.NewRecorder()
	h.ListTemplates(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := strings.TrimSpace(rec.Body.String())
	if body != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

func TestGetTemplate(t *testing.T) {
	repo := newMockTemplateRepo()
	repo.templates["archer"] = &model.UnitTemplate{ID: "archer", Name: "Archer", Health: 60}
	h := NewTemplateHandler(repo)

	req := reqWithUserID(http.MethodGet, "/templates/archer", "", "user-1")
	req.SetPathValue("id", "archer")
	rec := httptest.NewRecorder()
	h.GetTemplate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var tmpl model.UnitTemplate
	json.Unmarshal(rec.Body.Bytes(), &tmpl)
	if tmpl.Name != "Archer" {
		t.Errorf("expected Archer, got %s", tmpl.Name)
	}
}

func TestGetTemplateNotFound(t *testing.T) {
	h := NewTemplateHandler(newMockTemplateRepo())

	req := reqWithUserID(http.MethodGet, "/templates/griffin", "", "user-1")
	req.SetPathValue("id", "griffin")
	rec := httptest.NewRecorder()
	h.GetTemplate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

// --- Match Handler Tests ---

func TestCreateMatch(t *testing.T) {
	h, _ := newMatchHandler()

	req := reqWithUserID(http.MethodPost, "/matches", createMatchBody, "alice")
	rec := httptest.NewRecorder()
	h.CreateMatch(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var match model.Match
	json.Unmarshal(rec.Body.Bytes(), &match)
	if match.CreatorID != "alice" || match.OpponentID != "bob" {
		t.Errorf("unexpected participants: %s vs %s", match.CreatorID, match.OpponentID)
	}
	if match.Status != "waiting" {
		t.Errorf("expected waiting, got %s", match.Status)
	}
}

func TestCreateMatchMissingOpponent(t *testing.T) {
	h, _ := newMatchHandler()

	req := reqWithUserID(http.MethodPost, "/matches", `{"opponent_id":""}`, "alice")
	rec := httptest.NewRecorder()
	h.CreateMatch(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateMatchUnknownOpponent(t *testing.T) {
	h, _ := newMatchHandler()

	body := strings.Replace(createMatchBody, `"bob"`, `"nobody"`, 2)
	req := reqWithUserID(http.MethodPost, "/matches", body, "alice")
	rec := httptest.NewRecorder()
	h.CreateMatch(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateMatchOffBoardPlacement(t *testing.T) {
	h, _ := newMatchHandler()

	// Rule violations on well-formed requests map to 422.
	body := strings.Replace(createMatchBody, `"x": 7, "y": 7`, `"x": 9, "y": 9`, 1)
	req := reqWithUserID(http.MethodPost, "/matches", body, "alice")
	rec := httptest.NewRecorder()
	h.CreateMatch(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListMatchesEmpty(t *testing.T) {
	h, _ := newMatchHandler()

	req := reqWithUserID(http.MethodGet, "/matches", "", "alice")
	rec := httptest.NewRecorder()
	h.ListMatches(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := strings.TrimSpace(rec.Body.String())
	if body != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

func TestGetMatchNotFound(t *testing.T) {
	h, _ := newMatchHandler()

	req := reqWithUserID(http.MethodGet, "/matches/nonexistent", "", "alice")
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()
	h.GetMatch(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestAcceptMatch(t *testing.T) {
	h, _ := newMatchHandler()

	req := reqWithUserID(http.MethodPost, "/matches", createMatchBody, "alice")
	rec := httptest.NewRecorder()
	h.CreateMatch(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created model.Match
	json.Unmarshal(rec.Body.Bytes(), &created)

	req = reqWithUserID(http.MethodPost, "/matches/"+created.ID+"/accept", "", "bob")
	req.SetPathValue("id", created.ID)
	rec = httptest.NewRecorder()
	h.AcceptMatch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var match model.Match
	json.Unmarshal(rec.Body.Bytes(), &match)
	if match.Status != "in_progress" {
		t.Errorf("expected in_progress, got %s", match.Status)
	}
	if match.CurrentTurn != "alice" {
		t.Errorf("expected alice to open, got %s", match.CurrentTurn)
	}
}

func TestAcceptMatchNotFound(t *testing.T) {
	h, _ := newMatchHandler()

	req := reqWithUserID(http.MethodPost, "/matches/nonexistent/accept", "", "bob")
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()
	h.AcceptMatch(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestDeclineMatchByOutsider(t *testing.T) {
	h, store := newMatchHandler()
	store.users.users["carol"] = &model.User{ID: "carol", DisplayName: "Carol"}

	req := reqWithUserID(http.MethodPost, "/matches", createMatchBody, "alice")
	rec := httptest.NewRecorder()
	h.CreateMatch(rec, req)
	var created model.Match
	json.Unmarshal(rec.Body.Bytes(), &created)

	req = reqWithUserID(http.MethodDelete, "/matches/"+created.ID, "", "carol")
	req.SetPathValue("id", created.ID)
	rec = httptest.NewRecorder()
	h.DeclineMatch(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMoveInvalidJSON(t *testing.T) {
	h, _ := newMatchHandler()

	req := reqWithUserID(http.MethodPost, "/matches/match-1/move", "not json", "alice")
	req.SetPathValue("id", "match-1")
	rec := httptest.NewRecorder()
	h.Move(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSurrenderNotFound(t *testing.T) {
	h, _ := newMatchHandler()

	req := reqWithUserID(http.MethodPost, "/matches/nonexistent/surrender", "", "alice")
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()
	h.Surrender(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestMatchLogEmpty(t *testing.T) {
	h, store := newMatchHandler()
	store.matches.Create(context.Background(), "alice", "bob", 8, 8)

	req := reqWithUserID(http.MethodGet, "/matches/match-1/log", "", "alice")
	req.SetPathValue("id", "match-1")
	rec := httptest.NewRecorder()
	h.Log(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := strings.TrimSpace(rec.Body.String())
	if body != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

// --- Auth Handler Tests ---

func TestRefreshTokenValid(t *testing.T) {
	jwtMgr := auth.NewJWTManager("test-secret")
	repo := newMockUserRepo()
	h := NewAuthHandler(nil, jwtMgr, repo)

	refresh, _ := jwtMgr.GenerateRefreshToken("user-1")
	body := fmt.Sprintf(`{"refresh_token":"%s"}`, refresh)
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.RefreshToken(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var tokens auth.TokenPair
	json.Unmarshal(rec.Body.Bytes(), &tokens)
	if tokens.AccessToken == "" {
		t.Error("expected non-empty access token")
	}
}

func TestRefreshTokenInvalid(t *testing.T) {
	jwtMgr := auth.NewJWTManager("test-secret")
	repo := newMockUserRepo()
	h := NewAuthHandler(nil, jwtMgr, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{"refresh_token":"invalid"}`))
	rec := httptest.NewRecorder()
	h.RefreshToken(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRefreshTokenBadBody(t *testing.T) {
	jwtMgr := auth.NewJWTManager("test-secret")
	repo := newMockUserRepo()
	h := NewAuthHandler(nil, jwtMgr, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.RefreshToken(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
