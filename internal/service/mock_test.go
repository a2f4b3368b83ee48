package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/freeeve/gridwar/internal/model"
	"github.com/freeeve/gridwar/internal/repository"
)

// mockUserRepo implements repository.UserRepository for testing.
type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) add(id string, balance int) *model.User {
	u := &model.User{ID: id, DisplayName: id, Balance: balance, CreatedAt: time.Now()}
	m.users[id] = u
	return u
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
	if u, ok := m.users[id]; ok {
		u.DisplayName = displayName
	}
	return nil
}

func (m *mockUserRepo) CreditBalance(_ context.Context, id string, amount int) error {
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
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

// mockTemplateRepo implements repository.TemplateRepository for testing.
type mockTemplateRepo struct {
	templates map[string]*model.UnitTemplate
}

func newMockTemplateRepo() *mockTemplateRepo {
	return &mockTemplateRepo{templates: make(map[string]*model.UnitTemplate)}
}

func (m *mockTemplateRepo) add(t model.UnitTemplate) {
	m.templates[t.ID] = &t
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

// mockMatchRepo implements repository.MatchRepository for testing.
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
		return fmt.Errorf("match %s not found", matchID)
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
		return fmt.Errorf("match %s not found", matchID)
	}
	match.CurrentTurn = currentTurn
	return nil
}

func (m *mockMatchRepo) SetCompleted(_ context.Context, matchID, winner string) error {
	match, ok := m.matches[matchID]
	if !ok {
		return fmt.Errorf("match %s not found", matchID)
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

// mockGroupRepo implements repository.GroupRepository for testing.
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
		return fmt.Errorf("group %s not found", g.ID)
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

// mockLogRepo implements repository.LogRepository for testing.
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

// mockStore bundles the in-memory repos and implements UnitOfWork. It does
// not simulate rollback; tests assert that failing operations return before
// any write happens.
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

// mockCache implements repository.MatchCache for testing.
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

// recordingBroadcaster captures broadcast events for assertions.
type recordingBroadcaster struct {
	events []string
}

func (b *recordingBroadcaster) BroadcastMatchEvent(matchID, eventType string, _ any) {
	b.events = append(b.events, matchID+":"+eventType)
}
