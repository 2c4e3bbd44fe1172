package github

import (
	"context"
	"sync"
)

// MockService serves canned repositories per username.
type MockService struct {
	mu    sync.Mutex
	Repos map[string][]Repo
	Err   error
	Calls []string
}

func (m *MockService) ListRecentRepos(_ context.Context, username string, limit int) ([]Repo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, username)
	if m.Err != nil {
		return nil, m.Err
	}
	repos, ok := m.Repos[username]
	if !ok {
		return nil, ErrNotFound
	}
	if limit > 0 && len(repos) > limit {
		repos = repos[:limit]
	}
	return repos, nil
}

var _ Service = (*MockService)(nil)
