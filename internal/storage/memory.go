package storage

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/domain"
)

// MemoryStore guarda tudo em memória. Usado em desenvolvimento e testes.
type MemoryStore struct {
	mu       sync.RWMutex
	analyses []domain.AnalysisRecord
	targets  []domain.TargetConfig
	users    map[string]domain.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]domain.User)}
}

func (s *MemoryStore) SaveAnalysis(_ context.Context, rec domain.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses = append(s.analyses, cloneAnalysis(rec))
	return nil
}

func (s *MemoryStore) GetAnalysis(_ context.Context, id string) (*domain.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.analyses {
		if s.analyses[i].ID == id {
			rec := cloneAnalysis(s.analyses[i])
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListAnalyses(_ context.Context, limit int) ([]domain.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Ordem inversa de inserção desempata registros com o mesmo horário.
	out := make([]domain.AnalysisRecord, 0, len(s.analyses))
	for i := len(s.analyses) - 1; i >= 0; i-- {
		out = append(out, cloneAnalysis(s.analyses[i]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if limit = normalizeLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) SaveTarget(_ context.Context, cfg domain.TargetConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets = append(s.targets, cfg)
	return nil
}

func (s *MemoryStore) LatestTarget(_ context.Context) (*domain.TargetConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.targets) == 0 {
		return nil, ErrNotFound
	}
	latest := s.targets[len(s.targets)-1]
	for _, t := range s.targets {
		if t.CreatedAt.After(latest.CreatedAt) {
			latest = t
		}
	}
	return &latest, nil
}

func (s *MemoryStore) FindUser(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	u.Roles = slices.Clone(u.Roles)
	return &u, nil
}

func (s *MemoryStore) SaveUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Roles = slices.Clone(user.Roles)
	s.users[user.Username] = user
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// cloneAnalysis copia mapas e listas do registro: análises salvas não podem
// ser alteradas por quem as leu.
func cloneAnalysis(rec domain.AnalysisRecord) domain.AnalysisRecord {
	rec.SalesReport = cloneReport(rec.SalesReport)
	rec.OrderReport = cloneReport(rec.OrderReport)
	rec.ChartsData.GeographicDistribution = slices.Clone(rec.ChartsData.GeographicDistribution)
	rec.ChartsData.ExternalSellers = slices.Clone(rec.ChartsData.ExternalSellers)
	rec.ChartsData.MainClients = slices.Clone(rec.ChartsData.MainClients)
	rec.ChartsData.ProductAnalysis = slices.Clone(rec.ChartsData.ProductAnalysis)
	return rec
}

func cloneReport(d domain.DecodedReport) domain.DecodedReport {
	d.ExtractedValues = maps.Clone(d.ExtractedValues)
	if d.Sheets == nil {
		return d
	}
	sheets := make(map[string]domain.RecordSet, len(d.Sheets))
	for name, rows := range d.Sheets {
		var set domain.RecordSet
		if rows != nil {
			set = make(domain.RecordSet, len(rows))
			for i, rec := range rows {
				set[i] = maps.Clone(rec)
			}
		}
		sheets[name] = set
	}
	d.Sheets = sheets
	return d
}
