package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/config"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/domain"
)

// ErrNotFound indica que o registro pedido não existe.
var ErrNotFound = errors.New("registro não encontrado")

// MaxListedAnalyses é o máximo de análises devolvidas por ListAnalyses.
const MaxListedAnalyses = 100

// Nomes das coleções/tabelas.
const (
	collAnalyses = "report_analyses"
	collTargets  = "meta_configs"
	collUsers    = "users"
)

// Store é o armazenamento das análises, metas e usuários. Análises e metas
// são somente inserção: nunca são atualizadas.
type Store interface {
	SaveAnalysis(ctx context.Context, rec domain.AnalysisRecord) error
	// GetAnalysis devolve ErrNotFound quando o id não existe.
	GetAnalysis(ctx context.Context, id string) (*domain.AnalysisRecord, error)
	// ListAnalyses devolve as análises mais recentes primeiro.
	ListAnalyses(ctx context.Context, limit int) ([]domain.AnalysisRecord, error)

	SaveTarget(ctx context.Context, cfg domain.TargetConfig) error
	// LatestTarget devolve ErrNotFound quando nenhuma meta foi salva.
	LatestTarget(ctx context.Context) (*domain.TargetConfig, error)

	FindUser(ctx context.Context, username string) (*domain.User, error)
	SaveUser(ctx context.Context, user domain.User) error

	Close() error
}

// Open cria o armazenamento escolhido em STORAGE_DRIVER.
func Open(ctx context.Context, cfg *config.Configuration) (Store, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory, "":
		return NewMemoryStore(), nil
	case config.StorageSQLite:
		return NewSQLiteStore(cfg.SQLitePath)
	case config.StorageMongo:
		return NewMongoStore(ctx, cfg.MongoURL, cfg.DBName)
	case config.StorageFirestore:
		return NewFirestoreStore(ctx, cfg.FirestoreProjectID, cfg.FirestoreDatabaseID)
	}
	return nil, fmt.Errorf("driver de armazenamento não suportado: %s", cfg.StorageDriver)
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > MaxListedAnalyses {
		return MaxListedAnalyses
	}
	return limit
}
