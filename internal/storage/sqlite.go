package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/domain"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStore guarda os dados em um arquivo SQLite local.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (ou cria) o banco em dbPath e aplica o schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("falha ao criar diretório de dados: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir banco: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao conectar ao banco: %w", err)
	}
	// SQLite trabalha melhor com uma única conexão
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("falha ao ler schema.sql: %w", err)
	}
	if _, err := s.db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("falha ao aplicar schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, rec domain.AnalysisRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("erro ao serializar análise: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO report_analyses (id, month_year, created_at, payload) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.MonthYear, rec.CreatedAt.UnixNano(), string(payload))
	if err != nil {
		return fmt.Errorf("erro ao salvar análise: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM report_analyses WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar análise: %w", err)
	}
	var rec domain.AnalysisRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("erro ao ler análise %s: %w", id, err)
	}
	return &rec, nil
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM report_analyses ORDER BY created_at DESC, rowid DESC LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("erro ao listar análises: %w", err)
	}
	defer rows.Close()

	out := []domain.AnalysisRecord{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rec domain.AnalysisRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("erro ao ler análise: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveTarget(ctx context.Context, cfg domain.TargetConfig) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta_configs (id, meta_value, created_at) VALUES (?, ?, ?)`,
		cfg.ID, cfg.MetaValue, cfg.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("erro ao salvar meta: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LatestTarget(ctx context.Context) (*domain.TargetConfig, error) {
	var (
		cfg       domain.TargetConfig
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, meta_value, created_at FROM meta_configs ORDER BY created_at DESC, rowid DESC LIMIT 1`).
		Scan(&cfg.ID, &cfg.MetaValue, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar meta: %w", err)
	}
	cfg.CreatedAt = time.Unix(0, createdAt).UTC()
	return &cfg, nil
}

func (s *SQLiteStore) FindUser(ctx context.Context, username string) (*domain.User, error) {
	var (
		user  domain.User
		roles string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password_hash, roles FROM users WHERE username = ?`, username).
		Scan(&user.Username, &user.PasswordHash, &roles)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar usuário: %w", err)
	}
	if err := json.Unmarshal([]byte(roles), &user.Roles); err != nil {
		return nil, fmt.Errorf("permissões inválidas para %s: %w", username, err)
	}
	return &user, nil
}

func (s *SQLiteStore) SaveUser(ctx context.Context, user domain.User) error {
	roles, err := json.Marshal(user.Roles)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, roles) VALUES (?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash, roles = excluded.roles`,
		user.Username, user.PasswordHash, string(roles))
	if err != nil {
		return fmt.Errorf("erro ao salvar usuário: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
