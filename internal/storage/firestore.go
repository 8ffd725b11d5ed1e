package storage

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/domain"
)

// FirestoreStore guarda os dados no Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

type firestoreAnalysis struct {
	ID          string                 `firestore:"id"`
	MonthYear   string                 `firestore:"month_year"`
	SalesReport map[string]interface{} `firestore:"report_530_data"`
	OrderReport map[string]interface{} `firestore:"report_549_data"`
	AIAnalysis  domain.NarrativeResult `firestore:"ai_analysis"`
	ChartsData  domain.MetricsDocument `firestore:"charts_data"`
	CreatedAt   time.Time              `firestore:"created_at"`
}

// NewFirestoreStore abre o cliente do Firestore para o projeto e banco informados.
func NewFirestoreStore(ctx context.Context, projectID, databaseID string) (*FirestoreStore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, fmt.Errorf("falha ao criar cliente do Firestore: %w", err)
	}
	log.WithFields(log.Fields{"project": projectID, "database": databaseID}).Info("Conectado ao Firestore")
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) SaveAnalysis(ctx context.Context, rec domain.AnalysisRecord) error {
	doc := firestoreAnalysis{
		ID:          rec.ID,
		MonthYear:   rec.MonthYear,
		SalesReport: domain.NativeReport(rec.SalesReport),
		OrderReport: domain.NativeReport(rec.OrderReport),
		AIAnalysis:  rec.AIAnalysis,
		ChartsData:  rec.ChartsData,
		CreatedAt:   rec.CreatedAt,
	}
	if _, err := s.client.Collection(collAnalyses).Doc(rec.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("erro ao salvar análise: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetAnalysis(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	snap, err := s.client.Collection(collAnalyses).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar análise: %w", err)
	}
	return analysisFromSnapshot(snap)
}

func analysisFromSnapshot(snap *firestore.DocumentSnapshot) (*domain.AnalysisRecord, error) {
	var doc firestoreAnalysis
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("erro ao ler análise %s: %w", snap.Ref.ID, err)
	}
	return &domain.AnalysisRecord{
		ID:          doc.ID,
		MonthYear:   doc.MonthYear,
		SalesReport: domain.ReportFromNative(doc.SalesReport),
		OrderReport: domain.ReportFromNative(doc.OrderReport),
		AIAnalysis:  doc.AIAnalysis,
		ChartsData:  doc.ChartsData,
		CreatedAt:   doc.CreatedAt.UTC(),
	}, nil
}

func (s *FirestoreStore) ListAnalyses(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	iter := s.client.Collection(collAnalyses).
		OrderBy("created_at", firestore.Desc).
		Limit(normalizeLimit(limit)).
		Documents(ctx)
	defer iter.Stop()

	out := []domain.AnalysisRecord{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao listar análises: %w", err)
		}
		rec, err := analysisFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (s *FirestoreStore) SaveTarget(ctx context.Context, cfg domain.TargetConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if _, err := s.client.Collection(collTargets).Doc(cfg.ID).Set(ctx, cfg); err != nil {
		return fmt.Errorf("erro ao salvar meta: %w", err)
	}
	return nil
}

func (s *FirestoreStore) LatestTarget(ctx context.Context) (*domain.TargetConfig, error) {
	iter := s.client.Collection(collTargets).OrderBy("created_at", firestore.Desc).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar meta: %w", err)
	}
	var cfg domain.TargetConfig
	if err := snap.DataTo(&cfg); err != nil {
		return nil, fmt.Errorf("erro ao ler meta: %w", err)
	}
	cfg.CreatedAt = cfg.CreatedAt.UTC()
	return &cfg, nil
}

func (s *FirestoreStore) FindUser(ctx context.Context, username string) (*domain.User, error) {
	iter := s.client.Collection(collUsers).Where("username", "==", username).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar usuário: %w", err)
	}
	var user domain.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("erro ao ler dados do usuário: %w", err)
	}
	return &user, nil
}

func (s *FirestoreStore) SaveUser(ctx context.Context, user domain.User) error {
	if _, err := s.client.Collection(collUsers).Doc(user.Username).Set(ctx, user); err != nil {
		return fmt.Errorf("erro ao salvar usuário: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
