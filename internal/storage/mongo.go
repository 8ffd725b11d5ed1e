package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/domain"
)

// MongoStore guarda análises, metas e usuários no MongoDB.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// analysisDoc é o formato gravado na coleção report_analyses.
type analysisDoc struct {
	ID          string                 `bson:"id"`
	MonthYear   string                 `bson:"month_year"`
	SalesReport map[string]interface{} `bson:"report_530_data"`
	OrderReport map[string]interface{} `bson:"report_549_data"`
	AIAnalysis  domain.NarrativeResult `bson:"ai_analysis"`
	ChartsData  domain.MetricsDocument `bson:"charts_data"`
	CreatedAt   time.Time              `bson:"created_at"`
}

func toAnalysisDoc(rec domain.AnalysisRecord) analysisDoc {
	return analysisDoc{
		ID:          rec.ID,
		MonthYear:   rec.MonthYear,
		SalesReport: domain.NativeReport(rec.SalesReport),
		OrderReport: domain.NativeReport(rec.OrderReport),
		AIAnalysis:  rec.AIAnalysis,
		ChartsData:  rec.ChartsData,
		CreatedAt:   rec.CreatedAt,
	}
}

func (d analysisDoc) record() domain.AnalysisRecord {
	return domain.AnalysisRecord{
		ID:          d.ID,
		MonthYear:   d.MonthYear,
		SalesReport: domain.ReportFromNative(d.SalesReport),
		OrderReport: domain.ReportFromNative(d.OrderReport),
		AIAnalysis:  d.AIAnalysis,
		ChartsData:  d.ChartsData,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

// NewMongoStore conecta ao MongoDB em uri e usa o banco dbName.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	if uri == "" {
		return nil, fmt.Errorf("URL de conexão do MongoDB vazia")
	}

	// Subdocumentos sem tipo são lidos como mapas, não como bson.D.
	clientOptions := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao MongoDB: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("falha no ping ao MongoDB: %w", err)
	}

	s := &MongoStore{client: client, db: client.Database(dbName)}
	if err := s.ensureIndexes(ctx); err != nil {
		log.WithError(err).Warn("Não foi possível criar os índices do MongoDB")
	}
	log.WithField("database", dbName).Info("Conectado ao MongoDB")
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(collAnalyses).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return err
	}
	_, err = s.db.Collection(collTargets).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return err
	}
	_, err = s.db.Collection(collUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MongoStore) SaveAnalysis(ctx context.Context, rec domain.AnalysisRecord) error {
	if _, err := s.db.Collection(collAnalyses).InsertOne(ctx, toAnalysisDoc(rec)); err != nil {
		return fmt.Errorf("erro ao salvar análise: %w", err)
	}
	return nil
}

func (s *MongoStore) GetAnalysis(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	var doc analysisDoc
	err := s.db.Collection(collAnalyses).FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar análise: %w", err)
	}
	rec := doc.record()
	return &rec, nil
}

func (s *MongoStore) ListAnalyses(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(normalizeLimit(limit)))

	cursor, err := s.db.Collection(collAnalyses).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar análises: %w", err)
	}
	defer cursor.Close(ctx)

	out := []domain.AnalysisRecord{}
	for cursor.Next(ctx) {
		var doc analysisDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("erro ao ler análise: %w", err)
		}
		out = append(out, doc.record())
	}
	return out, cursor.Err()
}

func (s *MongoStore) SaveTarget(ctx context.Context, cfg domain.TargetConfig) error {
	if _, err := s.db.Collection(collTargets).InsertOne(ctx, cfg); err != nil {
		return fmt.Errorf("erro ao salvar meta: %w", err)
	}
	return nil
}

func (s *MongoStore) LatestTarget(ctx context.Context) (*domain.TargetConfig, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	var cfg domain.TargetConfig
	err := s.db.Collection(collTargets).FindOne(ctx, bson.M{}, opts).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar meta: %w", err)
	}
	cfg.CreatedAt = cfg.CreatedAt.UTC()
	return &cfg, nil
}

func (s *MongoStore) FindUser(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.db.Collection(collUsers).FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar usuário: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) SaveUser(ctx context.Context, user domain.User) error {
	_, err := s.db.Collection(collUsers).ReplaceOne(ctx,
		bson.M{"username": user.Username}, user, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("erro ao salvar usuário: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		log.WithError(err).Error("Falha ao desconectar do MongoDB")
		return err
	}
	return nil
}
