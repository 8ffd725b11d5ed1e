// internal/core/report/service.go
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/core/analysis"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/core/decoder"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/core/narrative"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/domain"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/storage"
)

var (
	// ErrProcessing indica falha grave no processamento (leitura do envio ou armazenamento).
	ErrProcessing = errors.New("erro ao processar relatórios")
	// ErrInvalidTarget indica meta não positiva.
	ErrInvalidTarget = errors.New("valor da meta deve ser maior que zero")
)

type Service interface {
	ConfigureTarget(ctx context.Context, value float64) (domain.TargetConfig, error)
	CurrentTarget(ctx context.Context) (domain.TargetConfig, error)
	IngestReports(ctx context.Context, period string, sales, orders domain.UploadedFile) (*domain.IngestResult, error)
	ListAnalyses(ctx context.Context) ([]domain.AnalysisRecord, error)
	GetAnalysis(ctx context.Context, id string) (*domain.AnalysisRecord, error)
}

type service struct {
	store      storage.Store
	decoder    decoder.Service
	aggregator analysis.Service
	narrator   narrative.Service
	now        func() time.Time
	newID      func() string
}

func NewService(store storage.Store, dec decoder.Service, agg analysis.Service, narr narrative.Service) Service {
	return &service{
		store:      store,
		decoder:    dec,
		aggregator: agg,
		narrator:   narr,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

func (s *service) ConfigureTarget(ctx context.Context, value float64) (domain.TargetConfig, error) {
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return domain.TargetConfig{}, ErrInvalidTarget
	}
	cfg := domain.TargetConfig{ID: s.newID(), MetaValue: value, CreatedAt: s.now()}
	if err := s.store.SaveTarget(ctx, cfg); err != nil {
		return domain.TargetConfig{}, fmt.Errorf("%w: %v", ErrProcessing, err)
	}
	log.WithField("meta_value", value).Info("Meta atualizada")
	return cfg, nil
}

func (s *service) CurrentTarget(ctx context.Context) (domain.TargetConfig, error) {
	cfg, err := s.store.LatestTarget(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.TargetConfig{MetaValue: domain.DefaultMetaValue}, nil
	}
	if err != nil {
		return domain.TargetConfig{}, fmt.Errorf("%w: %v", ErrProcessing, err)
	}
	return *cfg, nil
}

func (s *service) IngestReports(ctx context.Context, period string, sales, orders domain.UploadedFile) (*domain.IngestResult, error) {
	// 1. Decodificar os dois arquivos.
	salesReport, err := s.decode(sales)
	if err != nil {
		return nil, err
	}
	ordersReport, err := s.decode(orders)
	if err != nil {
		return nil, err
	}

	// 2. Calcular as métricas com a meta vigente.
	target, err := s.CurrentTarget(ctx)
	if err != nil {
		return nil, err
	}
	metrics := s.aggregator.Aggregate(
		salesReport.Sheet(domain.SheetVendas),
		ordersReport.Sheet(domain.SheetPedidos),
		target.MetaValue,
	)

	// 3. Pedir a análise textual. Falhas aqui não interrompem o processamento.
	narr := s.narrator.Request(ctx, salesReport, ordersReport, metrics)

	// 4. Persistir.
	rec := domain.AnalysisRecord{
		ID:          s.newID(),
		MonthYear:   period,
		SalesReport: salesReport,
		OrderReport: ordersReport,
		AIAnalysis:  narr,
		ChartsData:  metrics,
		CreatedAt:   s.now(),
	}
	if err := s.store.SaveAnalysis(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessing, err)
	}

	log.WithFields(log.Fields{
		"analysis_id": rec.ID,
		"month_year":  period,
		"ai_success":  narr.Success,
	}).Info("Relatórios processados")

	return &domain.IngestResult{AnalysisID: rec.ID, ChartsData: metrics, AIAnalysis: narr}, nil
}

// decode lê o arquivo enviado. Só a falha de leitura do envio é fatal;
// arquivos corrompidos viram um relatório com success=false.
func (s *service) decode(file domain.UploadedFile) (domain.DecodedReport, error) {
	if file.Content == nil {
		return domain.DecodedReport{}, fmt.Errorf("%w: arquivo %q sem conteúdo", ErrProcessing, file.Filename)
	}
	data, err := io.ReadAll(file.Content)
	if err != nil {
		return domain.DecodedReport{}, fmt.Errorf("%w: falha ao ler %q: %v", ErrProcessing, file.Filename, err)
	}
	report := s.decoder.Decode(data, decoder.KindFromFilename(file.Filename))
	if !report.Success {
		log.WithFields(log.Fields{"file": file.Filename, "error": report.Error}).Warn("Arquivo não pôde ser decodificado")
	}
	return report, nil
}

func (s *service) ListAnalyses(ctx context.Context) ([]domain.AnalysisRecord, error) {
	list, err := s.store.ListAnalyses(ctx, storage.MaxListedAnalyses)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessing, err)
	}
	return list, nil
}

func (s *service) GetAnalysis(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	rec, err := s.store.GetAnalysis(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessing, err)
	}
	return rec, nil
}
