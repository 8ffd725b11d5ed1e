package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/domain"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder é o texto devolvido quando a análise automática falha.
const Placeholder = "Análise automática não disponível no momento."

// DefaultModel é o modelo usado quando nenhum é configurado.
const DefaultModel = "gpt-4o"

const systemMessage = `Você é um coordenador comercial/vendas experiente da Helibombas.
Analise os dados de vendas fornecidos e gere insights estratégicos detalhados.

Sua análise deve incluir:
1. Performance geral vs meta
2. Pontos fortes e fracos
3. Oportunidades de crescimento
4. Recomendações estratégicas
5. Plano de ação para o próximo mês

Use formatação em português brasileiro e valores em R$.
Seja específico e prático nas recomendações.`

var ErrEmptyResponse = errors.New("o modelo não retornou texto")

// GenerationRequest é o pedido enviado ao serviço de geração de texto.
type GenerationRequest struct {
	System    string
	Prompt    string
	Model     string
	SessionID string
}

// TextGenerator é o serviço externo de geração de texto.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// Service define a interface do gerador de análise textual.
type Service interface {
	// Request nunca falha: erros viram NarrativeResult{Success:false}.
	Request(ctx context.Context, sales, orders domain.DecodedReport, metrics domain.MetricsDocument) domain.NarrativeResult
}

type service struct {
	generator TextGenerator
	model     string
	now       func() time.Time
}

// NewService cria o serviço de análise textual. Um model vazio usa DefaultModel.
func NewService(generator TextGenerator, model string) Service {
	if model == "" {
		model = DefaultModel
	}
	return &service{generator: generator, model: model, now: time.Now}
}

func (s *service) Request(ctx context.Context, _, _ domain.DecodedReport, metrics domain.MetricsDocument) (result domain.NarrativeResult) {
	defer func() {
		if r := recover(); r != nil {
			result = s.failure(fmt.Errorf("falha inesperada na geração da análise: %v", r))
		}
	}()

	prompt, err := BuildPrompt(metrics)
	if err != nil {
		return s.failure(err)
	}

	// Cada análise usa uma sessão nova.
	req := GenerationRequest{
		System:    systemMessage,
		Prompt:    prompt,
		Model:     s.model,
		SessionID: "analysis_" + uuid.NewString(),
	}
	text, err := s.generator.Generate(ctx, req)
	if err != nil {
		return s.failure(err)
	}
	if strings.TrimSpace(text) == "" {
		return s.failure(ErrEmptyResponse)
	}

	return domain.NarrativeResult{
		Insights:  text,
		Timestamp: s.now().UTC(),
		Success:   true,
	}
}

func (s *service) failure(err error) domain.NarrativeResult {
	log.WithError(err).Warn("Análise automática indisponível")
	return domain.NarrativeResult{
		Insights:  Placeholder,
		Timestamp: s.now().UTC(),
		Success:   false,
		Error:     err.Error(),
	}
}

// BuildPrompt monta o texto enviado ao modelo com os números do documento.
func BuildPrompt(metrics domain.MetricsDocument) (string, error) {
	p := message.NewPrinter(language.BrazilianPortuguese)
	perf := metrics.PerformanceVsMeta

	sections := []struct {
		title string
		data  interface{}
	}{
		{"Distribuição Geográfica", metrics.GeographicDistribution},
		{"Vendedores Externos", metrics.ExternalSellers},
		{"Principais Clientes", metrics.MainClients},
		{"Análise de Produtos", metrics.ProductAnalysis},
		{"KPIs", metrics.KPIs},
	}

	var b strings.Builder
	b.WriteString("DADOS DE VENDAS HELIBOMBAS:\n\n")
	b.WriteString(p.Sprintf("Performance vs Meta: R$ %.2f / R$ %.2f (%.1f%%)\n",
		perf.CurrentPerformance, perf.MetaTarget, perf.Percentage))
	for _, sec := range sections {
		body, err := indentJSON(sec.data)
		if err != nil {
			return "", fmt.Errorf("erro ao formatar %s: %w", sec.title, err)
		}
		fmt.Fprintf(&b, "\n%s:\n%s\n", sec.title, body)
	}
	b.WriteString("\nPor favor, analise estes dados e forneça insights estratégicos detalhados.\n")
	return b.String(), nil
}

func indentJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
