package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/api/responses"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/config"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/core/analysis"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/core/decoder"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/core/narrative"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/domain"
)

type analyzeOptions struct {
	salesPath  string
	ordersPath string
	meta       float64
	narrative  bool
	outputPath string
}

// analysisOutput é o JSON impresso pelo comando analyze.
type analysisOutput struct {
	ChartsData domain.MetricsDocument  `json:"charts_data"`
	AIAnalysis *domain.NarrativeResult `json:"ai_analysis,omitempty"`
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "relatorios",
		Short:         "Ferramentas de linha de comando dos relatórios Helibombas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return responses.InitLogger(&config.LogConfig{Level: "warn", Format: "text", Output: "stdout"})
		},
	}
	root.AddCommand(newAnalyzeCmd(os.Stdout))
	return root
}

func newAnalyzeCmd(out io.Writer) *cobra.Command {
	opts := analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Calcula as métricas dos relatórios 530 (vendas) e 549 (pedidos)",
		Long: `Lê os dois relatórios (xlsx, xls ou pdf), calcula o documento de métricas
e imprime o JSON. Nada é gravado em banco.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd.Context(), opts, out)
		},
	}

	cmd.Flags().StringVar(&opts.salesPath, "vendas", "", "Relatório 530 (detalhe de vendas)")
	cmd.Flags().StringVar(&opts.ordersPath, "pedidos", "", "Relatório 549 (pedidos/vendedores)")
	cmd.Flags().Float64Var(&opts.meta, "meta", domain.DefaultMetaValue, "Meta de vendas do período")
	cmd.Flags().BoolVar(&opts.narrative, "narrativa", false, "Pede a análise textual ao modelo (usa LLM_API_KEY)")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Arquivo de saída (padrão: stdout)")
	_ = cmd.MarkFlagRequired("vendas")
	_ = cmd.MarkFlagRequired("pedidos")
	return cmd
}

func runAnalyze(ctx context.Context, opts analyzeOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	dec := decoder.NewService()

	sales, err := decodeFile(dec, opts.salesPath)
	if err != nil {
		return err
	}
	orders, err := decodeFile(dec, opts.ordersPath)
	if err != nil {
		return err
	}

	result := analysisOutput{
		ChartsData: analysis.NewService().Aggregate(
			sales.Sheet(domain.SheetVendas), orders.Sheet(domain.SheetPedidos), opts.meta),
	}

	if opts.narrative {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		svc := narrative.NewService(narrative.NewGenerator(cfg.LLMAPIKey, cfg.LLMBaseURL), cfg.LLMModel)
		narr := svc.Request(ctx, sales, orders, result.ChartsData)
		result.AIAnalysis = &narr
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("falha ao serializar resultado: %w", err)
	}
	if opts.outputPath != "" {
		return os.WriteFile(opts.outputPath, data, 0o644)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func decodeFile(dec decoder.Service, path string) (domain.DecodedReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.DecodedReport{}, fmt.Errorf("arquivo não encontrado: %w", err)
	}
	report := dec.Decode(data, decoder.KindFromFilename(path))
	if !report.Success {
		log.WithFields(log.Fields{"file": filepath.Base(path), "error": report.Error}).Warn("Arquivo não pôde ser decodificado")
	}
	return report, nil
}
