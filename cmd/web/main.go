// cmd/web/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/api"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/api/responses"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/config"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/core/analysis"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/core/auth"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/core/decoder"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/core/narrative"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/core/report"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Erro ao carregar configuração: %v", err)
	}
	if err := responses.InitLogger(&cfg.Log); err != nil {
		log.Fatalf("Erro ao inicializar logger: %v", err)
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Erro ao inicializar armazenamento %q: %v", cfg.StorageDriver, err)
	}
	defer store.Close()
	log.WithField("driver", cfg.StorageDriver).Info("Armazenamento pronto")

	if cfg.LLMAPIKey == "" {
		log.Warn("LLM_API_KEY não definida: as análises textuais usarão o texto padrão")
	}
	narrativeService := narrative.NewService(narrative.NewGenerator(cfg.LLMAPIKey, cfg.LLMBaseURL), cfg.LLMModel)
	reportService := report.NewService(store, decoder.NewService(), analysis.NewService(), narrativeService)

	var authService auth.Service
	if cfg.JWTSecret != "" {
		authService = auth.NewService(store, []byte(cfg.JWTSecret))
	} else {
		log.Warn("JWT_SECRET não definida: rotas de escrita sem autenticação")
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Options{
		Reports:   reportService,
		Auth:      authService,
		JWTSecret: []byte(cfg.JWTSecret),
		Origins:   cfg.AllowedOrigins(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("🚀 Servidor iniciado e escutando na porta %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Falha ao iniciar o servidor: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Encerrando servidor...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Erro ao encerrar servidor")
	}
}
