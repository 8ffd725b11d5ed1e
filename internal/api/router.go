// internal/api/router.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/api/handlers"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/api/middleware"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/core/auth"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/core/report"
)

// Options reúne as dependências do roteador.
type Options struct {
	Reports   report.Service
	Auth      auth.Service // opcional; só usado com JWTSecret
	JWTSecret []byte       // vazio deixa as rotas de escrita abertas
	Origins   []string
}

// NewRouter monta as rotas da API.
func NewRouter(opts Options) *gin.Engine {
	reportHandler := handlers.NewReportHandler(opts.Reports)
	metaHandler := handlers.NewMetaHandler(opts.Reports)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS(opts.Origins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	api := router.Group("/api")
	{
		api.GET("/", reportHandler.Root)
		api.GET("/meta-config", metaHandler.Current)
		api.GET("/analyses", reportHandler.ListAnalyses)
		api.GET("/analyses/:id", reportHandler.GetAnalysis)

		metaRoute := []gin.HandlerFunc{metaHandler.Create}
		uploadRoute := []gin.HandlerFunc{reportHandler.UploadReports}
		if len(opts.JWTSecret) > 0 && opts.Auth != nil {
			authHandler := handlers.NewAuthHandler(opts.Auth)
			api.POST("/login", authHandler.Login)

			authMW := middleware.AuthMiddleware(opts.JWTSecret)
			metaRoute = []gin.HandlerFunc{authMW, middleware.PermissionMiddleware(auth.RoleMeta), metaHandler.Create}
			uploadRoute = []gin.HandlerFunc{authMW, middleware.PermissionMiddleware(auth.RoleUpload), reportHandler.UploadReports}
		}
		api.POST("/meta-config", metaRoute...)
		api.POST("/upload-reports", uploadRoute...)
	}

	return router
}
