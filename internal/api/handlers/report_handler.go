// internal/api/handlers/report_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/api/responses"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/core/report"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/domain"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/storage"
)

// Banner é a mensagem devolvida na raiz da API.
const Banner = "Dashboard de Relatórios Helibombas - API"

type ReportHandler struct {
	service report.Service
}

func NewReportHandler(service report.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": Banner})
}

// UploadReports recebe month_year, report_530 (vendas) e report_549 (pedidos).
func (h *ReportHandler) UploadReports(c *gin.Context) {
	monthYear := strings.TrimSpace(c.PostForm("month_year"))
	if monthYear == "" {
		responses.Error(c, http.StatusBadRequest, "Campo month_year é obrigatório")
		return
	}

	salesHeader, err := c.FormFile("report_530")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Relatório 530 não encontrado ou inválido")
		return
	}
	ordersHeader, err := c.FormFile("report_549")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Relatório 549 não encontrado ou inválido")
		return
	}

	salesFile, err := salesHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o relatório 530", err.Error())
		return
	}
	defer salesFile.Close()

	ordersFile, err := ordersHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o relatório 549", err.Error())
		return
	}
	defer ordersFile.Close()

	result, err := h.service.IngestReports(c.Request.Context(), monthYear,
		domain.UploadedFile{Filename: salesHeader.Filename, Content: salesFile},
		domain.UploadedFile{Filename: ordersHeader.Filename, Content: ordersFile},
	)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao processar relatórios", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Relatórios processados com sucesso",
		"analysis_id": result.AnalysisID,
		"charts_data": result.ChartsData,
		"ai_analysis": result.AIAnalysis,
	})
}

func (h *ReportHandler) ListAnalyses(c *gin.Context) {
	list, err := h.service.ListAnalyses(c.Request.Context())
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao listar análises", err.Error())
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ReportHandler) GetAnalysis(c *gin.Context) {
	rec, err := h.service.GetAnalysis(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		responses.Error(c, http.StatusNotFound, "Análise não encontrada")
		return
	}
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao consultar análise", err.Error())
		return
	}
	c.JSON(http.StatusOK, rec)
}
