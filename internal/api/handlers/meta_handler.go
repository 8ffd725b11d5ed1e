// internal/api/handlers/meta_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/api/responses"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/core/report"
)

type MetaHandler struct {
	service report.Service
}

func NewMetaHandler(service report.Service) *MetaHandler {
	return &MetaHandler{service: service}
}

type metaConfigRequest struct {
	MetaValue float64 `json:"meta_value" binding:"required,gt=0"`
}

func (h *MetaHandler) Create(c *gin.Context) {
	var req metaConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "meta_value inválido", err.Error())
		return
	}

	cfg, err := h.service.ConfigureTarget(c.Request.Context(), req.MetaValue)
	if errors.Is(err, report.ErrInvalidTarget) {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao salvar meta", err.Error())
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *MetaHandler) Current(c *gin.Context) {
	cfg, err := h.service.CurrentTarget(c.Request.Context())
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao consultar meta", err.Error())
		return
	}
	// Sem meta salva, devolve só o valor padrão.
	if cfg.ID == "" {
		c.JSON(http.StatusOK, gin.H{"meta_value": cfg.MetaValue})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
