package tcat

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/eac"
	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/export"
)

// Handler handles HTTP requests for TCAT export operations
type Handler struct {
	service *Service
	repo    eac.Repository
	logger  *zap.Logger
}

// NewHandler creates a new TCAT export handler
func NewHandler(service *Service, repo eac.Repository, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
		logger:  logger,
	}
}

// RegisterRoutes registers TCAT export routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	tcat := router.Group("/exports/tcat")
	{
		tcat.GET("/zip", h.exportZip)
		tcat.GET("/pdf", h.exportPDF)
	}
}

// exportZip handles GET /api/v1/exports/tcat/zip
func (h *Handler) exportZip(c *gin.Context) {
	certs, ok := h.loadCertificates(c)
	if !ok {
		return
	}

	file, err := h.service.ExportZip(c.Request.Context(), certs, h.repo.FetchRelatedData, h.logProgress)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.Data(http.StatusOK, "application/zip", file.Content)
}

// exportPDF handles GET /api/v1/exports/tcat/pdf
func (h *Handler) exportPDF(c *gin.Context) {
	certs, ok := h.loadCertificates(c)
	if !ok {
		return
	}

	file, err := h.service.ExportPDF(c.Request.Context(), certs, h.repo.FetchRelatedData, h.logProgress)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.Data(http.StatusOK, "application/pdf", file.Content)
}

func (h *Handler) loadCertificates(c *gin.Context) ([]eac.Certificate, bool) {
	filters := &eac.CertificateFilters{
		ProductionSourceID: c.Query("production_source_id"),
	}
	if types := c.Query("types"); types != "" {
		filters.Types = strings.Split(types, ",")
	}

	certs, err := h.repo.ListCertificates(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("Failed to list certificates for TCAT export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return certs, true
}

// respondError keeps the two locally-handled conditions distinguishable:
// an empty selection and a selection with only unsupported types.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, export.ErrNoData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no certificates to export"})
	case errors.Is(err, ErrNoSupportedCertificates):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "selected certificates are all of types not supported by TCAT (RNG, CR)",
		})
	default:
		h.logger.Error("TCAT export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) logProgress(p export.Progress) {
	h.logger.Debug("TCAT export progress",
		zap.String("step", p.Step),
		zap.String("message", p.Message))
}
