package export

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/eac"
)

// Handler handles HTTP requests for generic export operations
type Handler struct {
	service *Service
	repo    eac.Repository
	logger  *zap.Logger
}

// NewHandler creates a new export handler
func NewHandler(service *Service, repo eac.Repository, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
		logger:  logger,
	}
}

// RegisterRoutes registers export routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	exports := router.Group("/exports")
	{
		exports.GET("/related/zip", h.exportRelatedZip)
		exports.GET("/related/xlsx", h.exportRelatedWorkbook)
		exports.GET("/:entity/csv", h.exportEntityCSV)
	}
}

// exportEntityCSV handles GET /api/v1/exports/:entity/csv
func (h *Handler) exportEntityCSV(c *gin.Context) {
	entity := EntityType(c.Param("entity"))
	filters := certificateFilters(c)

	var (
		file *File
		err  error
	)
	switch entity {
	case EntityCertificates:
		var certs []eac.Certificate
		certs, err = h.repo.ListCertificates(c.Request.Context(), filters)
		if err == nil {
			file, err = h.service.ExportCSV(entity, certs, !filters.Empty())
		}
	case EntityEvents:
		var events []eac.Event
		events, err = h.repo.ListEvents(c.Request.Context())
		if err == nil {
			file, err = h.service.ExportCSV(entity, events, false)
		}
	case EntityOrganizations:
		var orgs []eac.Organization
		orgs, err = h.repo.ListOrganizations(c.Request.Context())
		if err == nil {
			file, err = h.service.ExportCSV(entity, orgs, false)
		}
	case EntityProductionSources:
		var sources []eac.ProductionSource
		sources, err = h.repo.ListProductionSources(c.Request.Context())
		if err == nil {
			file, err = h.service.ExportCSV(entity, sources, false)
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown entity type: " + string(entity)})
		return
	}

	if err != nil {
		h.respondError(c, err)
		return
	}
	sendAttachment(c, file, "text/csv")
}

// exportRelatedZip handles GET /api/v1/exports/related/zip
func (h *Handler) exportRelatedZip(c *gin.Context) {
	certs, ok := h.loadCertificates(c)
	if !ok {
		return
	}

	file, err := h.service.ExportRelatedZip(c.Request.Context(), certs, h.repo.FetchRelatedData, h.logProgress)
	if err != nil {
		h.respondError(c, err)
		return
	}
	sendAttachment(c, file, "application/zip")
}

// exportRelatedWorkbook handles GET /api/v1/exports/related/xlsx
func (h *Handler) exportRelatedWorkbook(c *gin.Context) {
	certs, ok := h.loadCertificates(c)
	if !ok {
		return
	}

	file, err := h.service.ExportRelatedWorkbook(c.Request.Context(), certs, h.repo.FetchRelatedData, h.logProgress)
	if err != nil {
		h.respondError(c, err)
		return
	}
	sendAttachment(c, file, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

func (h *Handler) loadCertificates(c *gin.Context) ([]eac.Certificate, bool) {
	certs, err := h.repo.ListCertificates(c.Request.Context(), certificateFilters(c))
	if err != nil {
		h.logger.Error("Failed to list certificates for export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return certs, true
}

func (h *Handler) respondError(c *gin.Context, err error) {
	if errors.Is(err, ErrNoData) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no data to export"})
		return
	}
	h.logger.Error("Export failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (h *Handler) logProgress(p Progress) {
	h.logger.Debug("Export progress",
		zap.String("step", p.Step),
		zap.String("message", p.Message))
}

func certificateFilters(c *gin.Context) *eac.CertificateFilters {
	filters := &eac.CertificateFilters{
		ProductionSourceID: c.Query("production_source_id"),
	}
	if types := c.Query("types"); types != "" {
		filters.Types = strings.Split(types, ",")
	}
	return filters
}

func sendAttachment(c *gin.Context, file *File, contentType string) {
	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.Data(http.StatusOK, contentType, file.Content)
}
