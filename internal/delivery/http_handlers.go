package delivery

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/JosineyAlves/adcloner-sub000/internal/domain"
	"github.com/JosineyAlves/adcloner-sub000/internal/usecase"
	"github.com/JosineyAlves/adcloner-sub000/pkg/config"
	"github.com/JosineyAlves/adcloner-sub000/pkg/logger"
	"github.com/JosineyAlves/adcloner-sub000/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// handles HTTP requests
type HTTPHandlers struct {
	cloneService *usecase.CloneService
	importer     *usecase.Importer
	store        domain.TemplateStore
	defaults     config.CloneConfig
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

// creates new HTTP handlers
func NewHTTPHandlers(
	cloneService *usecase.CloneService,
	importer *usecase.Importer,
	store domain.TemplateStore,
	defaults config.CloneConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *HTTPHandlers {
	return &HTTPHandlers{
		cloneService: cloneService,
		importer:     importer,
		store:        store,
		defaults:     defaults,
		logger:       logger,
		metrics:      metrics,
	}
}

type cloneTargetRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	PageID    string `json:"page_id"`
	PixelID   string `json:"pixel_id"`
}

type cloneRunRequest struct {
	SourceCampaignID string               `json:"source_campaign_id" binding:"required"`
	Targets          []cloneTargetRequest `json:"targets" binding:"required,min=1"`
}

type templateCloneRequest struct {
	Targets []cloneTargetRequest `json:"targets" binding:"required,min=1"`
}

type importRequest struct {
	Name string              `json:"name"`
	Rows []map[string]string `json:"rows" binding:"required,min=1"`
}

// toTargets converts request targets, falling back to the service-wide
// default page and pixel when the request leaves them blank.
func (h *HTTPHandlers) toTargets(reqs []cloneTargetRequest) []domain.CloneTarget {
	targets := make([]domain.CloneTarget, len(reqs))
	for i, req := range reqs {
		cfg := domain.AccountConfig{
			PageID:  req.PageID,
			PixelID: req.PixelID,
		}
		if cfg.PageID == "" {
			cfg.PageID = h.defaults.DefaultPageID
		}
		if cfg.PixelID == "" {
			cfg.PixelID = h.defaults.DefaultPixelID
		}
		targets[i] = domain.CloneTarget{AccountID: req.AccountID, Config: cfg}
	}
	return targets
}

// CloneRun replicates a live source campaign into the requested destination
// accounts and reports one result per account.
func (h *HTTPHandlers) CloneRun(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := c.GetString("request_id")
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	var req cloneRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordHTTPRequest("POST", "/clone/run", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	log := h.logger.WithContext(ctx)
	log.WithFields(map[string]any{
		"source_campaign_id": req.SourceCampaignID,
		"targets":            len(req.Targets),
	}).Info("Starting campaign clone batch")

	results := h.cloneService.Clone(ctx, req.SourceCampaignID, h.toTargets(req.Targets))

	h.metrics.RecordHTTPRequest("POST", "/clone/run", "200", time.Since(start))

	// Per-account failures are payload, not an HTTP error: the batch itself
	// completed.
	c.JSON(http.StatusOK, gin.H{
		"source_campaign_id": req.SourceCampaignID,
		"results":            results,
		"request_id":         requestID,
	})
}

// ImportTemplate turns flattened spreadsheet rows into a stored sanitized
// template.
func (h *HTTPHandlers) ImportTemplate(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := c.GetString("request_id")
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordHTTPRequest("POST", "/templates/import", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	tpl, err := h.importer.Import(ctx, req.Name, req.Rows)
	if err != nil {
		h.metrics.RecordHTTPRequest("POST", "/templates/import", "500", time.Since(start))
		h.logger.WithContext(ctx).WithError(err).Error("Template import failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Template import failed",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("POST", "/templates/import", "201", time.Since(start))
	c.JSON(http.StatusCreated, gin.H{
		"template":   tpl,
		"request_id": requestID,
	})
}

// CloneTemplate replicates a stored template into the requested destination
// accounts.
func (h *HTTPHandlers) CloneTemplate(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := c.GetString("request_id")
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)
	templateID := c.Param("id")

	var req templateCloneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordHTTPRequest("POST", "/templates/:id/clone", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	results, err := h.cloneService.CloneFromTemplate(ctx, templateID, h.toTargets(req.Targets))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrTemplateNotFound) {
			status = http.StatusNotFound
		}
		h.metrics.RecordHTTPRequest("POST", "/templates/:id/clone", strconv.Itoa(status), time.Since(start))
		c.JSON(status, gin.H{
			"error":      "Template clone failed",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("POST", "/templates/:id/clone", "200", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"template_id": templateID,
		"results":     results,
		"request_id":  requestID,
	})
}

// ListTemplates returns every stored template, newest first.
func (h *HTTPHandlers) ListTemplates(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := c.GetString("request_id")
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	templates, err := h.store.List(ctx)
	if err != nil {
		h.metrics.RecordHTTPRequest("GET", "/templates", "500", time.Since(start))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to list templates",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("GET", "/templates", "200", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"templates":  templates,
		"total":      len(templates),
		"request_id": requestID,
	})
}

// GetTemplate returns one stored template by id.
func (h *HTTPHandlers) GetTemplate(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := c.GetString("request_id")
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	tpl, err := h.store.Get(ctx, c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrTemplateNotFound) {
			status = http.StatusNotFound
		}
		h.metrics.RecordHTTPRequest("GET", "/templates/:id", strconv.Itoa(status), time.Since(start))
		c.JSON(status, gin.H{
			"error":      "Failed to get template",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("GET", "/templates/:id", "200", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"template":   tpl,
		"request_id": requestID,
	})
}

// GetAPIInfo returns API v1 information and available endpoints
func (h *HTTPHandlers) GetAPIInfo(c *gin.Context) {
	requestID := c.GetString("request_id")

	c.JSON(http.StatusOK, gin.H{
		"api_version": "v1",
		"service":     "Campaign Cloner",
		"version":     "1.0.0",
		"description": "Replicates advertising campaign hierarchies across ad accounts",
		"endpoints": gin.H{
			"clone": gin.H{
				"run": gin.H{
					"path":        "/api/v1/clone/run",
					"method":      "POST",
					"description": "Clone a live source campaign into one or more destination accounts",
				},
			},
			"templates": gin.H{
				"import": gin.H{
					"path":        "/api/v1/templates/import",
					"method":      "POST",
					"description": "Import a flattened spreadsheet export as a sanitized template",
				},
				"clone": gin.H{
					"path":        "/api/v1/templates/:id/clone",
					"method":      "POST",
					"description": "Clone a stored template into one or more destination accounts",
				},
				"list": gin.H{
					"path":   "/api/v1/templates",
					"method": "GET",
				},
				"get": gin.H{
					"path":   "/api/v1/templates/:id",
					"method": "GET",
				},
			},
		},
		"request_id": requestID,
	})
}

// HealthCheck returns the health status of the service
func (h *HTTPHandlers) HealthCheck(c *gin.Context) {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = uuid.New().String()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"service":    "adcloner",
		"version":    "1.0.0",
		"request_id": requestID,
	})
}
