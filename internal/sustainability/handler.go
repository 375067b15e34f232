package sustainability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carbon-scribe/sustainability-backend/internal/auth"
	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
	"carbon-scribe/sustainability-backend/internal/sustainability/export"
)

// Handler handles HTTP requests for sustainability operations
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new sustainability handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers sustainability routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	s := router.Group("/sustainability")
	{
		// Carbon footprint endpoints
		s.POST("/emissions", h.recordEmission)
		s.GET("/emissions", h.getFootprints)
		s.GET("/emissions/by-type/:type", h.getFootprintsByType)
		s.POST("/emissions/calculate", h.calculateEmission)

		// Green initiative endpoints
		s.POST("/initiatives", h.createInitiative)
		s.GET("/initiatives/active", h.getActiveInitiatives)
		s.GET("/initiatives/:id", h.getInitiative)

		// ESG report endpoints
		s.POST("/reports/generate", h.generateReport)
		s.GET("/reports", h.listReports)
		s.GET("/reports/id/:id", h.getReportByID)
		s.GET("/reports/id/:id/export", h.exportReport)
		s.GET("/reports/:warehouseId/:yearMonth", h.getReport)
		s.GET("/reports/:warehouseId/:yearMonth/assessment", h.assessReport)
	}
}

// =====================================================
// Carbon Footprint Endpoints
// =====================================================

// recordEmission handles POST /api/v1/sustainability/emissions
func (h *Handler) recordEmission(c *gin.Context) {
	var req RecordEmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.permitWarehouse(c, req.WarehouseID) {
		return
	}

	footprint, err := h.service.RecordEmission(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, "Failed to record emission", err)
		return
	}

	c.JSON(http.StatusCreated, footprint)
}

// getFootprints handles GET /api/v1/sustainability/emissions
func (h *Handler) getFootprints(c *gin.Context) {
	warehouseID := c.Query("warehouseId")
	if warehouseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "warehouseId is required"})
		return
	}
	if !h.permitWarehouse(c, warehouseID) {
		return
	}
	start, err := parseDateQuery(c, "startDate")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := parseDateQuery(c, "endDate")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	footprints, err := h.service.GetFootprints(c.Request.Context(), warehouseID, start, end)
	if err != nil {
		h.writeError(c, "Failed to list footprints", err)
		return
	}

	c.JSON(http.StatusOK, footprints)
}

// getFootprintsByType handles GET /api/v1/sustainability/emissions/by-type/:type
func (h *Handler) getFootprintsByType(c *gin.Context) {
	emissionType := domain.EmissionType(c.Param("type"))

	footprints, err := h.service.GetFootprintsByEmissionType(c.Request.Context(), emissionType)
	if err != nil {
		h.writeError(c, "Failed to list footprints by type", err)
		return
	}
	if claims := scopedClaims(c); claims != nil {
		permitted := make([]*domain.CarbonFootprint, 0, len(footprints))
		for _, f := range footprints {
			if claims.CanAccessWarehouse(f.WarehouseID) {
				permitted = append(permitted, f)
			}
		}
		footprints = permitted
	}

	c.JSON(http.StatusOK, footprints)
}

// calculateEmission handles POST /api/v1/sustainability/emissions/calculate
func (h *Handler) calculateEmission(c *gin.Context) {
	var req CalculateEmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.CalculateActivityEmission(&req)
	if err != nil {
		h.writeError(c, "Failed to calculate emission", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// =====================================================
// Green Initiative Endpoints
// =====================================================

// createInitiative handles POST /api/v1/sustainability/initiatives
func (h *Handler) createInitiative(c *gin.Context) {
	var req CreateInitiativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	initiative, err := h.service.CreateInitiative(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, "Failed to create initiative", err)
		return
	}

	c.JSON(http.StatusCreated, initiative)
}

// getActiveInitiatives handles GET /api/v1/sustainability/initiatives/active
func (h *Handler) getActiveInitiatives(c *gin.Context) {
	initiatives, err := h.service.GetActiveInitiatives(c.Request.Context())
	if err != nil {
		h.writeError(c, "Failed to list active initiatives", err)
		return
	}

	c.JSON(http.StatusOK, initiatives)
}

// getInitiative handles GET /api/v1/sustainability/initiatives/:id
func (h *Handler) getInitiative(c *gin.Context) {
	initiative, err := h.service.GetInitiative(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "Failed to get initiative", err)
		return
	}

	c.JSON(http.StatusOK, initiative)
}

// =====================================================
// ESG Report Endpoints
// =====================================================

// generateReport handles POST /api/v1/sustainability/reports/generate
func (h *Handler) generateReport(c *gin.Context) {
	warehouseID := c.Query("warehouseId")
	if warehouseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "warehouseId is required"})
		return
	}
	if !h.permitWarehouse(c, warehouseID) {
		return
	}
	month, err := domain.ParseYearMonth(c.Query("yearMonth"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.service.GenerateMonthlyReport(c.Request.Context(), warehouseID, month)
	if err != nil {
		h.writeError(c, "Failed to generate report", err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// listReports handles GET /api/v1/sustainability/reports
func (h *Handler) listReports(c *gin.Context) {
	warehouseID := c.Query("warehouseId")
	if warehouseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "warehouseId is required"})
		return
	}
	if !h.permitWarehouse(c, warehouseID) {
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a number"})
		return
	}

	response, err := h.service.ListReportsByYear(c.Request.Context(), warehouseID, year)
	if err != nil {
		h.writeError(c, "Failed to list reports", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// getReport handles GET /api/v1/sustainability/reports/:warehouseId/:yearMonth
func (h *Handler) getReport(c *gin.Context) {
	if !h.permitWarehouse(c, c.Param("warehouseId")) {
		return
	}
	month, err := domain.ParseYearMonth(c.Param("yearMonth"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.service.GetReport(c.Request.Context(), c.Param("warehouseId"), month)
	if err != nil {
		h.writeError(c, "Failed to get report", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// getReportByID handles GET /api/v1/sustainability/reports/id/:id
func (h *Handler) getReportByID(c *gin.Context) {
	report, err := h.service.GetReportByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "Failed to get report", err)
		return
	}
	if !h.permitWarehouse(c, report.WarehouseID) {
		return
	}

	c.JSON(http.StatusOK, report)
}

// assessReport handles GET /api/v1/sustainability/reports/:warehouseId/:yearMonth/assessment
func (h *Handler) assessReport(c *gin.Context) {
	if !h.permitWarehouse(c, c.Param("warehouseId")) {
		return
	}
	month, err := domain.ParseYearMonth(c.Param("yearMonth"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	orders := 0
	if raw := c.Query("ordersProcessed"); raw != "" {
		if orders, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ordersProcessed must be a number"})
			return
		}
	}

	assessment, err := h.service.AssessReport(c.Request.Context(), c.Param("warehouseId"), month, orders)
	if err != nil {
		h.writeError(c, "Failed to assess report", err)
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// exportReport handles GET /api/v1/sustainability/reports/id/:id/export
func (h *Handler) exportReport(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatCSV)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if scopedClaims(c) != nil {
		report, err := h.service.GetReportByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			h.writeError(c, "Failed to export report", err)
			return
		}
		if !h.permitWarehouse(c, report.WarehouseID) {
			return
		}
	}

	doc, location, err := h.service.ExportReport(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		h.writeError(c, "Failed to export report", err)
		return
	}

	if location != "" {
		c.Header("X-Archive-Location", location)
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

// =====================================================
// Helpers
// =====================================================

// writeError maps service errors to HTTP status codes
func (h *Handler) writeError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrReportExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// permitWarehouse writes 403 and returns false when the caller's token does
// not cover warehouseID. Requests without claims pass.
func (h *Handler) permitWarehouse(c *gin.Context, warehouseID string) bool {
	claims := scopedClaims(c)
	if claims == nil || claims.CanAccessWarehouse(warehouseID) {
		return true
	}
	h.logger.Debug("Warehouse access denied",
		zap.String("user_id", claims.UserID),
		zap.String("warehouse_id", warehouseID))
	c.JSON(http.StatusForbidden, gin.H{"error": "warehouse not permitted"})
	return false
}

// scopedClaims returns the caller's claims when they restrict warehouses
func scopedClaims(c *gin.Context) *auth.Claims {
	claims, ok := auth.ClaimsFrom(c)
	if !ok || len(claims.Warehouses) == 0 {
		return nil
	}
	return claims
}

func parseDateQuery(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, errors.New(name + " is required")
	}
	t, err := parseDate(raw)
	if err != nil {
		return time.Time{}, errors.New(name + " must be formatted as YYYY-MM-DD")
	}
	return t, nil
}
