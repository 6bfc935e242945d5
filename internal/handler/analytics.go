package handler

import (
	"net/http"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves the aggregation reporter endpoints.
type AnalyticsHandler struct {
	svc service.AnalyticsService
}

func NewAnalyticsHandler(svc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// Summary godoc
// @Summary      Fleet-wide pricing analytics
// @Description  Aggregates every pricing record into the dashboard KPI summary. Cached briefly.
// @Tags         analytics
// @Security     BearerAuth
// @Success      200  {object}  dto.AnalyticsResponse
// @Failure      500  {object}  apierror.APIError
// @Router       /pricing/analytics [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	resp, err := h.svc.Summarize(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) SummaryCards(c *gin.Context) {
	resp, err := h.svc.SummaryCards(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) MLPerformance(c *gin.Context) {
	resp, err := h.svc.MLPerformance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) PriceFactors(c *gin.Context) {
	resp, err := h.svc.PriceFactors(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) TimeOfDayDemand(c *gin.Context) {
	resp, err := h.svc.TimeOfDayDemand(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) MLAnalytics(c *gin.Context) {
	resp, err := h.svc.MLAnalytics(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
