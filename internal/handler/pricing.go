package handler

import (
	"net/http"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/apierror"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/dto"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// PricingHandler serves the pricing record lifecycle and the optimization
// advisor endpoints.
type PricingHandler struct {
	svc     service.PricingService
	advisor service.AdvisorService
}

func NewPricingHandler(svc service.PricingService, advisor service.AdvisorService) *PricingHandler {
	return &PricingHandler{svc: svc, advisor: advisor}
}

// List godoc
// @Summary      List pricing records
// @Description  Returns all pricing records ordered by last update, optionally filtered by supplier or status.
// @Tags         pricing
// @Security     BearerAuth
// @Param        supplierId  query    string  false  "Filter by supplier"
// @Param        status      query    string  false  "Filter by lifecycle status"
// @Success      200  {object}  dto.PricingListResponse
// @Failure      500  {object}  apierror.APIError
// @Router       /pricing/items [get]
func (h *PricingHandler) List(c *gin.Context) {
	var filter dto.PricingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListBySupplier returns the records belonging to one supplier.
func (h *PricingHandler) ListBySupplier(c *gin.Context) {
	filter := dto.PricingFilter{SupplierID: c.Param("supplierId")}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PricingHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Upsert creates the pricing record for a product or merges an update into
// the existing one.
func (h *PricingHandler) Upsert(c *gin.Context) {
	var req dto.UpsertPricingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Upsert(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PricingHandler) UpdatePrice(c *gin.Context) {
	var req dto.UpdatePriceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdatePrice(c.Request.Context(), c.Param("productId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary      Price-change history
// @Description  Returns the append-only price-change ledger of a product in chronological order.
// @Tags         pricing
// @Security     BearerAuth
// @Param        productId  path  string  true  "Product id"
// @Success      200  {object}  dto.HistoryResponse
// @Failure      404  {object}  apierror.APIError
// @Router       /pricing/history/{productId} [get]
func (h *PricingHandler) History(c *gin.Context) {
	resp, err := h.svc.GetHistory(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Optimize runs the advisor synchronously for one product and persists the
// suggestion fields.
func (h *PricingHandler) Optimize(c *gin.Context) {
	resp, err := h.advisor.Optimize(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// OptimizeFleet enqueues async optimization jobs for many records at once.
func (h *PricingHandler) OptimizeFleet(c *gin.Context) {
	var req dto.OptimizeFleetRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.advisor.EnqueueFleet(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}
