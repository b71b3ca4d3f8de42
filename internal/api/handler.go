// Package api exposes the pricing engine over HTTP.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contactkeval/option-greeks/internal/data"
	"github.com/contactkeval/option-greeks/internal/logger"
	"github.com/contactkeval/option-greeks/internal/pricing"
	"github.com/contactkeval/option-greeks/internal/report"
)

// Size caps for a single request.
const (
	maxPayoffPoints   = 10000
	maxBatchContracts = 10000
)

// PricingHandler serves price, batch and payoff requests.
type PricingHandler struct {
	prov    data.Provider
	workers int
}

// NewPricingHandler creates a handler. prov resolves the spot when a request
// names an underlying without S; it may be nil.
func NewPricingHandler(prov data.Provider, workers int) *PricingHandler {
	return &PricingHandler{prov: prov, workers: workers}
}

// PriceRequest carries market inputs. When S is zero and Underlying is set,
// the spot is looked up through the data provider.
type PriceRequest struct {
	Underlying string `json:"underlying"`
	pricing.MarketInputs
}

type BatchRequest struct {
	Contracts []PriceRequest `json:"contracts" binding:"required"`
}

type PayoffRequest struct {
	PriceRequest
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Points int     `json:"points" binding:"required,min=1"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// NewRouter wires the handler into a gin engine.
func NewRouter(h *PricingHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	h.RegisterRoutes(router.Group("/"))
	return router
}

// RegisterRoutes binds the handler methods to the router group.
func (h *PricingHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/pricing")
	{
		api.POST("/price", h.Price)
		api.POST("/batch", h.Batch)
		api.POST("/payoff", h.Payoff)
	}
}

// Price returns the full pricing result for one contract.
func (h *PricingHandler) Price(c *gin.Context) {
	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	in, ok := h.resolve(c, req)
	if !ok {
		return
	}
	res, err := pricing.Price(in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Batch prices several contracts; one invalid contract fails the whole request.
func (h *PricingHandler) Batch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if len(req.Contracts) > maxBatchContracts {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("too many contracts: %d (max %d)", len(req.Contracts), maxBatchContracts),
		})
		return
	}

	inputs := make([]pricing.MarketInputs, 0, len(req.Contracts))
	for _, contract := range req.Contracts {
		in, ok := h.resolve(c, contract)
		if !ok {
			return
		}
		inputs = append(inputs, in)
	}

	results, err := pricing.PriceBatch(c.Request.Context(), inputs, h.workers)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Payoff prices the contract and returns the P&L curve at expiry.
func (h *PricingHandler) Payoff(c *gin.Context) {
	var req PayoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.Points > maxPayoffPoints || req.Max < req.Min {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payoff range"})
		return
	}

	in, ok := h.resolve(c, req.PriceRequest)
	if !ok {
		return
	}
	res, err := pricing.Price(in)
	if err != nil {
		writeError(c, err)
		return
	}

	curve := pricing.PayoffCurve(req.Min, req.Max, req.Points, in.K, res.CallPrice, res.PutPrice)
	c.JSON(http.StatusOK, report.NewDocument(req.Underlying, in, res, curve))
}

// resolve fills S from the provider when needed. It writes the error response itself.
func (h *PricingHandler) resolve(c *gin.Context, req PriceRequest) (pricing.MarketInputs, bool) {
	in := req.MarketInputs
	if in.S != 0 || req.Underlying == "" || h.prov == nil {
		return in, true
	}

	spot, err := h.prov.GetSpot(c.Request.Context(), req.Underlying)
	if err != nil {
		logger.Errorf("spot lookup for %s failed: %v", req.Underlying, err)
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		return in, false
	}
	in.S = spot
	return in, true
}

func writeError(c *gin.Context, err error) {
	var de *pricing.DomainError
	if errors.As(err, &de) {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Field: de.Field})
		return
	}
	logger.Errorf("pricing request failed: %v", err)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
