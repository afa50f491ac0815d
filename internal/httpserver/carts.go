package httpserver

import (
	"net/http"

	"cartbuilder/internal/domain"
	cartsvc "cartbuilder/internal/service/cart"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type cartHandlers struct {
	svc    cartService
	logger *zap.Logger
}

type mergeRequest struct {
	CartID string `json:"cartId"`
}

func (h *cartHandlers) getOrCreate(c *gin.Context) {
	var in cartsvc.GetOrCreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "InvalidJsonInput", err)
		return
	}
	storeID := c.Param("storeId")
	if store := storeFromContext(c.Request.Context()); store != nil {
		storeID = store.ID
		if in.Currency == "" {
			in.Currency = store.DefaultCurrency
		}
	}
	cart, err := h.svc.GetOrCreate(c.Request.Context(), storeID, in)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *cartHandlers) get(c *gin.Context) {
	cart, err := h.svc.Get(c.Request.Context(), c.Param("cartId"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *cartHandlers) update(c *gin.Context) {
	var in cartsvc.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "InvalidJsonInput", err)
		return
	}
	cart, err := h.svc.Update(c.Request.Context(), c.Param("cartId"), in)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *cartHandlers) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("cartId")); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *cartHandlers) merge(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "InvalidJsonInput", err)
		return
	}
	cart, err := h.svc.Merge(c.Request.Context(), c.Param("cartId"), req.CartID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *cartHandlers) shippingRates(c *gin.Context) {
	rates, err := h.svc.ShippingRates(c.Request.Context(), c.Param("cartId"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newListResponse(toShippingRateViews(rates)))
}

func (h *cartHandlers) paymentMethods(c *gin.Context) {
	methods, err := h.svc.PaymentMethods(c.Request.Context(), c.Param("cartId"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newListResponse[domain.PaymentMethod](methods))
}
