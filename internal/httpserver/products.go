package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type productHandlers struct {
	svc    productService
	logger *zap.Logger
}

func (h *productHandlers) list(c *gin.Context) {
	products, err := h.svc.List(c.Request.Context(), c.Param("storeId"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newListResponse(products))
}

func (h *productHandlers) get(c *gin.Context) {
	product, err := h.svc.Get(c.Request.Context(), c.Param("storeId"), c.Param("productId"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
