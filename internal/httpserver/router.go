package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"cartbuilder/internal/domain"
	"cartbuilder/internal/logger"
	cartsvc "cartbuilder/internal/service/cart"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type storeCtxKeyType struct{}

var storeCtxKey = storeCtxKeyType{}

type storeLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Store, error)
}

type cartService interface {
	GetOrCreate(ctx context.Context, storeID string, in cartsvc.GetOrCreateInput) (*domain.Cart, error)
	Get(ctx context.Context, cartID string) (*domain.Cart, error)
	Update(ctx context.Context, cartID string, in cartsvc.UpdateInput) (*domain.Cart, error)
	Merge(ctx context.Context, cartID, otherCartID string) (*domain.Cart, error)
	Delete(ctx context.Context, cartID string) error
	ShippingRates(ctx context.Context, cartID string) ([]domain.ShippingRate, error)
	PaymentMethods(ctx context.Context, cartID string) ([]domain.PaymentMethod, error)
}

type productService interface {
	List(ctx context.Context, storeID string) ([]domain.Product, error)
	Get(ctx context.Context, storeID, id string) (*domain.Product, error)
}

// Deps are the services the router dispatches to. ProductSvc is optional.
type Deps struct {
	Stores     storeLookup
	CartSvc    cartService
	ProductSvc productService
}

// buildRouter wires routes for the API.
func buildRouter(log *zap.Logger, db *pgxpool.Pool, deps Deps, opts Options) (*gin.Engine, error) {
	if deps.Stores == nil || deps.CartSvc == nil {
		return nil, errors.New("httpserver: store lookup and cart service are required")
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.NewWriter(log)), gin.Recovery(), corsMiddleware(opts.CORSAllowOrigins))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &cartHandlers{svc: deps.CartSvc, logger: log}

	stores := router.Group("/stores/:storeId", storeMiddleware(deps.Stores))
	stores.POST("/carts", h.getOrCreate)
	if deps.ProductSvc != nil {
		p := &productHandlers{svc: deps.ProductSvc, logger: log}
		stores.GET("/products", p.list)
		stores.GET("/products/:productId", p.get)
	}

	carts := router.Group("/carts/:cartId")
	carts.GET("", h.get)
	carts.POST("", h.update)
	carts.DELETE("", h.delete)
	carts.POST("/merge", h.merge)
	carts.GET("/shipping-rates", h.shippingRates)
	carts.GET("/payment-methods", h.paymentMethods)

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// storeMiddleware resolves :storeId and stores it on the request context.
func storeMiddleware(stores storeLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID := strings.TrimSpace(c.Param("storeId"))
		if storeID == "" {
			respondError(c, http.StatusBadRequest, "InvalidInput", domain.InvalidArgument("store id required"))
			c.Abort()
			return
		}
		store, err := stores.GetByID(c.Request.Context(), storeID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				respondError(c, http.StatusNotFound, "ResourceNotFound", errors.New("store not found"))
			} else {
				respondError(c, http.StatusInternalServerError, "General", errors.New("store lookup failed"))
			}
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), storeCtxKey, store))
		c.Next()
	}
}

func storeFromContext(ctx context.Context) *domain.Store {
	store, _ := ctx.Value(storeCtxKey).(*domain.Store)
	return store
}
