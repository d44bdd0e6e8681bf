package httpserver

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"rotazap-backend/internal/catalogapi"
	"rotazap-backend/internal/domain"
	basketsvc "rotazap-backend/internal/service/basket"
	ordersvc "rotazap-backend/internal/service/order"
	statussvc "rotazap-backend/internal/service/orderstatus"
	usersvc "rotazap-backend/internal/service/user"
)

// BasketService is the basket surface the HTTP layer consumes.
type BasketService interface {
	Add(ctx context.Context, userID int64, in basketsvc.AddInput) (*basketsvc.Line, error)
	Remove(ctx context.Context, userID, skuID, supplierID int64, hash string) (*basketsvc.Line, error)
	Delete(ctx context.Context, userID, skuID, supplierID int64, hash string) error
	Clear(ctx context.Context, userID int64) error
	Get(ctx context.Context, userID int64) ([]basketsvc.Line, error)
	Compare(ctx context.Context, userID int64, items []basketsvc.CompareItem) ([]domain.BasketDiff, error)
}

// OrderService covers checkout and order listing.
type OrderService interface {
	Validate(ctx context.Context, lines []ordersvc.LineInput) error
	Create(ctx context.Context, userID int64, lines []ordersvc.LineInput) (*domain.Order, error)
	List(ctx context.Context, userID int64) ([]domain.Order, error)
}

// StatusService covers the status dictionary and per-line history.
type StatusService interface {
	Statuses(ctx context.Context) ([]domain.OrderStatus, error)
	Status(ctx context.Context, id int64) (*domain.OrderStatus, error)
	CreateStatus(ctx context.Context, name string) (*domain.OrderStatus, error)
	Apply(ctx context.Context, in statussvc.ApplyInput) (*domain.StatusEvent, error)
	History(ctx context.Context, orderLineID int64) ([]domain.StatusEvent, error)
	Timeline(ctx context.Context, orderLineID int64) ([]domain.TimelineStep, error)
}

// SearchService covers article lookup and price resolution.
type SearchService interface {
	ArticleInfo(ctx context.Context, userID int64, brand, number string) (*domain.ArticleInfo, error)
	SearchBrands(ctx context.Context, number string) ([]catalogapi.BrandSuggestion, error)
	SearchTips(ctx context.Context, query string) ([]catalogapi.Tip, error)
	FindInPriceList(ctx context.Context, userID int64, brand, number string) ([]domain.LocalOfferGroup, error)
}

// UserService covers account management.
type UserService interface {
	Register(ctx context.Context, in usersvc.RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	UpdateProfile(ctx context.Context, id int64, in usersvc.ProfileInput) (*domain.User, error)
	UpdateRole(ctx context.Context, id int64, role string) (*domain.User, error)
	InitiatePasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// Deps bundles the services the router wires handlers to.
type Deps struct {
	BasketSvc BasketService
	OrderSvc  OrderService
	StatusSvc StatusService
	SearchSvc SearchService
	UserSvc   UserService

	AllowedOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), requestID())

	corsCfg := cors.DefaultConfig()
	if len(deps.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = deps.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, headerUserID, headerRequestID)
	corsCfg.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.Use(identity())

	h := handlers{deps: deps, logger: logger}

	router.POST("/users/register", h.register)
	router.POST("/users/login", h.login)
	router.POST("/users/password-reset", h.initiatePasswordReset)
	router.POST("/users/password-reset/confirm", h.confirmPasswordReset)

	router.GET("/search/article-info", h.articleInfo)
	router.GET("/search/brands", h.searchBrands)
	router.GET("/search/tips", h.searchTips)
	router.GET("/prices/find", h.findPrices)

	router.GET("/order-status", h.listStatuses)
	router.GET("/order-status/:id", h.getStatus)

	auth := router.Group("", requireUser())
	{
		auth.GET("/users/me", h.me)
		auth.PATCH("/users/me", h.updateProfile)
		auth.DELETE("/users/me", h.deleteMe)
		auth.PATCH("/users/:id/role", h.updateRole)

		auth.GET("/basket", h.getBasket)
		auth.POST("/basket", h.basketAction)
		auth.DELETE("/basket", h.clearBasket)

		auth.POST("/orders", h.createOrder)
		auth.POST("/orders/validate", h.validateOrder)
		auth.GET("/orders", h.listOrders)

		auth.POST("/order-status", h.createStatus)
		auth.POST("/order-lines-status", h.applyStatus)
		auth.GET("/order-lines-status/:id", h.statusHistory)
		auth.GET("/order-lines-status/:id/timeline", h.statusTimeline)
	}

	return router, nil
}
