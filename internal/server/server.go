package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shinyyama/shopping-items/internal/handler"
	"github.com/shinyyama/shopping-items/internal/repository"
	"github.com/shinyyama/shopping-items/internal/service"
	"gorm.io/gorm"
)

type Options struct {
	AllowOrigins []string
	GitSHA       string
	BuildTime    string
}

type Server struct {
	e        *echo.Echo
	itemRepo repository.ShoppingItemRepository
}

// New builds the HTTP server. db may be nil; item routes then answer 500
// until SetDB is called.
func New(db *gorm.DB, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{echo.HeaderContentType, echo.HeaderAuthorization},
		ExposeHeaders:   []string{echo.HeaderLocation, echo.HeaderXRequestID},
		AllowOriginFunc: allowOrigin(opts.AllowOrigins),
	}))

	itemRepo := repository.NewShoppingItemRepository(db)
	itemSvc := service.NewShoppingItemService(itemRepo)
	itemHandler := handler.NewShoppingItemHandler(itemSvc)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"db":         dbStatus(itemRepo),
			"git_sha":    opts.GitSHA,
			"build_time": opts.BuildTime,
		})
	})

	items := e.Group("/api/shopping-items")
	items.GET("", itemHandler.List)
	items.POST("", itemHandler.Create)
	items.GET("/category/", itemHandler.ListByCategory)
	items.GET("/category/:category", itemHandler.ListByCategory)
	items.GET("/:id", itemHandler.Get)
	items.PUT("/:id", itemHandler.Update)
	items.DELETE("/:id", itemHandler.Delete)

	return &Server{e: e, itemRepo: itemRepo}
}

func allowOrigin(extra []string) func(string) (bool, error) {
	allowed := make(map[string]struct{}, len(extra))
	for _, o := range extra {
		if o = strings.TrimSpace(strings.ToLower(o)); o != "" {
			allowed[o] = struct{}{}
		}
	}
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if _, ok := allowed[low]; ok {
			return true, nil
		}
		u, err := url.Parse(low)
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		host := u.Hostname()
		return host == "localhost" || host == "127.0.0.1", nil
	}
}

func dbStatus(repo repository.ShoppingItemRepository) string {
	if repo.Ready() {
		return "ready"
	}
	return "connecting"
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) SetDB(db *gorm.DB) {
	s.itemRepo.SetDB(db)
}
