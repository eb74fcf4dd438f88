// Package router assembles the gin engine: global middleware, the public
// health check, the API docs and the authenticated /api/{version} group.
package router

import (
	"github.com/JIGLE/proman-sub000/internal/infrastructure/config"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/logger"
	"github.com/JIGLE/proman-sub000/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// HealthPath is served outside the authenticated group
const HealthPath = "/health"

// SwaggerPath serves the API documentation UI and doc.json
const SwaggerPath = "/swagger/*any"

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	auth       []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithAuth sets the middleware guarding the API group
func WithAuth(handlers ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.auth = append(r.auth, handlers...)
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/"+r.apiVersion, r.auth...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// RegisterSwagger serves the registered swag document behind guard. The
// docs package must be imported for doc.json to resolve.
func RegisterSwagger(engine *gin.Engine, guard gin.HandlerFunc) {
	engine.GET(SwaggerPath, guard, ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// EngineOptions configures NewEngine
type EngineOptions struct {
	HTTP        config.HTTPConfig
	ServiceName string
	Tracing     bool
	Logger      *zap.Logger
}

// NewEngine builds a gin engine with the global middleware chain:
// request id, tracing, access log, recovery, CORS and body limit.
func NewEngine(opts EngineOptions) (*gin.Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	if opts.Tracing {
		engine.Use(middleware.Tracing(middleware.TracingConfig{
			ServiceName: opts.ServiceName,
			SkipPaths:   []string{HealthPath},
		}))
	}
	engine.Use(
		logger.GinMiddleware(opts.Logger),
		logger.Recovery(opts.Logger),
		middleware.CORSWithConfig(middleware.CORSConfigFrom(opts.HTTP)),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
	)
	middleware.SetupValidator()
	return engine, nil
}
