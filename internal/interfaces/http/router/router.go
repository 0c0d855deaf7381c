package router

import "github.com/gin-gonic/gin"

// RouteRegistrar mounts one area of the API onto the versioned group
type RouteRegistrar interface {
	RegisterRoutes(api *gin.RouterGroup)
}

// RoutesFunc lets a plain function act as a RouteRegistrar
type RoutesFunc func(api *gin.RouterGroup)

func (f RoutesFunc) RegisterRoutes(api *gin.RouterGroup) { f(api) }

// Router builds the /api/<version> tree. Health and metrics stay on the
// bare engine so they bypass the API middleware.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

type RouterOption func(*Router)

// WithAPIVersion replaces the default "v1" prefix
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

// WithMiddleware appends handlers that run, in order, before every API route
func WithMiddleware(middleware ...gin.HandlerFunc) RouterOption {
	return func(r *Router) { r.middleware = append(r.middleware, middleware...) }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrars for Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every queued registrar on the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/"+r.apiVersion, r.middleware...)
	for _, reg := range r.registrars {
		reg.RegisterRoutes(api)
	}
}
