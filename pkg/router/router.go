package router

import (
	"context"
	"net/http"

	"github.com/questforge-lab/backend/config"

	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)
type WebsocketHandlerFunc[Request any] func(ctx context.Context, req *Request) error
type MiddlewareFunc func(ctx context.Context) (context.Context, error)
type CloserFunc func(ctx context.Context)

// Router registers handlers taking a request model and returning a response
// model. The context passed to every handler derives from the root context
// given to New, so handlers can use xcontext helpers for configs, logger, and
// database.
type Router struct {
	ctx context.Context
	mux *http.ServeMux

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

func New(ctx context.Context) *Router {
	return &Router{ctx: ctx, mux: http.NewServeMux()}
}

// Branch returns a router sharing the same mux but with an independent
// middleware chain. Middlewares and closers registered so far are inherited.
func (r *Router) Branch() *Router {
	branch := &Router{ctx: r.ctx, mux: r.mux}
	branch.befores = append(branch.befores, r.befores...)
	branch.afters = append(branch.afters, r.afters...)
	branch.closers = append(branch.closers, r.closers...)
	return branch
}

// Before registers a middleware running before the handler. It can replace
// the request context.
func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

// After registers a middleware running after the handler succeeded.
func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

// AddCloser registers a function running after the response is written, no
// matter the handler succeeded or not. Closers can read the handler error
// with xcontext.Error.
func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodPost, handler))
}

// Websocket registers a handler upgrading the connection. The request model
// is bound from query parameters and the upgraded client is available to the
// handler via xcontext.WSClient.
func Websocket[Request any](r *Router, pattern string, handler WebsocketHandlerFunc[Request]) {
	r.mux.HandleFunc(pattern, wrapWebsocket(r, handler))
}

func (r *Router) Static(pattern, root string) {
	r.mux.Handle(pattern, http.FileServer(http.Dir(root)))
}

func (r *Router) Handler(cfg config.ServerConfigs) http.Handler {
	if len(cfg.AllowCORS) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins:   cfg.AllowCORS,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		})
		return c.Handler(r.mux)
	}

	return r.mux
}
