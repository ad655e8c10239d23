package router

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"mercator-hq/lantern/pkg/wire"
)

// NotFoundBody is the body of the fallback response.
const NotFoundBody = "404 File Not Found"

// InitFunc populates the route table of an endpoint.
type InitFunc func(e *Endpoint) error

// Endpoint is the root group of a server. Besides the route tree it owns the
// static routes, the failure translator and the init hook.
type Endpoint struct {
	Group

	static     []*StaticRoute
	translator FailureTranslator
	initFn     InitFunc
	initOnce   sync.Once
	initErr    error
	logger     *slog.Logger
}

// NewEndpoint creates an endpoint rooted at fragment. init is run by Init and
// may be nil.
func NewEndpoint(fragment string, init InitFunc) *Endpoint {
	return &Endpoint{
		Group:      Group{fragment: fragment},
		translator: DefaultFailureTranslator,
		initFn:     init,
		logger:     slog.Default().With("component", "router"),
	}
}

// SetFailureTranslator replaces the failure translator. A nil translator
// restores DefaultFailureTranslator.
func (e *Endpoint) SetFailureTranslator(translator FailureTranslator) {
	if translator == nil {
		translator = DefaultFailureTranslator
	}
	e.translator = translator
}

// SetLogger sets the logger used for init and dispatch failures.
func (e *Endpoint) SetLogger(logger *slog.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// AddStaticRoute appends a static route. Static routes are tried after the
// whole route tree.
func (e *Endpoint) AddStaticRoute(route *StaticRoute) {
	e.static = append(e.static, route)
}

// StaticRoutes returns the static routes in registration order.
func (e *Endpoint) StaticRoutes() []*StaticRoute {
	return e.static
}

// Init runs the init hook exactly once and returns its error on every call.
func (e *Endpoint) Init() error {
	e.initOnce.Do(func() {
		if e.initFn == nil {
			return
		}
		if err := e.initFn(e); err != nil {
			e.initErr = fmt.Errorf("endpoint init failed: %w", err)
			return
		}
		e.logger.Debug("route table initialized",
			"definitions", len(e.defs),
			"groups", len(e.groups),
			"routes", len(e.routes),
			"static_routes", len(e.static),
		)
	})
	return e.initErr
}

// Dispatch runs the matching handlers for ctx and guarantees a response
// unless a failure translator chose not to send one.
func (e *Endpoint) Dispatch(ctx *wire.Context) {
	handled, err := e.walkGroup("", &e.Group, ctx)
	if err == nil && !handled {
		handled, err = e.walkStatic(ctx)
	}
	if err != nil {
		e.fail(err, ctx)
		return
	}
	if handled || ctx.Closed() {
		return
	}
	ctx.Status(wire.StatusNotFound).Send(NotFoundBody)
}

// walkGroup visits the group's definitions, then its child groups, then its
// child routes. It reports true once a handler has sent.
func (e *Endpoint) walkGroup(prefix string, g *Group, ctx *wire.Context) (bool, error) {
	path := prefix + g.fragment

	if handled, err := e.walkDefinitions(path, g.defs, ctx); handled || err != nil {
		return handled, err
	}
	for _, child := range g.groups {
		if handled, err := e.walkGroup(path, child, ctx); handled || err != nil {
			return handled, err
		}
	}
	for _, route := range g.routes {
		if handled, err := e.walkDefinitions(path+route.fragment, route.defs, ctx); handled || err != nil {
			return handled, err
		}
	}
	return false, nil
}

func (e *Endpoint) walkDefinitions(prefix string, defs []Definition, ctx *wire.Context) (bool, error) {
	for i := range defs {
		if handled, err := e.try(prefix, &defs[i], ctx); handled || err != nil {
			return handled, err
		}
	}
	return false, nil
}

func (e *Endpoint) walkStatic(ctx *wire.Context) (bool, error) {
	for _, route := range e.static {
		if handled, err := e.try(e.fragment, &route.Definition, ctx); handled || err != nil {
			return handled, err
		}
	}
	return false, nil
}

// try invokes def when it matches the request and reports whether the
// response is closed afterwards.
func (e *Endpoint) try(prefix string, def *Definition, ctx *wire.Context) (bool, error) {
	if !def.allows(ctx.Method()) {
		return false, nil
	}
	ok, err := matchPath(joinPattern(prefix, def.Pattern), ctx.RequestPath())
	if err != nil || !ok {
		return false, err
	}
	if err := invoke(def.Handler, ctx); err != nil {
		return ctx.Closed(), err
	}
	return ctx.Closed(), nil
}

// invoke calls handler and converts a panic into an error.
func invoke(handler Handler, ctx *wire.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ctx.Logger().ErrorContext(ctx.Ctx(), "panic in handler",
				"error", r,
				"method", ctx.Method(),
				"path", ctx.RequestPath(),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("panic in handler: %v", r)
		}
	}()
	return handler(ctx)
}

func (e *Endpoint) fail(err error, ctx *wire.Context) {
	if ctx.Closed() {
		ctx.Logger().WarnContext(ctx.Ctx(), "handler failed after sending response",
			"method", ctx.Method(),
			"path", ctx.RequestPath(),
			"error", err,
		)
		return
	}
	ctx.Logger().DebugContext(ctx.Ctx(), "translating handler failure",
		"method", ctx.Method(),
		"path", ctx.RequestPath(),
		"error", err,
	)
	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx.Ctx(), "panic in failure translator",
				"error", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	e.translator(err, ctx)
}
