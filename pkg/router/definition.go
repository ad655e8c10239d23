package router

import "mercator-hq/lantern/pkg/wire"

// MethodAny matches every request method.
const MethodAny = "ANY"

// Handler handles a request through its context. A handler that does not
// send lets dispatch continue with the next matching definition. A returned
// error stops dispatch and goes to the endpoint's FailureTranslator.
type Handler func(ctx *wire.Context) error

// Definition is a single (pattern, method, handler) triple. Pattern is a
// regular expression fragment relative to the owning node.
type Definition struct {
	Pattern string
	Method  string
	Handler Handler
}

// Definitions is an ordered list of route definitions. It is embedded by
// Route and Group to provide the registration helpers.
type Definitions struct {
	defs []Definition
}

// Handle registers handler for method on pattern. Method matching is case
// sensitive; use MethodAny to match every method.
func (d *Definitions) Handle(method, pattern string, handler Handler) {
	d.defs = append(d.defs, Definition{Pattern: pattern, Method: method, Handler: handler})
}

// GET registers handler for GET requests on pattern.
func (d *Definitions) GET(pattern string, handler Handler) { d.Handle("GET", pattern, handler) }

// POST registers handler for POST requests on pattern.
func (d *Definitions) POST(pattern string, handler Handler) { d.Handle("POST", pattern, handler) }

// PUT registers handler for PUT requests on pattern.
func (d *Definitions) PUT(pattern string, handler Handler) { d.Handle("PUT", pattern, handler) }

// DELETE registers handler for DELETE requests on pattern.
func (d *Definitions) DELETE(pattern string, handler Handler) { d.Handle("DELETE", pattern, handler) }

// PATCH registers handler for PATCH requests on pattern.
func (d *Definitions) PATCH(pattern string, handler Handler) { d.Handle("PATCH", pattern, handler) }

// HEAD registers handler for HEAD requests on pattern.
func (d *Definitions) HEAD(pattern string, handler Handler) { d.Handle("HEAD", pattern, handler) }

// OPTIONS registers handler for OPTIONS requests on pattern.
func (d *Definitions) OPTIONS(pattern string, handler Handler) { d.Handle("OPTIONS", pattern, handler) }

// ANY registers handler for every method on pattern.
func (d *Definitions) ANY(pattern string, handler Handler) { d.Handle(MethodAny, pattern, handler) }

// RouteDefinitions returns the registered definitions in registration order.
func (d *Definitions) RouteDefinitions() []Definition {
	return d.defs
}

// allows reports whether the definition accepts method.
func (def *Definition) allows(method string) bool {
	return def.Method == MethodAny || def.Method == method
}
