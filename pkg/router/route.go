package router

// Route is a path fragment with an ordered list of definitions. All of its
// definitions are alternatives under the same prefix.
type Route struct {
	Definitions
	fragment string
}

// NewRoute creates a Route for the given path fragment.
func NewRoute(fragment string) *Route {
	return &Route{fragment: fragment}
}

// Fragment returns the route's path fragment.
func (r *Route) Fragment() string {
	return r.fragment
}

// Group is a Route that also owns child routes and child groups.
type Group struct {
	Definitions
	fragment string
	routes   []*Route
	groups   []*Group
}

// NewGroup creates a Group for the given path fragment.
func NewGroup(fragment string) *Group {
	return &Group{fragment: fragment}
}

// Fragment returns the group's path fragment.
func (g *Group) Fragment() string {
	return g.fragment
}

// AddRoute appends a child route.
func (g *Group) AddRoute(route *Route) {
	g.routes = append(g.routes, route)
}

// AddGroup appends a child group.
func (g *Group) AddGroup(group *Group) {
	g.groups = append(g.groups, group)
}

// Routes returns the child routes in registration order.
func (g *Group) Routes() []*Route {
	return g.routes
}

// Groups returns the child groups in registration order.
func (g *Group) Groups() []*Group {
	return g.groups
}
