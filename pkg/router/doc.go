// Package router holds the route table and the dispatcher.
//
// # Route table
//
// The table is a tree. An Endpoint is the root Group. A Group owns its own
// definitions, child Groups and child Routes. A Route owns only definitions.
// Every node carries a path fragment; a definition's full pattern is the
// concatenation of all ancestor fragments and its own, with "//" collapsed
// to "/". The full pattern is a regular expression that must match the whole
// request path.
//
//	endpoint := router.NewEndpoint("", func(e *router.Endpoint) error {
//	    api := router.NewGroup("/api")
//	    api.ANY("/.*", func(ctx *wire.Context) error {
//	        ctx.SetHeader("X-Api", "v1")
//	        return nil
//	    })
//
//	    users := router.NewRoute("/users")
//	    users.GET("/[0-9]+", showUser)
//	    users.POST("", createUser)
//	    api.AddRoute(users)
//
//	    e.AddGroup(api)
//	    e.AddStaticRoute(router.NewStaticRoute("/.*", "/www", source))
//	    return nil
//	})
//
// # Dispatch order
//
// Starting at the endpoint, for every group:
//
//  1. the group's own definitions, in registration order
//  2. each child group, recursively
//  3. each child route's definitions
//
// Static routes are tried once the whole tree is exhausted. Dispatch stops
// as soon as a handler leaves the response closed. A handler error or panic
// stops dispatch and is passed to the endpoint's FailureTranslator. When no
// handler sends, the fixed "404 File Not Found" response is written.
//
// Handlers that do not send act as filters: they may set headers or status
// for the handlers that follow.
//
// # Thread Safety
//
// The table must only be changed from the endpoint's init hook. After Init
// returns it is read concurrently by every connection without locking.
package router
