package router

import (
	"io"

	"mercator-hq/lantern/pkg/wire"
)

const (
	// DefaultIndexFile is served for requests to "/".
	DefaultIndexFile = "/index.html"

	staticCacheControl = "public;max-age=3600"
)

// ContentSource resolves a logical path to readable content. ok is false when
// the path does not resolve; the returned reader is closed by the caller.
type ContentSource interface {
	Open(name string) (body io.ReadCloser, mimeType string, ok bool)
}

// StaticRoute serves content from a ContentSource under a logical root. It
// matches every method.
type StaticRoute struct {
	Definition
	root      string
	source    ContentSource
	indexFile string
}

// NewStaticRoute creates a static route for pattern serving files from source
// under root. A request for "/" is served from the index file.
func NewStaticRoute(pattern, root string, source ContentSource) *StaticRoute {
	s := &StaticRoute{
		root:      root,
		source:    source,
		indexFile: DefaultIndexFile,
	}
	s.Definition = Definition{Pattern: pattern, Method: MethodAny, Handler: s.serve}
	return s
}

// SetIndexFile changes the file served for "/".
func (s *StaticRoute) SetIndexFile(name string) {
	s.indexFile = name
}

// Root returns the logical content root.
func (s *StaticRoute) Root() string {
	return s.root
}

// serve writes the resolved file. On a miss it leaves the response open so
// the next static route or the not-found fallback can answer.
func (s *StaticRoute) serve(ctx *wire.Context) error {
	name := ctx.RequestPath()
	if name == "/" {
		name = s.indexFile
	}
	name = joinPattern(s.root, name)

	body, mimeType, ok := s.source.Open(name)
	if !ok {
		ctx.Logger().DebugContext(ctx.Ctx(), "static content not found", "name", name)
		return nil
	}

	ctx.SetHeader("Cache-Control", staticCacheControl).
		Status(wire.StatusOK).
		ContentType(mimeType).
		SendStream(body)
	return nil
}
