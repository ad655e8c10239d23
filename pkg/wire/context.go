package wire

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

const headerAcceptEncoding = "Accept-Encoding"

// Context couples a Request with its Response for handlers. Builder methods
// return the Context so calls can be chained:
//
//	ctx.Status(wire.StatusOK).JSON().Send(`{"ok":true}`)
//
// Send and Redirect never return errors; write failures are logged.
type Context struct {
	ctx      context.Context
	request  *Request
	response *Response
	logger   *slog.Logger
}

// NewContext builds a Context around req writing its response to out. The
// response is gzip eligible when the request's Accept-Encoding mentions gzip.
func NewContext(ctx context.Context, req *Request, out io.Writer, logger *slog.Logger) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.Default()
	}
	resp := NewResponse(out)
	resp.SetGzip(strings.Contains(req.Header().Get(headerAcceptEncoding), "gzip"))
	return &Context{
		ctx:      ctx,
		request:  req,
		response: resp,
		logger:   logger,
	}
}

// Ctx returns the Go context of the exchange.
func (c *Context) Ctx() context.Context { return c.ctx }

// Request returns the parsed request.
func (c *Context) Request() *Request { return c.request }

// Response returns the response under construction.
func (c *Context) Response() *Response { return c.response }

// Logger returns the logger bound to this exchange.
func (c *Context) Logger() *slog.Logger { return c.logger }

// Method returns the request method.
func (c *Context) Method() string { return c.request.Method() }

// RequestPath returns the request path.
func (c *Context) RequestPath() string { return c.request.Path() }

// Header returns a request header.
func (c *Context) Header(name string) string { return c.request.Header().Get(name) }

// Param returns a query parameter, or nil.
func (c *Context) Param(key string) *Param { return c.request.Params().Get(key) }

// FormParam returns a form parameter, or nil.
func (c *Context) FormParam(key string) *Param { return c.request.FormParams().Get(key) }

// SetHeader sets a response header.
func (c *Context) SetHeader(name, value string) *Context {
	c.response.Header().Set(name, value)
	return c
}

// Status sets the response status.
func (c *Context) Status(status int) *Context {
	c.response.SetStatus(status)
	return c
}

// ContentType sets the response content type.
func (c *Context) ContentType(contentType string) *Context {
	c.response.SetContentType(contentType)
	return c
}

// JSON sets the content type to application/json.
func (c *Context) JSON() *Context { return c.ContentType(ContentTypeJSON) }

// HTML sets the content type to text/html.
func (c *Context) HTML() *Context { return c.ContentType(ContentTypeHTML) }

// Closed reports whether the response was sent.
func (c *Context) Closed() bool { return c.response.Closed() }

// Send sends body as the response.
func (c *Context) Send(body string) {
	c.report("send", c.response.Send(body))
}

// SendBytes sends body as the response.
func (c *Context) SendBytes(body []byte) {
	c.report("send", c.response.SendBytes(body))
}

// SendStream sends the content of src as the response.
func (c *Context) SendStream(src io.Reader) {
	c.report("send", c.response.SendStream(src))
}

// Redirect answers with a 302 redirect to url.
func (c *Context) Redirect(url string) {
	c.report("redirect", c.response.Redirect(url, false))
}

// RedirectPermanent answers with a 301 redirect to url.
func (c *Context) RedirectPermanent(url string) {
	c.report("redirect", c.response.Redirect(url, true))
}

func (c *Context) report(op string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrResponseClosed) {
		c.logger.WarnContext(c.ctx, "response already sent", "op", op, "path", c.request.Path())
		return
	}
	c.logger.ErrorContext(c.ctx, "failed to write response", "op", op, "path", c.request.Path(), "error", err)
}
