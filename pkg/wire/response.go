package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf16"

	"github.com/klauspost/compress/gzip"
)

// ErrResponseClosed is returned by a send or redirect on a response that was
// already sent.
var ErrResponseClosed = errors.New("response already sent")

// Response accumulates status and headers until a single terminal Send,
// SendStream or Redirect writes it to the output and closes the output.
type Response struct {
	out     io.Writer
	status  int
	header  *Header
	gzip    bool
	closed  bool
	written int64
}

// NewResponse creates a Response writing to out. When out is an io.Closer it
// is closed after the response is written.
func NewResponse(out io.Writer) *Response {
	r := &Response{
		out:    out,
		status: StatusOK,
		header: NewHeader(),
	}
	r.SetContentType(ContentTypeText)
	return r
}

// SetStatus sets the status code.
func (r *Response) SetStatus(status int) { r.status = status }

// Status returns the status code.
func (r *Response) Status() int { return r.status }

// SetContentType sets the Content-Type header.
func (r *Response) SetContentType(contentType string) {
	r.header.Set("Content-Type", contentType)
}

// ContentType returns the Content-Type header.
func (r *Response) ContentType() string { return r.header.Get("Content-Type") }

// Header returns the response headers.
func (r *Response) Header() *Header { return r.header }

// SetGzip marks the body for gzip compression.
func (r *Response) SetGzip(enabled bool) { r.gzip = enabled }

// Gzip reports whether the body will be gzip compressed.
func (r *Response) Gzip() bool { return r.gzip }

// Closed reports whether the response has been sent.
func (r *Response) Closed() bool { return r.closed }

// BytesWritten returns how many bytes were written to the output.
func (r *Response) BytesWritten() int64 { return r.written }

// Send writes body as the response. Content-Length is the UTF-16 code unit
// count of body, which differs from the byte count for non-ASCII text.
func (r *Response) Send(body string) error {
	return r.send([]byte(body), utf16Len(body))
}

// SendBytes writes body as the response with a byte-accurate Content-Length.
func (r *Response) SendBytes(body []byte) error {
	return r.send(body, len(body))
}

// SendStream buffers src completely and writes it as the response body.
// A nil src sends an empty body. src is closed when it is an io.Closer.
func (r *Response) SendStream(src io.Reader) error {
	if r.closed {
		return ErrResponseClosed
	}
	var body []byte
	if src != nil {
		if c, ok := src.(io.Closer); ok {
			defer c.Close()
		}
		var err error
		body, err = io.ReadAll(src)
		if err != nil {
			r.finish()
			return fmt.Errorf("failed to read response body: %w", err)
		}
	}
	return r.send(body, len(body))
}

// Redirect writes a 302 (or 301 when permanent) status line and a Location
// header. Nothing else is written, not even the blank line ending the head.
func (r *Response) Redirect(url string, permanent bool) error {
	if r.closed {
		return ErrResponseClosed
	}
	r.status = StatusFound
	if permanent {
		r.status = StatusMovedPermanently
	}
	r.header.Set("Location", url)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HTTP/1.1 %d\r\n", r.status)
	fmt.Fprintf(&buf, "location: %s\r\n", url)
	return r.flush(&buf)
}

func (r *Response) send(body []byte, contentLength int) error {
	if r.closed {
		return ErrResponseClosed
	}
	r.header.Set("Connection", "keep-alive")
	if r.gzip {
		r.header.Set("Content-Encoding", "gzip")
	}
	r.header.Set("Content-Length", strconv.Itoa(contentLength))

	var buf bytes.Buffer
	r.writeHead(&buf)
	if err := r.writeBody(&buf, body); err != nil {
		r.finish()
		return err
	}
	return r.flush(&buf)
}

func (r *Response) writeHead(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "HTTP/1.1 %d\r\n", r.status)
	r.header.Each(func(key, value string) {
		buf.WriteString(key)
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteString("\r\n")
	})
	buf.WriteString("\r\n")
}

func (r *Response) writeBody(buf *bytes.Buffer, body []byte) error {
	if !r.gzip {
		buf.Write(body)
		return nil
	}
	zw := gzip.NewWriter(buf)
	if _, err := zw.Write(body); err != nil {
		return fmt.Errorf("failed to compress response body: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}

// flush writes buf to the output, closes the output and marks the response
// closed regardless of write errors.
func (r *Response) flush(buf *bytes.Buffer) error {
	n, err := buf.WriteTo(r.out)
	r.written += n
	closeErr := r.finish()
	if err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close response output: %w", closeErr)
	}
	return nil
}

func (r *Response) finish() error {
	r.closed = true
	if c, ok := r.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func utf16Len(s string) int {
	n := 0
	for _, c := range s {
		n += utf16.RuneLen(c)
	}
	return n
}
