package wire

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
)

const (
	// DefaultMaxRequestBytes bounds how many bytes ReadRequest buffers.
	DefaultMaxRequestBytes = 1 << 20

	// ContentTypeFormURLEncoded is the only body encoding parsed into form
	// parameters.
	ContentTypeFormURLEncoded = "application/x-www-form-urlencoded"

	readChunkSize = 4096
)

// ErrRequestTooLarge is returned when a peer sends more than the configured
// maximum number of bytes.
var ErrRequestTooLarge = errors.New("request exceeds maximum size")

// Request is a parsed HTTP request. It is immutable once parsed.
type Request struct {
	method     string
	path       string
	rawQuery   string
	header     *Header
	params     *Params
	formParams *Params
	body       string
	clientIP   string
}

// ReadRequest drains the bytes currently sent by the peer and parses them.
//
// Reading stops at EOF, or after a short read once the buffer holds a
// complete header block and, when Content-Length is announced, that many
// body bytes. A read timeout after some bytes arrived ends the read pass and
// the buffered bytes are parsed as they are.
func ReadRequest(r io.Reader, remote net.Addr, maxBytes int) (*Request, error) {
	raw, err := drain(r, maxBytes)
	if err != nil {
		return nil, err
	}
	req := ParseRequest(raw)
	req.clientIP = ClientIP(remote)
	return req, nil
}

// ParseRequest parses raw request bytes. It never fails; absent structure
// yields empty fields.
func ParseRequest(raw []byte) *Request {
	req := &Request{
		header:     NewHeader(),
		params:     &Params{},
		formParams: &Params{},
	}

	lines := strings.Split(strings.ReplaceAll(string(raw), "\r", ""), "\n")
	req.parseRequestLine(lines[0])

	bodyStart := len(lines)
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			bodyStart = i + 1
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		req.header.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if bodyStart < len(lines) {
		req.body = strings.TrimSpace(strings.Join(lines[bodyStart:], "\n"))
	}

	if req.method != "" && strings.EqualFold(req.header.Get("content-type"), ContentTypeFormURLEncoded) {
		parseParamsInto(req.body, req.formParams)
	}
	return req
}

func (r *Request) parseRequestLine(line string) {
	fields := strings.Split(strings.TrimSpace(line), " ")
	r.method = strings.TrimSpace(fields[0])
	if len(fields) < 2 {
		return
	}
	target := strings.TrimSpace(fields[1])
	path, query, _ := strings.Cut(target, "?")
	r.path = strings.TrimSpace(path)
	r.rawQuery = query
	parseParamsInto(query, r.params)
}

// Method returns the request method, e.g. "GET".
func (r *Request) Method() string { return r.method }

// Path returns the request path without the query string.
func (r *Request) Path() string { return r.path }

// RawQuery returns the undecoded query string.
func (r *Request) RawQuery() string { return r.rawQuery }

// Header returns the request headers.
func (r *Request) Header() *Header { return r.header }

// Params returns the query parameters.
func (r *Request) Params() *Params { return r.params }

// FormParams returns the url-encoded form parameters of the body.
func (r *Request) FormParams() *Params { return r.formParams }

// Body returns the trimmed request body.
func (r *Request) Body() string { return r.body }

// ClientIP returns the peer IP address without the port.
func (r *Request) ClientIP() string { return r.clientIP }

// ClientIP extracts the IP part of a peer address, dropping decoration such
// as a leading slash or IPv6 brackets and the port suffix.
func ClientIP(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	s := strings.ReplaceAll(addr.String(), "/", "")
	if host, _, err := net.SplitHostPort(s); err == nil {
		return host
	}
	if i := strings.LastIndexByte(s, ':'); i >= 0 && !strings.HasSuffix(s, "]") {
		s = s[:i]
	}
	return strings.Trim(s, "[]")
}

func drain(r io.Reader, maxBytes int) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestBytes
	}

	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.Read(chunk)
		buf.Write(chunk[:n])
		if buf.Len() > maxBytes {
			return nil, ErrRequestTooLarge
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf.Bytes(), nil
			}
			var netErr net.Error
			if buf.Len() > 0 && errors.As(err, &netErr) && netErr.Timeout() {
				return buf.Bytes(), nil
			}
			return nil, err
		}
		done, exact := complete(buf.Bytes())
		if done && (exact || n < len(chunk)) {
			return buf.Bytes(), nil
		}
	}
}

// complete reports whether b holds a full header block plus the announced
// Content-Length worth of body bytes. exact is set when nothing more can
// belong to the request: the announced length has arrived, or no length is
// announced and b ends with the header block. Without exact, a full chunk
// may be followed by more unannounced body.
func complete(b []byte) (done, exact bool) {
	head, bodyLen, ok := splitHead(b)
	if !ok {
		return false, false
	}
	for _, line := range strings.Split(strings.ReplaceAll(string(head), "\r", ""), "\n")[1:] {
		key, value, found := strings.Cut(line, ":")
		if !found || !strings.EqualFold(strings.TrimSpace(key), "content-length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return true, false
		}
		return bodyLen >= n, bodyLen >= n
	}
	return true, bodyLen == 0
}

func splitHead(b []byte) (head []byte, bodyLen int, ok bool) {
	if i := bytes.Index(b, []byte("\r\n\r\n")); i >= 0 {
		return b[:i], len(b) - i - 4, true
	}
	if i := bytes.Index(b, []byte("\n\n")); i >= 0 {
		return b[:i], len(b) - i - 2, true
	}
	return nil, 0, false
}
