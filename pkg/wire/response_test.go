package wire

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// closeRecorder is an in-memory connection output.
type closeRecorder struct {
	bytes.Buffer
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }

// splitResponse separates head and body of a serialized response.
func splitResponse(t *testing.T, raw []byte) (string, []byte) {
	t.Helper()
	i := bytes.Index(raw, []byte("\r\n\r\n"))
	if i < 0 {
		t.Fatalf("response has no header terminator: %q", raw)
	}
	return string(raw[:i]), raw[i+4:]
}

func TestResponse_Defaults(t *testing.T) {
	resp := NewResponse(&closeRecorder{})

	if resp.Status() != StatusOK {
		t.Errorf("expected default status %d, got %d", StatusOK, resp.Status())
	}
	if resp.ContentType() != ContentTypeText {
		t.Errorf("expected default content type %q, got %q", ContentTypeText, resp.ContentType())
	}
	if resp.Closed() {
		t.Error("expected new response to be open")
	}
}

func TestResponse_SendWireFormat(t *testing.T) {
	out := &closeRecorder{}
	resp := NewResponse(out)
	resp.Header().Set("X-Trace", "abc")
	resp.Header().Set("X-Empty", "")

	if err := resp.Send("hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "HTTP/1.1 200\r\n" +
		"content-type: text/plain\r\n" +
		"x-trace: abc\r\n" +
		"x-empty: \r\n" +
		"connection: keep-alive\r\n" +
		"content-length: 5\r\n" +
		"\r\n" +
		"hello"
	if out.String() != want {
		t.Errorf("unexpected wire output:\nwant %q\ngot  %q", want, out.String())
	}
	if out.closed != 1 {
		t.Errorf("expected output closed once, got %d", out.closed)
	}
	if !resp.Closed() {
		t.Error("expected response to be closed after send")
	}
	if resp.BytesWritten() != int64(len(want)) {
		t.Errorf("expected %d bytes written, got %d", len(want), resp.BytesWritten())
	}
}

func TestResponse_ContentLengthCountsCodeUnits(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "ascii", body: "abc", want: "3"},
		{name: "latin accents", body: "héllo", want: "5"},
		{name: "astral plane", body: "a😀", want: "3"},
		{name: "empty", body: "", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &closeRecorder{}
			resp := NewResponse(out)
			if err := resp.Send(tt.body); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := resp.Header().Get("content-length"); got != tt.want {
				t.Errorf("expected content-length %s, got %s", tt.want, got)
			}
			_, body := splitResponse(t, out.Bytes())
			if string(body) != tt.body {
				t.Errorf("expected body %q, got %q", tt.body, body)
			}
		})
	}
}

func TestResponse_SendStream(t *testing.T) {
	out := &closeRecorder{}
	resp := NewResponse(out)
	src := io.NopCloser(strings.NewReader("{'message': 'Hello'}"))

	if err := resp.SendStream(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	head, body := splitResponse(t, out.Bytes())
	if string(body) != "{'message': 'Hello'}" {
		t.Errorf("unexpected body %q", body)
	}
	if !strings.Contains(head, "content-length: 20") {
		t.Errorf("expected byte count in head, got %q", head)
	}
}

func TestResponse_SendNilStream(t *testing.T) {
	out := &closeRecorder{}
	resp := NewResponse(out)

	if err := resp.SendStream(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	head, body := splitResponse(t, out.Bytes())
	if len(body) != 0 {
		t.Errorf("expected empty body, got %q", body)
	}
	if !strings.Contains(head, "content-length: 0") {
		t.Errorf("expected zero content length, got %q", head)
	}
	if !resp.Closed() {
		t.Error("expected response to be closed")
	}
}

func TestResponse_Gzip(t *testing.T) {
	const message = "{'message': 'Hello'}"

	plainOut := &closeRecorder{}
	plain := NewResponse(plainOut)
	if err := plain.Send(message); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, plainBody := splitResponse(t, plainOut.Bytes())

	gzOut := &closeRecorder{}
	gz := NewResponse(gzOut)
	gz.SetGzip(true)
	if err := gz.Send(message); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	head, gzBody := splitResponse(t, gzOut.Bytes())

	if !strings.Contains(head, "content-encoding: gzip") {
		t.Errorf("expected content-encoding header, got %q", head)
	}
	zr, err := gzip.NewReader(bytes.NewReader(gzBody))
	if err != nil {
		t.Fatalf("body is not gzip: %v", err)
	}
	decoded, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("failed to decompress: %v", err)
	}
	if !bytes.Equal(decoded, plainBody) {
		t.Errorf("decompressed body %q differs from plain body %q", decoded, plainBody)
	}
}

func TestResponse_Redirect(t *testing.T) {
	tests := []struct {
		name      string
		permanent bool
		status    int
	}{
		{name: "temporary", permanent: false, status: StatusFound},
		{name: "permanent", permanent: true, status: StatusMovedPermanently},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &closeRecorder{}
			resp := NewResponse(out)
			if err := resp.Redirect("https://example.com/next", tt.permanent); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if resp.Status() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, resp.Status())
			}
			if resp.Header().Get("Location") != "https://example.com/next" {
				t.Errorf("unexpected location %q", resp.Header().Get("Location"))
			}
			want := "HTTP/1.1 " + map[bool]string{false: "302", true: "301"}[tt.permanent] + "\r\n" +
				"location: https://example.com/next\r\n"
			if out.String() != want {
				t.Errorf("expected %q, got %q", want, out.String())
			}
			if !resp.Closed() || out.closed != 1 {
				t.Error("expected redirect to close the response")
			}
		})
	}
}

func TestResponse_SecondSendIsRejected(t *testing.T) {
	out := &closeRecorder{}
	resp := NewResponse(out)
	if err := resp.Send("first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	written := out.Len()

	if err := resp.Send("second"); !errors.Is(err, ErrResponseClosed) {
		t.Errorf("expected ErrResponseClosed, got %v", err)
	}
	if err := resp.Redirect("/x", false); !errors.Is(err, ErrResponseClosed) {
		t.Errorf("expected ErrResponseClosed on redirect, got %v", err)
	}
	if out.Len() != written {
		t.Errorf("expected no further output, got %d extra bytes", out.Len()-written)
	}
}

func TestResponse_WriteFailureStillCloses(t *testing.T) {
	resp := NewResponse(failingWriter{})

	if err := resp.Send("x"); err == nil {
		t.Error("expected write error")
	}
	if !resp.Closed() {
		t.Error("expected response to be closed after failed write")
	}
}
