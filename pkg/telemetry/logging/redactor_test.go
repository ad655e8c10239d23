package logging

import (
	"errors"
	"log/slog"
	"reflect"
	"testing"

	"mercator-hq/lantern/pkg/config"
)

func newRedactor(t *testing.T, custom ...config.RedactPattern) *Redactor {
	t.Helper()
	r, err := NewRedactor(custom)
	if err != nil {
		t.Fatalf("NewRedactor() error = %v", err)
	}
	return r
}

func TestRedactString(t *testing.T) {
	r := newRedactor(t)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"no pii", "GET /index.html", "GET /index.html"},
		{"ipv4", "peer 192.168.0.14 closed", "peer 192.*.*.* closed"},
		{"ipv4 with port", "127.0.0.1:8080", "127.*.*.*:8080"},
		{"ipv6", "2001:0db8:85a3:0000:0000:8a2e:0370:7334", "****:****:****:****:****:****:****:****"},
		{"bearer", "authorization: Bearer abc.def-ghi", "authorization: Bearer ***"},
		{"basic", "Basic dXNlcjpwYXNz", "Basic ***"},
		{"password", "/login?user=a&password=s3cret&x=1", "/login?user=a&password=***&x=1"},
		{"email", "mail ann@example.org", "mail a***@example.org"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactString_CustomPattern(t *testing.T) {
	r := newRedactor(t, config.RedactPattern{
		Name:        "session",
		Pattern:     `sess-[a-z0-9]+`,
		Replacement: "[SESSION]",
	})

	if got := r.RedactString("cookie sess-ab12"); got != "cookie [SESSION]" {
		t.Errorf("got %q", got)
	}
}

func TestNewRedactor_InvalidPattern(t *testing.T) {
	_, err := NewRedactor([]config.RedactPattern{{Name: "bad", Pattern: "[", Replacement: "x"}})
	if err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestRedactArgs(t *testing.T) {
	r := newRedactor(t)

	got := r.RedactArgs("remote", "10.0.0.7", "token", "abcdefgh", "count", 3, "cookie", "ab")
	want := []any{"remote", "10.*.*.*", "token", "abcd***", "count", 3, "cookie", "***"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RedactArgs() = %v, want %v", got, want)
	}
}

func TestRedactAttr(t *testing.T) {
	r := newRedactor(t)

	tests := []struct {
		name string
		attr slog.Attr
		want slog.Attr
	}{
		{
			name: "string value",
			attr: slog.String("remote", "10.0.0.1"),
			want: slog.String("remote", "10.*.*.*"),
		},
		{
			name: "sensitive key",
			attr: slog.String("Authorization", "Basic xyz"),
			want: slog.String("Authorization", "Basi***"),
		},
		{
			name: "non string sensitive value",
			attr: slog.Int("api_key", 12345),
			want: slog.String("api_key", "***"),
		},
		{
			name: "error value",
			attr: slog.Any("error", errors.New("dial 10.2.3.4: refused")),
			want: slog.String("error", "dial 10.*.*.*: refused"),
		},
		{
			name: "int untouched",
			attr: slog.Int("status", 404),
			want: slog.Int("status", 404),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RedactAttr(tt.attr); !got.Equal(tt.want) {
				t.Errorf("RedactAttr() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRedactAttr_Group(t *testing.T) {
	r := newRedactor(t)

	got := r.RedactAttr(slog.Group("peer", slog.String("addr", "10.0.0.1"), slog.Int("port", 80)))
	want := slog.Group("peer", slog.String("addr", "10.*.*.*"), slog.Int("port", 80))
	if !got.Equal(want) {
		t.Errorf("RedactAttr() = %v, want %v", got, want)
	}
}

func TestRedactAttr_NilRedactor(t *testing.T) {
	var r *Redactor
	a := slog.String("remote", "10.0.0.1")
	if got := r.RedactAttr(a); !got.Equal(a) {
		t.Errorf("expected attribute unchanged, got %v", got)
	}
	if got := r.RedactString("10.0.0.1"); got != "10.0.0.1" {
		t.Errorf("expected string unchanged, got %q", got)
	}
}

func TestRedactHelpers(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"email", RedactEmail, "john@example.com", "j***@example.com"},
		{"email no user", RedactEmail, "@example.com", "***@example.com"},
		{"email invalid", RedactEmail, "nobody", "nobody"},
		{"ipv4", RedactIPv4, "172.16.4.1", "172.*.*.*"},
		{"ipv4 invalid", RedactIPv4, "localhost", "localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
