package wire

import (
	"net/url"
	"strings"
)

// Param is a named parameter with its values in arrival order.
type Param struct {
	Key    string
	Values []string
}

// First returns the first value, or "" when the parameter has none.
func (p *Param) First() string {
	if p == nil || len(p.Values) == 0 {
		return ""
	}
	return p.Values[0]
}

// Params is an ordered multi-value parameter list. Keys are case-sensitive
// and keep the order in which they were first seen.
type Params struct {
	list  []*Param
	index map[string]int
}

// Get returns the parameter named key, or nil when absent.
func (p *Params) Get(key string) *Param {
	if p == nil || p.index == nil {
		return nil
	}
	i, ok := p.index[key]
	if !ok {
		return nil
	}
	return p.list[i]
}

// Values returns the values of key. The result is nil when key is absent.
func (p *Params) Values(key string) []string {
	if param := p.Get(key); param != nil {
		return param.Values
	}
	return nil
}

// First returns the first value of key, or "".
func (p *Params) First(key string) string {
	return p.Get(key).First()
}

// Has reports whether key was present, with or without a value.
func (p *Params) Has(key string) bool {
	return p.Get(key) != nil
}

// Keys returns the parameter names in first-seen order.
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, len(p.list))
	for i, param := range p.list {
		keys[i] = param.Key
	}
	return keys
}

// Len returns the number of distinct keys.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.list)
}

func (p *Params) entry(key string) *Param {
	if p.index == nil {
		p.index = make(map[string]int)
	}
	if i, ok := p.index[key]; ok {
		return p.list[i]
	}
	param := &Param{Key: key}
	p.index[key] = len(p.list)
	p.list = append(p.list, param)
	return param
}

// ParseParams parses an "a=1&a=2&b" style string.
//
// Each token is split on its first '=' (a leading '=' makes the whole token
// the key). Key-only tokens register the key without a value. Duplicate keys
// accumulate values. Values are percent-decoded; a value that fails to
// decode is kept raw.
func ParseParams(s string) *Params {
	params := &Params{}
	parseParamsInto(s, params)
	return params
}

func parseParamsInto(s string, params *Params) {
	if s == "" {
		return
	}
	for _, token := range strings.Split(s, "&") {
		if token == "" {
			continue
		}
		key, value, hasValue := token, "", false
		if i := strings.IndexByte(token, '='); i > 0 {
			key, value, hasValue = token[:i], token[i+1:], true
		}
		param := params.entry(key)
		if !hasValue {
			continue
		}
		param.Values = append(param.Values, decodeValue(value))
	}
}

func decodeValue(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
