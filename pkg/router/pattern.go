package router

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// patternCache holds compiled full-path patterns keyed by the pattern text.
// A failed compilation is cached as well so it is reported on every request
// without recompiling.
var patternCache sync.Map // map[string]compiledPattern

type compiledPattern struct {
	re  *regexp.Regexp
	err error
}

// joinPattern concatenates a prefix and a fragment and collapses "//".
func joinPattern(prefix, fragment string) string {
	return strings.ReplaceAll(prefix+fragment, "//", "/")
}

// matchPath reports whether pattern matches the whole of path.
func matchPath(pattern, path string) (bool, error) {
	if cached, ok := patternCache.Load(pattern); ok {
		cp := cached.(compiledPattern)
		if cp.err != nil {
			return false, cp.err
		}
		return cp.re.MatchString(path), nil
	}

	re, err := regexp.Compile("^(?:" + pattern + ")$")
	cp := compiledPattern{re: re}
	if err != nil {
		cp = compiledPattern{err: fmt.Errorf("invalid route pattern %q: %w", pattern, err)}
	}
	patternCache.Store(pattern, cp)

	if cp.err != nil {
		return false, cp.err
	}
	return re.MatchString(path), nil
}
