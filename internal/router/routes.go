package router

import (
	"fmt"
	"net/url"
	"strings"
)

// Route sends every request whose path falls under Prefix to Target
type Route struct {
	Prefix string
	Target *url.URL
}

// ParseRoutes parses a comma separated list of prefix=url pairs, for example
// "/account=http://account:8080,/payments=http://payments:8080".
func ParseRoutes(raw string) ([]Route, error) {
	var routes []Route
	seen := make(map[string]struct{})

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		prefix, target, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("route %q: expected prefix=url", entry)
		}
		prefix = strings.TrimSpace(prefix)
		target = strings.TrimSpace(target)

		if !strings.HasPrefix(prefix, "/") {
			return nil, fmt.Errorf("route %q: prefix must start with /", entry)
		}
		if _, dup := seen[prefix]; dup {
			return nil, fmt.Errorf("route %q: duplicate prefix", entry)
		}

		u, err := url.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", entry, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("route %q: target must be an absolute url", entry)
		}

		seen[prefix] = struct{}{}
		routes = append(routes, Route{Prefix: prefix, Target: u})
	}
	return routes, nil
}

// covers reports whether path is prefix itself or lies below it
func covers(prefix, path string) bool {
	if prefix == "/" {
		return true
	}
	prefix = strings.TrimSuffix(prefix, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
