package auth

import (
	"net/http"
	"path"
	"strings"

	"github.com/terraconstructs/skillshare/internal/config"
)

// Access marks a route as requiring authentication or not.
type Access int

const (
	// Protected routes require a valid bearer token. This is the default.
	Protected Access = iota
	// Public routes bypass authentication entirely.
	Public
)

func (a Access) String() string {
	if a == Public {
		return "public"
	}
	return "protected"
}

// Route is one entry of the dispatch table.
// Pattern segments: literal, "*" (exactly one segment) or a trailing "**"
// (zero or more segments). Method "*" matches any method.
type Route struct {
	Method  string
	Pattern string
	Access  Access
}

type compiledRoute struct {
	method   string
	segments []string
	access   Access
}

// RouteTable decides whether a request path needs authentication.
// It is an allow-list: only paths matched by a Public entry and by no
// Protected entry are public.
type RouteTable struct {
	routes []compiledRoute
}

// NewRouteTable compiles routes into a table.
func NewRouteTable(routes ...Route) *RouteTable {
	t := &RouteTable{routes: make([]compiledRoute, 0, len(routes))}
	for _, r := range routes {
		method := strings.ToUpper(r.Method)
		if method == "" {
			method = "*"
		}
		t.routes = append(t.routes, compiledRoute{
			method:   method,
			segments: splitPath(r.Pattern),
			access:   r.Access,
		})
	}
	return t
}

// DefaultRoutes returns the dispatch table for the given content visibility.
func DefaultRoutes(visibility config.Visibility) *RouteTable {
	routes := []Route{
		{Method: "*", Pattern: "/api/auth/**", Access: Public},
		{Method: "*", Pattern: "/api/public/**", Access: Public},
		{Method: http.MethodGet, Pattern: "/uploads/**", Access: Public},
		{Method: http.MethodGet, Pattern: "/health", Access: Public},
		{Method: http.MethodOptions, Pattern: "/**", Access: Public},

		// Pinned so that "/api/posts/*" never makes them public.
		{Method: "*", Pattern: "/api/posts/feed", Access: Protected},
		{Method: "*", Pattern: "/api/posts/mine", Access: Protected},
	}

	if visibility == config.VisibilityPublic {
		routes = append(routes,
			Route{Method: http.MethodGet, Pattern: "/api/posts", Access: Public},
			Route{Method: http.MethodGet, Pattern: "/api/posts/*", Access: Public},
		)
	}

	return NewRouteTable(routes...)
}

// IsPublic reports whether method+path may be served without authentication.
// Paths that are not in canonical form are always protected.
func (t *RouteTable) IsPublic(method, rawPath string) bool {
	if t == nil || rawPath == "" {
		return false
	}
	if cleaned := path.Clean(rawPath); cleaned != rawPath && cleaned+"/" != rawPath {
		return false
	}

	method = strings.ToUpper(method)
	segments := splitPath(rawPath)

	public := false
	for _, r := range t.routes {
		if !methodMatches(r.method, method) || !segmentsMatch(r.segments, segments) {
			continue
		}
		if r.access == Protected {
			return false
		}
		public = true
	}
	return public
}

func methodMatches(pattern, method string) bool {
	if pattern == "*" || pattern == method {
		return true
	}
	return pattern == http.MethodGet && method == http.MethodHead
}

func segmentsMatch(pattern, segments []string) bool {
	for i, p := range pattern {
		if p == "**" {
			return true
		}
		if i >= len(segments) {
			return false
		}
		if p == "*" {
			if segments[i] == "" {
				return false
			}
			continue
		}
		if p != segments[i] {
			return false
		}
	}
	return len(pattern) == len(segments)
}

func splitPath(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
