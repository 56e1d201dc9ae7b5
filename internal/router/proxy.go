// Package router forwards admitted requests to the backend service that owns
// their path.
package router

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"sort"

	"github.com/modernbank/api-gateway/internal/shared"
	"go.uber.org/zap"
)

type errHolderKey struct{}

// errHolder carries a transport failure out of the reverse proxy's error
// handler back to Forward
type errHolder struct {
	err error
}

type upstream struct {
	prefix string
	proxy  *httputil.ReverseProxy
}

// Proxy forwards requests to the route with the longest matching prefix
type Proxy struct {
	upstreams []upstream
	logger    *zap.Logger
}

// NewProxy creates a Proxy for routes. A nil transport uses http.DefaultTransport.
func NewProxy(routes []Route, transport http.RoundTripper, logger *zap.Logger) (*Proxy, error) {
	if transport == nil {
		transport = http.DefaultTransport
	}

	p := &Proxy{logger: logger}
	for _, route := range routes {
		if route.Target == nil {
			return nil, fmt.Errorf("route %s has no target", route.Prefix)
		}
		target := route.Target
		p.upstreams = append(p.upstreams, upstream{
			prefix: route.Prefix,
			proxy: &httputil.ReverseProxy{
				Rewrite: func(pr *httputil.ProxyRequest) {
					pr.SetURL(target)
					pr.SetXForwarded()
				},
				Transport:    transport,
				ErrorHandler: captureError,
				ErrorLog:     zap.NewStdLog(logger.Named("reverse_proxy")),
			},
		})
	}

	sort.SliceStable(p.upstreams, func(i, j int) bool {
		return len(p.upstreams[i].prefix) > len(p.upstreams[j].prefix)
	})
	return p, nil
}

// Forward proxies r to its backend. It fails with a 404 StatusError when no
// route owns the path and with an UpstreamError when the backend cannot be
// reached.
func (p *Proxy) Forward(w http.ResponseWriter, r *http.Request) error {
	up, ok := p.match(r.URL.Path)
	if !ok {
		return shared.NewStatusError(http.StatusNotFound, "")
	}

	holder := &errHolder{}
	up.proxy.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), errHolderKey{}, holder)))
	if holder.err != nil {
		return &shared.UpstreamError{Route: up.prefix, Err: holder.err}
	}
	return nil
}

// RouteCount returns the number of configured routes
func (p *Proxy) RouteCount() int {
	return len(p.upstreams)
}

func (p *Proxy) match(path string) (upstream, bool) {
	for _, up := range p.upstreams {
		if covers(up.prefix, path) {
			return up, true
		}
	}
	return upstream{}, false
}

func captureError(w http.ResponseWriter, r *http.Request, err error) {
	if holder, ok := r.Context().Value(errHolderKey{}).(*errHolder); ok {
		holder.err = err
		return
	}
	w.WriteHeader(http.StatusBadGateway)
}
