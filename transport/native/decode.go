package native

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/watt-toolkit/osrv/body"
	"github.com/watt-toolkit/osrv/headers"
	"github.com/watt-toolkit/osrv/request"
	"github.com/watt-toolkit/osrv/runtimectx"
)

// RawHandle is the Payload carried by runtimectx.RawHandleNative: the
// concrete *http.Request and http.ResponseWriter for this connection.
// Nothing outside this package and the ws package type-switches on it
// (spec.md §3: "raw handle is opaque outside the transport that made it").
type RawHandle struct {
	Request        *http.Request
	ResponseWriter http.ResponseWriter
}

func httpVersion(proto string) runtimectx.HTTPVersion {
	switch proto {
	case "HTTP/2.0", "HTTP/2":
		return runtimectx.HTTPVersion2
	case "HTTP/1.0":
		return runtimectx.HTTPVersion10
	default:
		return runtimectx.HTTPVersion11
	}
}

// clientIP resolves the caller's address per spec.md §4.2: honor
// X-Forwarded-For / X-Real-IP only when the transport is configured to
// trust an upstream proxy, otherwise fall back to the TCP peer address.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
				return first
			}
		}
		if xr := r.Header.Get("X-Real-IP"); xr != "" {
			return strings.TrimSpace(xr)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// assembleURL rebuilds an absolute URL from a wire-relative *http.Request,
// per spec.md §4.2's URL assembly rule: prefer the request-line's own
// absolute-form URL (proxies sometimes send one); otherwise combine the
// resolved scheme with the Host header, falling back to the bound address
// (substituting the configured hostname when bound to a wildcard address)
// if the Host header is missing or malformed.
func assembleURL(r *http.Request, tlsEnabled bool, hostname, addr string) *url.URL {
	scheme := "http"
	if tlsEnabled || r.TLS != nil {
		scheme = "https"
	}

	u := *r.URL
	u.Scheme = scheme

	if r.URL.IsAbs() && r.URL.Host != "" {
		return &u
	}

	host := validHost(r.Host)
	if host == "" {
		host = boundHost(hostname, addr)
	}
	u.Host = host
	return &u
}

// validHost returns host unchanged if it round-trips through URL parsing
// (catching unbalanced IPv6 brackets and other malformed Host headers), or
// "" if it doesn't.
func validHost(host string) string {
	if host == "" {
		return ""
	}
	if _, err := url.Parse("http://" + host + "/"); err != nil {
		return ""
	}
	return host
}

// boundHost derives a fallback authority from the transport's bind address,
// substituting the configured public hostname for a wildcard bind address
// (0.0.0.0 or ::) per spec.md §4.2.
func boundHost(hostname, addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host, port = addr, ""
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = hostname
	}
	if port == "" {
		return host
	}
	return net.JoinHostPort(host, port)
}

func protocolFor(tls bool) runtimectx.Protocol {
	if tls {
		return runtimectx.ProtocolHTTPS
	}
	return runtimectx.ProtocolHTTP
}

// decode converts one *http.Request into the semantic request.Request,
// building the ordered header multimap, wrapping the body behind a
// MaxRequestBodyBytes ceiling, and populating a fully-computed
// RuntimeContext before the request is ever observed by middleware
// (spec.md §9's "no lazy hydration" redesign note).
func (t *Transport) decode(w http.ResponseWriter, r *http.Request) *request.Request {
	h := headers.New()
	for name, values := range r.Header {
		for _, v := range values {
			h.Add(name, v)
		}
	}
	if r.Host != "" && h.Get("host") == "" {
		h.Set("Host", r.Host)
	}

	var b *body.Body
	if request.AllowsBody(r.Method) && r.Body != nil {
		b = body.New(body.NewLimitedReader(r.Body, t.opts.MaxRequestBodyBytes))
	} else {
		b = body.New(nil)
	}

	local := ""
	if addr, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		local = addr.String()
	}

	tls := t.opts.TLSEnabled || r.TLS != nil
	rt := runtimectx.New(
		"native",
		protocolFor(tls),
		httpVersion(r.Proto),
		tls,
		local,
		r.RemoteAddr,
		t.envSnapshot,
		runtimectx.RawHandle{Kind: runtimectx.RawHandleNative, Payload: RawHandle{Request: r, ResponseWriter: w}},
		nil,
	)

	return request.New(assembleURL(r, t.opts.TLSEnabled, t.opts.Hostname, t.opts.Addr), r.Method, h, b, rt, clientIP(r, t.opts.TrustProxy))
}
