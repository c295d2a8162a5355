package ws

import (
	"net/http"
	"strings"

	"github.com/watt-toolkit/osrv/request"
	"github.com/watt-toolkit/osrv/runtimectx"
	"github.com/watt-toolkit/osrv/transport/native"
)

func headerContainsToken(h http.Header, name, token string) bool {
	for _, v := range h.Values(name) {
		for _, part := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
	}
	return false
}

// Upgrade performs the RFC 6455 handshake on req and returns a live
// Handle, per spec.md §4.4. It only supports the native transport (the
// bridge transport signals WebSocket upgrades to the foreign host via
// response headers instead, per spec.md §6.3, and never hijacks a
// connection directly).
func Upgrade(req *request.Request, limits Limits) (*Handle, error) {
	if req.WebSocketUpgraded() {
		return nil, ErrAlreadyUpgraded
	}

	rt := req.Runtime()
	if rt == nil || rt.Raw.Kind != runtimectx.RawHandleNative {
		return nil, ErrUnsupportedTransport
	}
	raw, ok := rt.Raw.Payload.(native.RawHandle)
	if !ok {
		return nil, ErrUnsupportedTransport
	}

	r := raw.Request
	w := raw.ResponseWriter

	if r.Method != http.MethodGet {
		return nil, ErrNotUpgradeRequest
	}
	if !headerContainsToken(r.Header, "Connection", "upgrade") || !headerContainsToken(r.Header, "Upgrade", "websocket") {
		return nil, ErrNotUpgradeRequest
	}
	if r.Header.Get("Sec-WebSocket-Version") != "13" {
		return nil, ErrUnsupportedVersion
	}
	key := r.Header.Get("Sec-WebSocket-Key")
	if key == "" {
		return nil, ErrMissingKey
	}

	hj, ok := w.(http.Hijacker)
	if !ok {
		return nil, ErrCannotHijack
	}
	conn, rw, err := hj.Hijack()
	if err != nil {
		return nil, err
	}

	accept := computeAcceptKey(key)
	response := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + accept + "\r\n\r\n"

	if _, err := rw.WriteString(response); err != nil {
		conn.Close()
		return nil, err
	}
	if err := rw.Flush(); err != nil {
		conn.Close()
		return nil, err
	}

	handle := newHandle(conn, limits)
	req.MarkWebSocketUpgraded(handle)
	return handle, nil
}
