// Package bridge implements the JSON wire envelope (spec.md §4.3, §6.3)
// that lets a foreign host runtime (Node, Bun, Deno, or an edge worker
// with no native socket API) invoke the same dispatch pipeline as the
// native transport, without ever hijacking a connection.
//
// Grounded on bolt/core/app.go's App/Context split (the request value
// is fully materialized before the handler runs) generalized to a
// deserialize-dispatch-serialize round trip instead of a live
// connection, per spec.md §9's redesign note on multi-runtime adapters.
package bridge

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/watt-toolkit/osrv/body"
	"github.com/watt-toolkit/osrv/headers"
	"github.com/watt-toolkit/osrv/request"
	"github.com/watt-toolkit/osrv/response"
	"github.com/watt-toolkit/osrv/runtimectx"
)

// UpgradeHintHeader is the implementation-defined header spec.md §6.3
// says signals a WebSocket upgrade over the bridge: a 101 response
// carrying this header (value "websocket") tells the host to complete
// the upgrade out-of-band and bind the socket id it associated with the
// request before dispatch.
const UpgradeHintHeader = "X-Osrv-Bridge-Upgrade"

// RequestPayload is the wire shape of the "request" object in the
// bridge envelope (spec.md §6.3).
type RequestPayload struct {
	URL        string      `json:"url"`
	Method     string      `json:"method"`
	Headers    [][2]string `json:"headers"`
	BodyBase64 *string     `json:"bodyBase64"`
}

// RuntimePayload is the wire shape of the "runtime" object.
type RuntimePayload struct {
	Provider      string            `json:"provider"`
	Runtime       string            `json:"runtime"`
	Protocol      string            `json:"protocol"`
	HTTPVersion   string            `json:"httpVersion"`
	TLS           bool              `json:"tls"`
	IP            *string           `json:"ip"`
	LocalAddress  *string           `json:"localAddress"`
	RemoteAddress *string           `json:"remoteAddress"`
	Env           map[string]string `json:"env"`
	RequestID     *string           `json:"requestId"`
}

// Envelope is the full inbound payload a host sends to invoke dispatch.
type Envelope struct {
	Request RequestPayload         `json:"request"`
	Runtime RuntimePayload         `json:"runtime"`
	Context map[string]any         `json:"context"`
}

// ResponseEnvelope is the outbound payload returned to the host.
type ResponseEnvelope struct {
	Status     int         `json:"status"`
	Headers    [][2]string `json:"headers"`
	BodyBase64 *string     `json:"bodyBase64"`
}

var providerToRawKind = map[string]runtimectx.RawHandleKind{
	"node":       runtimectx.RawHandleNode,
	"bun":        runtimectx.RawHandleBun,
	"deno":       runtimectx.RawHandleDeno,
	"cloudflare": runtimectx.RawHandleCloudflare,
	"vercel":     runtimectx.RawHandleVercel,
	"netlify":    runtimectx.RawHandleNetlify,
}

// decode turns an Envelope into a semantic request.Request, base64-
// decoding the body and building a fully-populated RuntimeContext before
// dispatch (spec.md §9: no lazy hydration, even across the bridge).
func decode(env Envelope, waitUntil runtimectx.WaitUntilFunc) (*request.Request, error) {
	u, err := parseURL(env.Request.URL)
	if err != nil {
		return nil, fmt.Errorf("bridge: parse request url: %w", err)
	}

	h := headers.FromPairs(env.Request.Headers)

	var b *body.Body
	if env.Request.BodyBase64 != nil {
		raw, err := base64.StdEncoding.DecodeString(*env.Request.BodyBase64)
		if err != nil {
			return nil, fmt.Errorf("bridge: decode bodyBase64: %w", err)
		}
		b = body.New(newByteReader(raw))
	}

	ip := ""
	if env.Runtime.IP != nil {
		ip = *env.Runtime.IP
	}
	local, remote := "", ""
	if env.Runtime.LocalAddress != nil {
		local = *env.Runtime.LocalAddress
	}
	if env.Runtime.RemoteAddress != nil {
		remote = *env.Runtime.RemoteAddress
	}

	protocol := runtimectx.ProtocolHTTP
	if env.Runtime.Protocol == "https" {
		protocol = runtimectx.ProtocolHTTPS
	}

	kind := providerToRawKind[env.Runtime.Provider]

	rt := runtimectx.New(
		env.Runtime.Runtime,
		protocol,
		runtimectx.HTTPVersion(env.Runtime.HTTPVersion),
		env.Runtime.TLS,
		local,
		remote,
		env.Runtime.Env,
		runtimectx.RawHandle{Kind: kind, Payload: env.Runtime.RequestID},
		waitUntil,
	)

	req := request.New(u, env.Request.Method, h, b, rt, ip)
	for k, v := range env.Context {
		req.Set(k, v)
	}
	return req, nil
}

// encode turns a response.Response into the outbound ResponseEnvelope,
// base64-encoding the body.
func encode(resp *response.Response) (ResponseEnvelope, error) {
	out := ResponseEnvelope{
		Status:  resp.Status(),
		Headers: resp.Headers().Pairs(),
	}
	if resp.Body() != nil {
		raw, err := resp.Body().ReadAll()
		if err != nil {
			return ResponseEnvelope{}, fmt.Errorf("bridge: read response body: %w", err)
		}
		if len(raw) > 0 {
			encoded := base64.StdEncoding.EncodeToString(raw)
			out.BodyBase64 = &encoded
		}
	}
	return out, nil
}

// MarshalResponse is a convenience wrapper for hosts that want raw JSON
// bytes rather than the struct form.
func MarshalResponse(resp *response.Response) ([]byte, error) {
	env, err := encode(resp)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}
