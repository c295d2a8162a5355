package bridge

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watt-toolkit/osrv/request"
	"github.com/watt-toolkit/osrv/response"
)

func strPtr(s string) *string { return &s }

func TestDecodeBuildsRequestFromEnvelope(t *testing.T) {
	bodyB64 := base64.StdEncoding.EncodeToString([]byte(`{"hello":"world"}`))
	env := Envelope{
		Request: RequestPayload{
			URL:        "https://example.test/path?x=1",
			Method:     "post",
			Headers:    [][2]string{{"Content-Type", "application/json"}},
			BodyBase64: &bodyB64,
		},
		Runtime: RuntimePayload{
			Provider:    "cloudflare",
			Runtime:     "workerd",
			Protocol:    "https",
			HTTPVersion: "1.1",
			TLS:         true,
			IP:          strPtr("198.51.100.1"),
			RequestID:   strPtr("req-123"),
			Env:         map[string]string{"FOO": "bar"},
		},
		Context: map[string]any{"traceId": "abc"},
	}

	req, err := decode(env, nil)
	require.NoError(t, err)

	assert.Equal(t, "POST", req.Method())
	assert.Equal(t, "https", req.URL().Scheme)
	assert.Equal(t, "example.test", req.URL().Host)
	assert.Equal(t, "application/json", req.Headers().Get("content-type"))
	assert.Equal(t, "198.51.100.1", req.IP())
	assert.Equal(t, "workerd", req.Runtime().Name)
	assert.True(t, req.Runtime().TLS)

	v, ok := req.Get("traceId")
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	raw, err := req.Body().ReadAll()
	require.NoError(t, err)
	assert.JSONEq(t, `{"hello":"world"}`, string(raw))
}

func TestDecodeWithNoBodyYieldsEmptyBody(t *testing.T) {
	env := Envelope{
		Request: RequestPayload{URL: "http://example.test/", Method: "GET"},
		Runtime: RuntimePayload{Provider: "node", Runtime: "node"},
	}
	req, err := decode(env, nil)
	require.NoError(t, err)

	raw, err := req.Body().ReadAll()
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestEncodeBase64sResponseBody(t *testing.T) {
	resp := response.Text("hello")
	env, err := encode(resp)
	require.NoError(t, err)

	require.NotNil(t, env.BodyBase64)
	raw, err := base64.StdEncoding.DecodeString(*env.BodyBase64)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(raw))
	assert.Equal(t, 200, env.Status)
}

func TestEncodeOmitsBodyBase64WhenBodyEmpty(t *testing.T) {
	env, err := encode(response.Empty(204))
	require.NoError(t, err)
	assert.Nil(t, env.BodyBase64)
}

func TestTransportInvokeRoundTrips(t *testing.T) {
	tr := New(nil)
	_, err := tr.Bind(context.Background(), func(ctx context.Context, req *request.Request) *response.Response {
		return response.Text("pong:" + req.Method())
	})
	require.NoError(t, err)

	env := Envelope{
		Request: RequestPayload{URL: "http://example.test/", Method: "GET"},
		Runtime: RuntimePayload{Provider: "node", Runtime: "node"},
	}
	respEnv, err := tr.Invoke(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, 200, respEnv.Status)

	raw, err := base64.StdEncoding.DecodeString(*respEnv.BodyBase64)
	require.NoError(t, err)
	assert.Equal(t, "pong:GET", string(raw))
}

func TestTransportInvokeFailsWhenNotBound(t *testing.T) {
	tr := New(nil)
	_, err := tr.Invoke(context.Background(), Envelope{})
	assert.Error(t, err)
}

func TestTransportInvokeFailsAfterClose(t *testing.T) {
	tr := New(nil)
	_, err := tr.Bind(context.Background(), func(ctx context.Context, req *request.Request) *response.Response {
		return response.Empty(200)
	})
	require.NoError(t, err)
	require.NoError(t, tr.Close(context.Background(), false))

	_, err = tr.Invoke(context.Background(), Envelope{
		Request: RequestPayload{URL: "http://example.test/", Method: "GET"},
	})
	assert.Error(t, err)
}

func TestInvokeJSONRoundTrips(t *testing.T) {
	tr := New(nil)
	_, err := tr.Bind(context.Background(), func(ctx context.Context, req *request.Request) *response.Response {
		return response.Empty(200)
	})
	require.NoError(t, err)

	reqJSON := []byte(`{"request":{"url":"http://example.test/","method":"GET","headers":[]},"runtime":{"provider":"node","runtime":"node"}}`)
	respJSON, err := tr.InvokeJSON(context.Background(), reqJSON)
	require.NoError(t, err)
	assert.Contains(t, string(respJSON), `"status":200`)
}

func TestBindReportsWaitUntilOnlyWhenSinkSupplied(t *testing.T) {
	tr := New(nil)
	caps, err := tr.Bind(context.Background(), func(ctx context.Context, req *request.Request) *response.Response {
		return response.Empty(200)
	})
	require.NoError(t, err)
	assert.False(t, caps.WaitUntil)

	trWithSink := New(func(task func(context.Context) error) {})
	caps, err = trWithSink.Bind(context.Background(), func(ctx context.Context, req *request.Request) *response.Response {
		return response.Empty(200)
	})
	require.NoError(t, err)
	assert.True(t, caps.WaitUntil)
}
