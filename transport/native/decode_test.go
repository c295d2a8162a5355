package native

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watt-toolkit/osrv/runtimectx"
)

func TestHTTPVersionMapsProtoStrings(t *testing.T) {
	assert.Equal(t, runtimectx.HTTPVersion2, httpVersion("HTTP/2.0"))
	assert.Equal(t, runtimectx.HTTPVersion2, httpVersion("HTTP/2"))
	assert.Equal(t, runtimectx.HTTPVersion10, httpVersion("HTTP/1.0"))
	assert.Equal(t, runtimectx.HTTPVersion11, httpVersion("HTTP/1.1"))
	assert.Equal(t, runtimectx.HTTPVersion11, httpVersion("garbage"))
}

func TestClientIPFallsBackToRemoteAddrWhenNotTrustingProxy(t *testing.T) {
	r := &http.Request{
		RemoteAddr: "203.0.113.5:54321",
		Header:     http.Header{"X-Forwarded-For": {"198.51.100.9"}},
	}
	assert.Equal(t, "203.0.113.5", clientIP(r, false))
}

func TestClientIPHonorsForwardedForWhenTrustingProxy(t *testing.T) {
	r := &http.Request{
		RemoteAddr: "10.0.0.1:1234",
		Header:     http.Header{"X-Forwarded-For": {"198.51.100.9, 10.0.0.1"}},
	}
	assert.Equal(t, "198.51.100.9", clientIP(r, true))
}

func TestClientIPFallsBackToRealIPWhenForwardedForAbsent(t *testing.T) {
	r := &http.Request{
		RemoteAddr: "10.0.0.1:1234",
		Header:     http.Header{"X-Real-Ip": {"198.51.100.7"}},
	}
	assert.Equal(t, "198.51.100.7", clientIP(r, true))
}

func TestClientIPHandlesRemoteAddrWithoutPort(t *testing.T) {
	r := &http.Request{RemoteAddr: "not-a-host-port", Header: http.Header{}}
	assert.Equal(t, "not-a-host-port", clientIP(r, false))
}

func TestAssembleURLUsesHTTPSForTLSEnabled(t *testing.T) {
	u, err := url.Parse("/foo?bar=1")
	require.NoError(t, err)
	r := &http.Request{URL: u, Host: "example.test"}

	assembled := assembleURL(r, true, "", "0.0.0.0:3000")
	assert.Equal(t, "https", assembled.Scheme)
	assert.Equal(t, "example.test", assembled.Host)
	assert.Equal(t, "/foo", assembled.Path)
	assert.Equal(t, "bar=1", assembled.RawQuery)
}

func TestAssembleURLFallsBackToURLHostForAbsoluteForm(t *testing.T) {
	u, err := url.Parse("http://proxy-target.test/path")
	require.NoError(t, err)
	r := &http.Request{URL: u, Host: ""}

	assembled := assembleURL(r, false, "", "0.0.0.0:3000")
	assert.Equal(t, "proxy-target.test", assembled.Host)
	assert.Equal(t, "http", assembled.Scheme)
}

func TestAssembleURLSubstitutesConfiguredHostnameForWildcardBind(t *testing.T) {
	u, err := url.Parse("/foo")
	require.NoError(t, err)
	r := &http.Request{URL: u, Host: ""}

	assembled := assembleURL(r, false, "api.example.test", "0.0.0.0:8080")
	assert.Equal(t, "api.example.test:8080", assembled.Host)
}

func TestAssembleURLSubstitutesConfiguredHostnameForIPv6WildcardBind(t *testing.T) {
	u, err := url.Parse("/foo")
	require.NoError(t, err)
	r := &http.Request{URL: u, Host: ""}

	assembled := assembleURL(r, false, "api.example.test", "[::]:8080")
	assert.Equal(t, "api.example.test:8080", assembled.Host)
}

func TestAssembleURLFallsBackToBoundAddrOnMalformedHostHeader(t *testing.T) {
	u, err := url.Parse("/foo")
	require.NoError(t, err)
	r := &http.Request{URL: u, Host: "[::1"}

	assembled := assembleURL(r, false, "", "127.0.0.1:3000")
	assert.Equal(t, "127.0.0.1:3000", assembled.Host)
}

func TestAssembleURLUsesBoundAddrDirectlyWhenHostnameNotWildcard(t *testing.T) {
	u, err := url.Parse("/foo")
	require.NoError(t, err)
	r := &http.Request{URL: u, Host: ""}

	assembled := assembleURL(r, false, "", "127.0.0.1:3000")
	assert.Equal(t, "127.0.0.1:3000", assembled.Host)
}

func TestProtocolForReflectsTLSFlag(t *testing.T) {
	assert.Equal(t, runtimectx.ProtocolHTTPS, protocolFor(true))
	assert.Equal(t, runtimectx.ProtocolHTTP, protocolFor(false))
}
