package runtimectx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSnapshotsEnvDefensively(t *testing.T) {
	env := map[string]string{"FOO": "bar"}
	ctx := New("native", ProtocolHTTP, HTTPVersion11, false, "127.0.0.1:80", "10.0.0.1:1234", env, RawHandle{}, nil)

	env["FOO"] = "mutated"
	assert.Equal(t, "bar", ctx.Env["FOO"], "Context.Env must not reflect later mutation of the caller's map")
}

func TestNewHandlesNilEnv(t *testing.T) {
	ctx := New("native", ProtocolHTTP, HTTPVersion11, false, "", "", nil, RawHandle{}, nil)
	assert.NotNil(t, ctx.Env)
	assert.Empty(t, ctx.Env)
}

func TestRawHandleKindStringCoversEveryKind(t *testing.T) {
	cases := map[RawHandleKind]string{
		RawHandleNone:       "none",
		RawHandleNative:     "native",
		RawHandleNode:       "node",
		RawHandleBun:        "bun",
		RawHandleDeno:       "deno",
		RawHandleCloudflare: "cloudflare",
		RawHandleVercel:     "vercel",
		RawHandleNetlify:    "netlify",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}
