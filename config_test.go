package osrv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveConfigAppliesBuiltInDefaults(t *testing.T) {
	cfg := ResolveConfig(Config{}, nil)

	assert.Equal(t, DefaultHostname, cfg.Hostname)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr)
	assert.Equal(t, "http", cfg.Protocol)
	assert.False(t, cfg.TLSEnabled)
	assert.EqualValues(t, DefaultMaxRequestBodyBytes, cfg.Limits.MaxRequestBodyBytes)
	assert.Equal(t, DefaultGracefulTimeout, cfg.GracefulShutdown.GracefulTimeout)
	assert.Nil(t, cfg.ErrorHandler, "ResolveConfig must leave ErrorHandler nil so Dispatch's IsProduction-aware fallback is reachable")
	assert.NotNil(t, cfg.Logger)
}

func TestResolveConfigExplicitFieldsWinOverEnviron(t *testing.T) {
	cfg := ResolveConfig(Config{Port: 9999}, map[string]string{"OSRV_PORT": "1111"})
	assert.Equal(t, 9999, cfg.Port)
}

func TestResolveConfigEnvironWinsOverDefaultWhenFieldUnset(t *testing.T) {
	cfg := ResolveConfig(Config{}, map[string]string{"OSRV_PORT": "1111"})
	assert.Equal(t, 1111, cfg.Port)
}

func TestResolveConfigDerivesHTTPSProtocolFromTLSMaterial(t *testing.T) {
	cfg := ResolveConfig(Config{
		TLS: TLSConfig{CertPEM: "cert", KeyPEM: "key"},
	}, nil)

	assert.True(t, cfg.TLSEnabled)
	assert.Equal(t, "https", cfg.Protocol)
}

func TestResolveConfigHTTPSProtocolForcesTLSEnabled(t *testing.T) {
	cfg := ResolveConfig(Config{Protocol: "https"}, nil)
	assert.True(t, cfg.TLSEnabled)
}

func TestResolveConfigWithProductionOverridesEnvironResolution(t *testing.T) {
	cfg := ResolveConfig(Config{}.WithProduction(true), map[string]string{"OSRV_ENV": "development"})
	assert.True(t, cfg.IsProduction)
}

func TestResolveConfigIsProductionFromEnvironWhenNotPinned(t *testing.T) {
	cfg := ResolveConfig(Config{}, map[string]string{"OSRV_ENV": "production"})
	assert.True(t, cfg.IsProduction)
}

func TestResolveConfigAddrDerivedFromHostnameAndPort(t *testing.T) {
	cfg := ResolveConfig(Config{Hostname: "127.0.0.1", Port: 4000}, nil)
	assert.Equal(t, "127.0.0.1:4000", cfg.Addr)
}
