package envconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBoolishRecognizesTrueVariants(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "on", " On "} {
		assert.Equal(t, TriTrue, ParseBoolish(v), "input %q", v)
	}
}

func TestParseBoolishRecognizesFalseVariants(t *testing.T) {
	for _, v := range []string{"0", "false", "FALSE", "no", "off"} {
		assert.Equal(t, TriFalse, ParseBoolish(v), "input %q", v)
	}
}

func TestParseBoolishUnspecifiedForAnythingElse(t *testing.T) {
	for _, v := range []string{"", "maybe", "2"} {
		assert.Equal(t, TriUnspecified, ParseBoolish(v), "input %q", v)
	}
}

func TestLoadPrefersOSRVPrefixedOverLegacyName(t *testing.T) {
	snap := Load(map[string]string{
		"OSRV_PORT": "9000",
		"PORT":      "8080",
	})
	assert.Equal(t, "9000", snap.Port)
}

func TestLoadFallsBackToLegacyNameWhenPrefixedIsAbsent(t *testing.T) {
	snap := Load(map[string]string{"PORT": "8080"})
	assert.Equal(t, "8080", snap.Port)
}

func TestLoadResolvesIsProductionFromEnvAliases(t *testing.T) {
	assert.True(t, Load(map[string]string{"NODE_ENV": "production"}).IsProduction)
	assert.True(t, Load(map[string]string{"OSRV_ENV": "prod"}).IsProduction)
	assert.False(t, Load(map[string]string{"ENV": "staging"}).IsProduction)
	assert.False(t, Load(nil).IsProduction)
}

func TestLoadParsesTLSAndHTTP2Tristate(t *testing.T) {
	snap := Load(map[string]string{"OSRV_TLS": "on", "OSRV_HTTP2": "off"})
	assert.Equal(t, TriTrue, snap.TLS)
	assert.Equal(t, TriFalse, snap.HTTP2)

	assert.Equal(t, TriUnspecified, Load(nil).TLS)
}
