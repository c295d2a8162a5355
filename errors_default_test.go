package osrv

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultErrorResponseProductionHidesDetails(t *testing.T) {
	resp := defaultErrorResponse(errors.New("db exploded"), "stack trace here", true)

	require.Equal(t, 500, resp.Status())
	raw, err := resp.Body().ReadAll()
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Internal Server Error", body["error"])
	_, hasDetails := body["details"]
	assert.False(t, hasDetails)
	_, hasStack := body["stack"]
	assert.False(t, hasStack)
}

func TestDefaultErrorResponseNonProductionIncludesDetails(t *testing.T) {
	resp := defaultErrorResponse(errors.New("db exploded"), "stack trace here", false)

	require.Equal(t, 500, resp.Status())
	raw, err := resp.Body().ReadAll()
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "db exploded", body["details"])
	assert.Equal(t, "stack trace here", body["stack"])
}

func TestRequestLimitResponseReportsBothByteCounts(t *testing.T) {
	resp := requestLimitResponse(1024, 2048)

	require.Equal(t, 413, resp.Status())
	raw, err := resp.Body().ReadAll()
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.EqualValues(t, 1024, body["maxBytes"])
	assert.EqualValues(t, 2048, body["actualBytes"])
}
