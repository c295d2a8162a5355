package native

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watt-toolkit/osrv/response"
)

func TestWriteResponseStripsHopByHopHeaders(t *testing.T) {
	resp := response.Empty(200)
	resp.Headers().Set("Connection", "keep-alive")
	resp.Headers().Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	writeResponse(rec, resp)

	assert.Equal(t, 200, rec.Code)
	assert.Empty(t, rec.Header().Get("Connection"))
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}

func TestWriteResponsePreservesSetCookieMultiplicity(t *testing.T) {
	resp := response.Empty(200)
	resp.Headers().Add("Set-Cookie", "a=1")
	resp.Headers().Add("Set-Cookie", "b=2")

	rec := httptest.NewRecorder()
	writeResponse(rec, resp)

	assert.Equal(t, []string{"a=1", "b=2"}, rec.Header().Values("Set-Cookie"))
}

func TestWriteResponseStreamsBody(t *testing.T) {
	resp, err := response.JSON(201, map[string]string{"ok": "yes"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	writeResponse(rec, resp)

	assert.Equal(t, 201, rec.Code)
	assert.JSONEq(t, `{"ok":"yes"}`, rec.Body.String())
}
