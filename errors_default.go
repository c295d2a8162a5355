package osrv

import (
	"fmt"

	"github.com/watt-toolkit/osrv/response"
)

// Pre-built JSON payloads for the fixed error shapes spec.md §7 defines,
// adapted from bolt/core/responses.go's precompiled status-response bytes
// (jsonOKBytes, json404Bytes, ...): these bodies never change shape, so
// they are built once rather than re-marshaled per error.
var (
	prodErrorBody = []byte(`{"ok":false,"error":"Internal Server Error"}`)
)

// defaultErrorResponse implements spec.md §7's default user-visible
// response: in production, a bare 500 with no details; otherwise a 500
// carrying details and a stack trace. There is no package-level
// ErrorHandler default — Dispatch falls back to this directly, closing
// over the live s.config.IsProduction, so a caller who leaves
// Config.ErrorHandler nil still gets environment-aware behavior instead
// of one baked in at ResolveConfig time.
func defaultErrorResponse(err error, stack string, isProduction bool) *Response {
	if isProduction {
		return response.JSONRaw(500, prodErrorBody)
	}
	body := map[string]any{
		"ok":      false,
		"error":   "Internal Server Error",
		"details": errString(err),
		"stack":   stack,
	}
	resp, marshalErr := response.JSON(500, body)
	if marshalErr != nil {
		// Marshal of a map[string]string-ish payload cannot realistically
		// fail; fall back to the production shape rather than panic.
		return response.JSONRaw(500, prodErrorBody)
	}
	return resp
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprint(err)
}

// requestLimitResponse builds the fixed 413 shape spec.md §7 specifies for
// RequestLimitExceeded.
func requestLimitResponse(maxBytes, actualBytes int64) *Response {
	body := map[string]any{
		"ok":          false,
		"error":       "Request body too large",
		"maxBytes":    maxBytes,
		"actualBytes": actualBytes,
	}
	resp, err := response.JSON(413, body)
	if err != nil {
		return response.JSONRaw(413, []byte(`{"ok":false,"error":"Request body too large"}`))
	}
	return resp
}
