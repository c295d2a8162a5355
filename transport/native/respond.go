package native

import (
	"io"
	"net/http"

	"github.com/watt-toolkit/osrv/headers"
	"github.com/watt-toolkit/osrv/response"
)

// writeResponse streams a response.Response onto the wire, stripping
// hop-by-hop headers on both the HTTP/1.1 and HTTP/2 paths (SPEC_FULL.md
// open-question decision D.1) and preserving Set-Cookie (and any other
// repeated header) multiplicity via Header.Add.
//
// net/http does not expose a way to put a custom reason phrase on the
// wire (HTTP/2 has no reason phrase at all, and HTTP/1.1's is fixed to
// http.StatusText by the standard library's response writer); Response's
// Reason() accessor remains meaningful to plugins and tests, but the
// native transport can only honor decision D.2 semantically, not
// literally on the wire. See DESIGN.md.
func writeResponse(w http.ResponseWriter, resp *response.Response) {
	out := headers.StripHopByHop(resp.Headers())
	h := w.Header()
	out.Range(func(name, value string) bool {
		h.Add(name, value)
		return true
	})

	w.WriteHeader(resp.Status())

	if resp.Body() == nil {
		return
	}
	_, _ = io.Copy(w, resp.Body())
}
