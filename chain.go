package osrv

// buildChain composes middleware (in declaration order) around terminal so
// that invoking the result runs:
//
//	m[0].before, m[1].before, ..., m[n-1].before, terminal,
//	m[n-1].after, ..., m[1].after, m[0].after
//
// per spec.md §4.1's strict ordering guarantee. A middleware that returns
// without calling next short-circuits: later middleware and terminal never
// run, and the skipped middlewares' "after" phases never run either,
// because they were never entered in the first place.
//
// Grounded on bolt/core/types.go's Middleware = func(Handler) Handler
// composition (recursive wrapping built by iterating in reverse), adapted
// from a Handler-returning-Handler shape to this spec's
// (request, next)-calling shape per spec.md §6.1.
func buildChain(mw []Middleware, terminal Next) Next {
	next := terminal
	for i := len(mw) - 1; i >= 0; i-- {
		mw := mw[i] // capture for closure
		prevNext := next
		next = func(req *Request) (*Response, error) {
			return mw(req, prevNext)
		}
	}
	return next
}
