package telemetry

import (
	"fmt"
)

// API is where components send everything worth logging or counting. Tests
// swap in a Recorder to assert on what was reported.
type API interface {
	// ReportBroken reports a failure someone should look at, a listing request
	// the europarl client could not decode or a cache write that failed.
	//
	// The id names the component and method in lowercase, dot separated
	// ("client.get-json", "cache.put"), the error and any context such as the
	// url go into params. The package prefix is added by ScopedAPI.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something recoverable, a vote block the parser
	// skipped ("parser.parse-block") or a member whose party is unknown.
	ReportWarning(id string, params ...any)

	// ReportDebug reports request traces and cache hits, dropped unless verbose.
	ReportDebug(msg string, params ...any)

	// ReportCount reports a gauge at the current time, such as the number of
	// proposals in a document ("service.proposals"). Values are samples, not
	// increments.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a package namespace, so the votes service
// reports "votes: service.proposals" and the client "europarl_client: client.fetch".
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scoped(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scoped(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scoped(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scoped(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scoped(id), count)
}
