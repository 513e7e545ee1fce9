// Package resilience provides fault tolerance patterns for the application.
//
// The pipeline never retries a failed call: resilience comes from isolating
// failures per item and per feed. Circuit breakers sit in front of every
// external dependency (feed hosts, article pages, AI oracles, the database)
// so that a dependency that is clearly down fails fast instead of consuming
// the group's time budget one timeout at a time.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.OracleConfig("classifier"))
//	body, err := circuitbreaker.Call(cb, func() (string, error) {
//	    return callExternalService()
//	})
//	if circuitbreaker.IsRejected(err) {
//	    // the breaker refused; the service was not called
//	}
package resilience
