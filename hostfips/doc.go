// Package hostfips answers whether the host enforces FIPS mode. The answer
// is a tri-state: platforms without the facility report StatusUnsupported
// instead of failing, and Detect turns every probe failure into that state.
package hostfips
