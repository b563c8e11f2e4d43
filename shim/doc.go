// Package shim provides the FIPS compatibility pseudo provider. Placed ahead
// of the platform providers in a chain, it answers requests for the legacy
// SHA1PRNG secure random with the certified provider's approved DEFAULT
// service and reports "not found" for everything else, so the rest of the
// chain keeps resolving normally.
package shim
