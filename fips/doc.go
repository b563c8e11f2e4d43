// Package fips provides GOFIPS, the certified provider backed by the Go
// Cryptographic Module. It registers an approved DRBG under the
// SecureRandom DEFAULT name together with SHA-2, SHA-3 and HMAC services.
//
// When approved-only mode is active the provider hides every service that
// is not approved, which is what makes legacy names such as SHA1PRNG
// unavailable and motivates the compatibility shim.
package fips
