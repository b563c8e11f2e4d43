// Package legacy provides GOSTD, a non-certified provider carrying the
// algorithm names older callers still ask for: the SHA1PRNG secure random,
// SHA-1 and MD5. None of its services are approved.
package legacy
