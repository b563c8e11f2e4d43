// Package core contains the provider chain contracts, service descriptors,
// and the runtime that orchestrates lookups across an ordered list of
// cryptographic providers. Concrete providers and storage adapters depend on
// this package; core must not depend on them.
package core
