// Package cryptoproviders assembles the provider chain: the SHA1PRNG
// compatibility shim, the certified GOFIPS provider and the legacy GOSTD
// provider, behind a core.Runtime.
package cryptoproviders

import "github.com/goliatone/go-cryptoproviders/core"

type Config = core.Config

type Option = core.Option

type Runtime = core.Runtime

type Provider = core.Provider

type Service = core.Service

type ProviderInfo = core.ProviderInfo

type LookupRequest = core.LookupRequest
type InsertProviderRequest = core.InsertProviderRequest
type AuditFilter = core.AuditFilter
type AuditPage = core.AuditPage

const (
	CategorySecureRandom  = core.CategorySecureRandom
	CategoryMessageDigest = core.CategoryMessageDigest
	CategoryMac           = core.CategoryMac
)

var DefaultConfig = core.DefaultConfig

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithRegistry          = core.WithRegistry
	WithAuditStore        = core.WithAuditStore
	WithAuditRecorder     = core.WithAuditRecorder
	WithAuditReader       = core.WithAuditReader
	WithJobEnqueuer       = core.WithJobEnqueuer
)
