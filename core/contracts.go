package core

import (
	"context"
	"io"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

const (
	CategorySecureRandom  = "SecureRandom"
	CategoryMessageDigest = "MessageDigest"
	CategoryMac           = "Mac"
)

// Provider is a named source of cryptographic services. Service returns nil
// when the provider does not offer the requested category/algorithm pair so
// the chain can continue with the next provider.
type Provider interface {
	Name() string
	Version() string
	Info() string
	Service(category string, algorithm string) *Service
}

// SecureRandom is a cryptographically secure random byte source.
type SecureRandom interface {
	io.Reader
	Algorithm() string
}

// SelfTester is implemented by providers that can run known answer tests.
type SelfTester interface {
	SelfTest(ctx context.Context) error
}

type ProviderInfo struct {
	Position    int
	Name        string
	Version     string
	Info        string
	DisplayName string
}

type Registry interface {
	Add(provider Provider) (int, error)
	Insert(provider Provider, position int) (int, error)
	Remove(name string) bool
	Get(name string) (Provider, bool)
	List() []Provider
	Lookup(category string, algorithm string) (*Service, error)
}

type InsertProviderRequest struct {
	Provider Provider
	Position int
}

type LookupRequest struct {
	Category  string
	Algorithm string
}

type LookupOutcome string

const (
	LookupOutcomeResolved    LookupOutcome = "resolved"
	LookupOutcomeSubstituted LookupOutcome = "substituted"
	LookupOutcomeNotFound    LookupOutcome = "not_found"
)

type LookupEvent struct {
	ID                 string
	Category           string
	RequestedAlgorithm string
	ResolvedAlgorithm  string
	ProviderName       string
	Outcome            LookupOutcome
	CreatedAt          time.Time
}

type AuditFilter struct {
	Category string
	Outcome  LookupOutcome
	From     *time.Time
	To       *time.Time
	Page     int
	PerPage  int
}

type AuditPage struct {
	Items      []LookupEvent
	Page       int
	PerPage    int
	Total      int
	HasNext    bool
	NextCursor string
}

type AuditRetentionPolicy struct {
	TTL    time.Duration
	RowCap int
}

type AuditRecorder interface {
	Record(ctx context.Context, event LookupEvent) error
}

type AuditReader interface {
	List(ctx context.Context, filter AuditFilter) (AuditPage, error)
}

type AuditPruner interface {
	Prune(ctx context.Context, policy AuditRetentionPolicy) (int, error)
}

type AuditStore interface {
	AuditRecorder
	AuditReader
	AuditPruner
}

// AuditStoreFactory builds an audit store from a persistence client, such as
// a *bun.DB or a go-persistence-bun client. Rows are tagged with and scoped
// to chainName.
type AuditStoreFactory interface {
	BuildAuditStore(persistenceClient any, chainName string) (AuditStore, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
