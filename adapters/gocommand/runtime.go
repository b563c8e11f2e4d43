package gocommand

import (
	"fmt"

	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	cryptocommand "github.com/goliatone/go-cryptoproviders/command"
	"github.com/goliatone/go-cryptoproviders/core"
	cryptoquery "github.com/goliatone/go-cryptoproviders/query"
)

// Runtime is the surface the chain commands and queries dispatch to.
// core.Runtime satisfies it.
type Runtime interface {
	cryptocommand.MutatingRuntime
	cryptoquery.ServiceResolver
	cryptoquery.ProviderLister
	cryptoquery.LookupAuditReader
}

// Subscriptions groups dispatcher subscriptions so they can be released
// together.
type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, subscription := range s {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
}

// RegisterRuntime registers and subscribes every chain command and query
// against runtime. On failure nothing stays subscribed.
func RegisterRuntime(adapter *RegistryAdapter, runtime Runtime, runnerOpts ...runner.Option) (Subscriptions, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if runtime == nil {
		return nil, fmt.Errorf("gocommand: runtime is required")
	}

	steps := []func() (commanddispatcher.Subscription, error){
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[cryptocommand.InsertProviderMessage](adapter, cryptocommand.NewInsertProviderCommand(runtime), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[cryptocommand.RemoveProviderMessage](adapter, cryptocommand.NewRemoveProviderCommand(runtime), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[cryptocommand.RunSelfTestMessage](adapter, cryptocommand.NewRunSelfTestCommand(runtime), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[cryptocommand.PruneLookupAuditMessage](adapter, cryptocommand.NewPruneLookupAuditCommand(runtime), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[cryptocommand.EnqueueJobMessage](adapter, cryptocommand.NewEnqueueJobCommand(runtime), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery[cryptoquery.LookupServiceMessage, cryptoquery.ServiceDescriptor](adapter, cryptoquery.NewLookupServiceQuery(runtime), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery[cryptoquery.ListProvidersMessage, []core.ProviderInfo](adapter, cryptoquery.NewListProvidersQuery(runtime), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery[cryptoquery.ListLookupAuditMessage, core.AuditPage](adapter, cryptoquery.NewListLookupAuditQuery(runtime), runnerOpts...)
		},
	}
	subscriptions := make(Subscriptions, 0, len(steps))
	for _, step := range steps {
		subscription, err := step()
		if err != nil {
			subscriptions.Unsubscribe()
			return nil, err
		}
		subscriptions = append(subscriptions, subscription)
	}
	return subscriptions, nil
}
