package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"text/tabwriter"

	cryptoproviders "github.com/goliatone/go-cryptoproviders"
	"github.com/goliatone/go-cryptoproviders/core"
	"github.com/goliatone/go-cryptoproviders/fips"
	"github.com/goliatone/go-cryptoproviders/hostfips"
	cryptomigrations "github.com/goliatone/go-cryptoproviders/migrations"
	cryptoquery "github.com/goliatone/go-cryptoproviders/query"
	sqlstore "github.com/goliatone/go-cryptoproviders/store/sql"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	approvedOnly  bool
	skipHostProbe bool
	namePrefix    string
	shimPosition  int
	noShim        bool
	noLegacy      bool
	auditDriver   string
	auditDSN      string
}

func newRootCommand(out io.Writer) *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "cryptoinfo",
		Short:         "Inspect the cryptographic provider chain.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.BoolVar(&flags.approvedOnly, "approved-only", false, "run the certified provider in approved-only mode")
	pf.BoolVar(&flags.skipHostProbe, "skip-host-probe", false, "do not probe the host for FIPS mode")
	pf.StringVar(&flags.namePrefix, "shim-prefix", core.DefaultShimNamePrefix, "name prefix of the compatibility shim")
	pf.IntVar(&flags.shimPosition, "shim-position", 1, "1-based chain position of the compatibility shim")
	pf.BoolVar(&flags.noShim, "no-shim", false, "do not install the compatibility shim")
	pf.BoolVar(&flags.noLegacy, "no-legacy", false, "do not install the legacy provider")
	pf.StringVar(&flags.auditDriver, "audit-driver", sqlstore.DriverSQLite, "lookup audit database driver (sqlite3 or postgres)")
	pf.StringVar(&flags.auditDSN, "audit-dsn", "", "lookup audit database DSN; enables the SQL audit store")

	root.AddCommand(
		newChainCommand(flags),
		newHostCommand(),
		newLookupCommand(flags),
		newSelfTestCommand(flags),
		newAuditCommand(flags),
	)
	return root
}

func (f *rootFlags) config() cryptoproviders.Config {
	return cryptoproviders.Config{
		Shim: core.ShimConfig{
			Disabled:      f.noShim,
			NamePrefix:    f.namePrefix,
			Position:      f.shimPosition,
			SkipHostProbe: f.skipHostProbe,
		},
		Certified: core.CertifiedConfig{ApprovedOnly: f.approvedOnly},
		Legacy:    core.LegacyConfig{Disabled: f.noLegacy},
		Audit:     core.AuditConfig{Enabled: true},
	}
}

// setup assembles the stack. The returned cleanup closes the audit database
// when one was opened.
func (f *rootFlags) setup(ctx context.Context) (*cryptoproviders.Stack, func(), error) {
	runtimeOpts := []core.Option{}
	cleanup := func() {}
	if f.auditDSN != "" {
		client, err := openAuditClient(ctx, f.auditDriver, f.auditDSN)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { _ = client.Close() }
		runtimeOpts = append(runtimeOpts,
			core.WithPersistenceClient(client),
			core.WithRepositoryFactory(sqlstore.NewRepositoryFactory()),
		)
	}
	stack, err := cryptoproviders.Setup(ctx, f.config(), cryptoproviders.WithRuntimeOptions(runtimeOpts...))
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return stack, cleanup, nil
}

func openAuditClient(ctx context.Context, driver string, dsn string) (*persistence.Client, error) {
	client, err := sqlstore.Open(sqlstore.PersistenceConfig{Driver: driver, DSN: dsn})
	if err != nil {
		return nil, err
	}
	err = cryptomigrations.RegisterForDriver(ctx, driver, func(fsys fs.FS) {
		client.RegisterSQLMigrations(fsys)
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("migrate lookup audit schema: %w", err)
	}
	return client, nil
}

func newChainCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chain",
		Short: "List the providers in lookup order.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stack, cleanup, err := flags.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "POS\tNAME\tVERSION\tINFO")
			for _, info := range stack.Providers(cmd.Context()) {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", info.Position, info.Name, info.Version, info.Info)
			}
			return w.Flush()
		},
	}
}

func newHostCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "host",
		Short: "Report host and Go runtime FIPS status.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "host:    %s\n", hostfips.Detect(ctx, nil, hostfips.DefaultProber()))
			fmt.Fprintf(out, "kernel:  %s\n", hostfips.Detect(ctx, nil, hostfips.KernelProber{}))
			fmt.Fprintf(out, "runtime: %t\n", fips.RuntimeFIPSEnabled())
			fmt.Fprintf(out, "approved-only registrar: %t\n", fips.InApprovedOnlyMode())
			return nil
		},
	}
}

func newLookupCommand(flags *rootFlags) *cobra.Command {
	var category string
	var algorithm string
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Resolve one algorithm through the chain and print the service.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stack, cleanup, err := flags.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			msg := cryptoquery.LookupServiceMessage{Category: category, Algorithm: algorithm}
			if err := msg.Validate(); err != nil {
				return err
			}
			descriptor, err := cryptoquery.NewLookupServiceQuery(stack.Runtime).Query(cmd.Context(), msg)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), descriptor)
		},
	}
	cmd.Flags().StringVar(&category, "category", core.CategorySecureRandom, "service category")
	cmd.Flags().StringVar(&algorithm, "algorithm", "SHA1PRNG", "algorithm name")
	return cmd
}

func newSelfTestCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Run known answer tests on every self-testing provider.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stack, cleanup, err := flags.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := stack.Runtime.SelfTest(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "self test passed")
			return nil
		},
	}
}

func newAuditCommand(flags *rootFlags) *cobra.Command {
	var outcome string
	var perPage int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recorded lookup events from the audit database.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.auditDSN == "" {
				return fmt.Errorf("--audit-dsn is required")
			}
			stack, cleanup, err := flags.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			page, err := stack.Runtime.ListLookupAudit(cmd.Context(), core.AuditFilter{
				Outcome: core.LookupOutcome(outcome),
				PerPage: perPage,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), page)
		},
	}
	cmd.Flags().StringVar(&outcome, "outcome", "", "filter by outcome (resolved, substituted, not_found)")
	cmd.Flags().IntVar(&perPage, "per-page", 25, "page size")
	return cmd
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
