package app

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ipomoney/ipopulse/pkg/errors"
	"github.com/ipomoney/ipopulse/pkg/logging"
	"github.com/ipomoney/ipopulse/pkg/offerings"
	"github.com/ipomoney/ipopulse/pkg/reconcile"
)

// NewRunCommand creates the run command, executing one full
// aggregation pass against the configured feeds.
func (a *App) NewRunCommand() *cobra.Command {
	var (
		dryRun  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one aggregation pass",
		Long: `Run fetches every configured feed, merges the records into
canonical offerings, derives lifecycle statuses and writes the result
to the database.

With --dry-run the write-set is printed as JSON instead of persisted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithLogger(cmd.Context(), a.logger)
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			srcs, table, err := a.loadSources()
			if err != nil {
				return err
			}
			if len(srcs) == 0 {
				return fmt.Errorf("no sources configured (use --sources): %w", errors.ErrNoSources)
			}

			db, err := a.Store()
			if err != nil {
				return err
			}

			persisted, err := db.ListAll(ctx)
			if err != nil {
				return err
			}

			opts := []reconcile.Option{
				reconcile.WithTable(table),
				reconcile.WithSourceTimeout(a.config.SourceTimeout),
			}
			if !dryRun {
				opts = append(opts, reconcile.WithActivitySink(db))
			}

			result, err := reconcile.New(opts...).Run(ctx, srcs, persisted, offerings.Today())
			if err != nil {
				return err
			}

			if dryRun {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(result.WriteSet); err != nil {
					return err
				}
				a.logger.Info().Msg(result.Summary())
				return nil
			}

			// Upserts are independently atomic; one failed record
			// never blocks the rest of the write-set.
			var writeErrs []error
			for _, o := range result.WriteSet {
				if err := db.Upsert(ctx, o); err != nil {
					a.logger.Error().Err(err).Str("offering", o.Name).Msg("Upsert failed")
					writeErrs = append(writeErrs, err)
				}
			}
			for _, t := range result.Transitions {
				a.logger.Info().
					Str("offering", t.Name).
					Str("from", t.From.String()).
					Str("to", t.To.String()).
					Msg("Status transition")
			}
			a.logger.Info().Msg(result.Summary())
			if len(writeErrs) > 0 {
				return fmt.Errorf("%d of %d offerings failed to persist: %w",
					len(writeErrs), len(result.WriteSet), writeErrs[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the write-set instead of persisting it")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall deadline for the run (0 means no deadline)")
	return cmd
}

// NewListCommand creates the list command, printing the stored
// offerings as a table or JSON.
func (a *App) NewListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored offerings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.Store()
			if err != nil {
				return err
			}

			all, err := db.List(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tSTATUS\tOPEN\tCLOSE\tGMP")
			for _, o := range all {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					o.Name,
					o.Type,
					o.Status,
					formatDate(o.OpenDate),
					formatDate(o.CloseDate),
					formatGMP(o.GMP))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ipopulse %s\n", a.version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit:  %s\n", a.commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:   %s\n", a.date)
			fmt.Fprintf(cmd.OutOrStdout(), "  go:      %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func formatDate(d *offerings.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func formatGMP(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
