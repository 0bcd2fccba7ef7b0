package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fba-resolver/internal/catalog"
	"github.com/sells-group/fba-resolver/internal/model"
	"github.com/sells-group/fba-resolver/internal/monitoring"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Summarize provider failures and degraded lookups",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("store"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		hours, _ := cmd.Flags().GetInt("hours")
		if hours < 1 {
			hours = cfg.Monitoring.LookbackWindowHours
		}
		alert, _ := cmd.Flags().GetBool("alert")
		asJSON, _ := cmd.Flags().GetBool("json")

		cat, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return err
		}

		collector := monitoring.NewCollector(st, enabledSources(cat))
		var snap *monitoring.MetricsSnapshot
		if alert {
			mcfg := cfg.Monitoring
			mcfg.LookbackWindowHours = hours
			snap, err = monitoring.NewChecker(collector, monitoring.NewAlerter(mcfg), mcfg).Check(ctx)
		} else {
			snap, err = collector.Collect(ctx, hours)
		}
		if err != nil {
			return eris.Wrap(err, "health")
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		formatHealth(os.Stdout, snap)
		return nil
	},
}

func enabledSources(cat *catalog.Catalog) []model.Source {
	enabled := cat.Enabled()
	out := make([]model.Source, len(enabled))
	for i, p := range enabled {
		out[i] = p.Source
	}
	return out
}

func formatHealth(out io.Writer, snap *monitoring.MetricsSnapshot) {
	fmt.Fprintf(out, "Last %dh: %d lookups, %d found, %d not found (%d degraded, %.1f%%), %d rejected\n\n",
		snap.LookbackHours, snap.Lookups, snap.Found, snap.NotFound,
		snap.Degraded, snap.DegradedRate*100, snap.Rejected)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tFAILURES\tTRANSIENT\tPERMANENT\tLAST FAILURE\tLAST ERROR")
	for _, ph := range snap.Providers {
		last := "-"
		if !ph.LastFailureAt.IsZero() {
			last = ph.LastFailureAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\n",
			ph.Source, ph.Failures, ph.Transient, ph.Permanent, last, clip(ph.LastError, 60))
	}
	_ = w.Flush()
}

func init() {
	healthCmd.Flags().Int("hours", 0, "lookback window in hours (default from config)")
	healthCmd.Flags().Bool("alert", false, "send webhook alerts for breached thresholds")
	healthCmd.Flags().Bool("json", false, "print the snapshot as JSON")
	rootCmd.AddCommand(healthCmd)
}
