package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fba-resolver/internal/model"
	"github.com/sells-group/fba-resolver/internal/store"
)

// -- failures --

var failuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "List recorded provider failures",
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

		source, _ := cmd.Flags().GetString("source")
		company, _ := cmd.Flags().GetString("company")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := store.FailureFilter{Company: company, Limit: limit}
		if source != "" {
			src, err := model.ParseSource(source)
			if err != nil {
				return err
			}
			filter.Source = src
		}

		failures, err := st.ListFailures(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "failures list")
		}

		if len(failures) == 0 {
			fmt.Fprintln(os.Stderr, "No failures recorded.")
			return nil
		}

		formatFailures(os.Stdout, failures)
		return nil
	},
}

// -- resolutions --

var resolutionsCmd = &cobra.Command{
	Use:   "resolutions",
	Short: "List recorded resolutions or summarize them",
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

		outcome, _ := cmd.Flags().GetString("outcome")
		company, _ := cmd.Flags().GetString("company")
		limit, _ := cmd.Flags().GetInt("limit")
		stats, _ := cmd.Flags().GetBool("stats")

		filter := store.ResolutionFilter{Outcome: outcome, Company: company, Limit: limit}
		if stats {
			filter.Limit = 10000 // high limit for stats
		}

		res, err := st.ListResolutions(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "resolutions list")
		}

		if stats {
			formatResolutionStats(os.Stdout, computeResolutionStats(res))
			return nil
		}
		if len(res) == 0 {
			fmt.Fprintln(os.Stderr, "No resolutions recorded.")
			return nil
		}
		formatResolutions(os.Stdout, res)
		return nil
	},
}

func init() {
	failuresCmd.Flags().String("source", "", "filter by provider (audit_api, smallcap, ...)")
	failuresCmd.Flags().String("company", "", "filter by company name")
	failuresCmd.Flags().Int("limit", 50, "max number of failures to display")

	resolutionsCmd.Flags().String("outcome", "", "filter by outcome (found, not_found, failed)")
	resolutionsCmd.Flags().String("company", "", "filter by company name")
	resolutionsCmd.Flags().Int("limit", 50, "max number of resolutions to display")
	resolutionsCmd.Flags().Bool("stats", false, "print aggregate statistics instead of rows")

	rootCmd.AddCommand(failuresCmd)
	rootCmd.AddCommand(resolutionsCmd)
}

// resolutionStats holds aggregate statistics computed from resolutions.
type resolutionStats struct {
	Total     int
	Found     int
	NotFound  int
	Degraded  int
	Failed    int
	BySource  map[model.Source]int
	AvgMillis float64
}

// computeResolutionStats computes aggregate statistics from a list of
// resolutions.
func computeResolutionStats(res []store.Resolution) resolutionStats {
	s := resolutionStats{Total: len(res), BySource: make(map[model.Source]int)}

	var totalMs int64
	for _, r := range res {
		totalMs += r.DurationMs
		switch r.Outcome {
		case model.OutcomeFound.String():
			s.Found++
			s.BySource[r.Source]++
		case model.OutcomeFailed.String():
			s.Failed++
		default:
			s.NotFound++
			if len(r.Unavailable) > 0 {
				s.Degraded++
			}
		}
	}

	if s.Total > 0 {
		s.AvgMillis = float64(totalMs) / float64(s.Total)
	}
	return s
}

// formatFailures writes a tabular list of failures to w.
func formatFailures(out io.Writer, failures []store.Failure) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REQUEST\tCOMPANY\tSOURCE\tFAULT\tCREATED\tERROR")
	_, _ = fmt.Fprintln(w, "-------\t-------\t------\t-----\t-------\t-----")

	for _, f := range failures {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(f.RequestID),
			clip(f.Company, 30),
			f.Source,
			f.FaultClass,
			f.CreatedAt.Format("2006-01-02 15:04"),
			clip(f.Error, 60),
		)
	}
	_ = w.Flush()
}

// formatResolutions writes a tabular list of resolutions to w.
func formatResolutions(out io.Writer, res []store.Resolution) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REQUEST\tCOMPANY\tOUTCOME\tSOURCE\tUNAVAILABLE\tATTEMPTS\tDURATION\tCREATED")
	_, _ = fmt.Fprintln(w, "-------\t-------\t-------\t------\t-----------\t--------\t--------\t-------")

	for _, r := range res {
		unavailable := make([]string, len(r.Unavailable))
		for i, s := range r.Unavailable {
			unavailable[i] = string(s)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			truncateID(r.RequestID),
			clip(r.Company, 30),
			r.Outcome,
			r.Source,
			strings.Join(unavailable, ","),
			r.Attempts,
			(time.Duration(r.DurationMs) * time.Millisecond).String(),
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatResolutionStats writes aggregate stats to w.
func formatResolutionStats(out io.Writer, s resolutionStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total lookups:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Found:\t%d\n", s.Found)
	for _, src := range model.Sources() {
		if n := s.BySource[src]; n > 0 {
			_, _ = fmt.Fprintf(w, "  %s:\t%d\n", src, n)
		}
	}
	_, _ = fmt.Fprintf(w, "Not found:\t%d\n", s.NotFound)
	_, _ = fmt.Fprintf(w, "  With providers down:\t%d\n", s.Degraded)
	_, _ = fmt.Fprintf(w, "Rejected keys:\t%d\n", s.Failed)
	if s.AvgMillis > 0 {
		_, _ = fmt.Fprintf(w, "Avg duration:\t%.1fms\n", s.AvgMillis)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
