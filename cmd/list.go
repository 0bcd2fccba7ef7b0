package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fba-resolver/internal/listing"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies known to any provider",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initResolver(ctx, "resolve")
		if err != nil {
			return err
		}
		defer env.Close()

		search, _ := cmd.Flags().GetString("search")
		asJSON, _ := cmd.Flags().GetBool("json")

		entries, err := env.Lister.List(ctx, search)
		if err != nil {
			return eris.Wrap(err, "list companies")
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No companies found.")
			return nil
		}
		formatEntries(os.Stdout, entries)
		return nil
	},
}

func init() {
	listCmd.Flags().String("search", "", "search term (name, industry or location)")
	listCmd.Flags().Bool("json", false, "print JSON instead of a table")
	rootCmd.AddCommand(listCmd)
}

// formatEntries writes a tabular company list to w.
func formatEntries(out io.Writer, entries []listing.Entry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSOURCE\tINDUSTRY\tLOCATION\tWEBSITE")
	_, _ = fmt.Fprintln(w, "----\t------\t--------\t--------\t-------")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			clip(e.Name, 40),
			e.Source,
			clip(e.Industry, 30),
			clip(e.Location, 30),
			e.Website,
		)
	}
	_ = w.Flush()
}

// clip shortens s to n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 4 {
		return s
	}
	return string(r[:n-3]) + "..."
}
