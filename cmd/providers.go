package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/fba-resolver/internal/catalog"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show the provider catalog in priority order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		formatProviders(os.Stdout, cat)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

// formatProviders writes one line per catalog entry, disabled ones included.
func formatProviders(out io.Writer, cat *catalog.Catalog) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tSOURCE\tKIND\tENABLED\tORIGIN\tGROUPS")
	_, _ = fmt.Fprintln(w, "-\t------\t----\t-------\t------\t------")
	for i, p := range cat.Providers {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\t%d\n",
			i+1, p.Source, p.Kind, p.IsEnabled(), providerOrigin(p), len(p.Groups))
	}
	_ = w.Flush()
}

func providerOrigin(p catalog.Provider) string {
	switch {
	case p.Workbook != "" && p.Worksheet != "":
		return "file:" + p.Workbook + "#" + p.Worksheet
	case p.Workbook != "":
		return "file:" + p.Workbook
	case p.Kind == catalog.KindSheet:
		return fmt.Sprintf("sheet:%s#gid=%s", p.SheetID, p.TabID)
	case p.Kind == catalog.KindAudit:
		return cfg.Audit.BaseURL
	case p.Kind == catalog.KindDirectory:
		return cfg.Directory.BaseURL
	default:
		return ""
	}
}
