package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fba-resolver/internal/model"
)

var errNotFound = eris.New("company not found")

// companyResolver is the part of the resolver the CLI uses.
type companyResolver interface {
	Resolve(ctx context.Context, rawKey string) model.Outcome
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <company name>",
	Short: "Resolve one company and print its profile as JSON",
	Long: "Tries every enabled provider in priority order and prints the first match. " +
		"Exits with status 1 when no provider knows the company.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initResolver(ctx, "resolve")
		if err != nil {
			return err
		}
		defer env.Close()

		raw, _ := cmd.Flags().GetBool("raw")
		return resolveCompany(ctx, os.Stdout, os.Stderr, env.Resolver, resolveKey(args[0], raw))
	},
}

func init() {
	resolveCmd.Flags().Bool("raw", false, "treat the argument as an already URL-encoded key")
	rootCmd.AddCommand(resolveCmd)
}

// resolveKey encodes a plain company name the way a browser encodes a path
// segment, so the resolver's single decode yields the name unchanged.
func resolveKey(arg string, raw bool) string {
	if raw {
		return arg
	}
	return url.PathEscape(arg)
}

// resolveCompany prints the found record to out. Provider outages that
// left the lookup incomplete are reported on errOut.
func resolveCompany(ctx context.Context, out, errOut io.Writer, r companyResolver, key string) error {
	o := r.Resolve(ctx, key)
	switch {
	case o.IsFound():
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(o.Record)
	case o.IsFailed():
		return eris.Wrapf(o.Err, "resolve %q", key)
	default:
		if o.Degraded() {
			names := make([]string, len(o.Unavailable))
			for i, s := range o.Unavailable {
				names[i] = string(s)
			}
			_, _ = fmt.Fprintf(errOut, "warning: providers unavailable: %s\n", strings.Join(names, ", "))
		}
		return errNotFound
	}
}
