package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/taps/internal/transformer"
)

func newTransformersCommand(reg *transformer.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "transformers",
		Short: "List the available transformers and their options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printTransformers(cmd.OutOrStdout(), reg)
		},
	}
}

func printTransformers(w io.Writer, reg *transformer.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tDESCRIPTION\tOPTIONS")

	for _, name := range reg.Names() {
		ct, err := reg.Lookup(name)
		if err != nil {
			return err
		}

		g, err := reg.Group(name)
		if err != nil {
			return err
		}

		flags := make([]string, 0, len(g.Fields))

		for _, f := range g.Fields {
			flag := "--" + g.FlagName(f.Name)
			if !f.HasDefault() {
				flag += " (required)"
			}

			flags = append(flags, flag)
		}

		opts := strings.Join(flags, ", ")
		if opts == "" {
			opts = "-"
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", name, ct.Description(), opts)
	}

	return tw.Flush()
}
