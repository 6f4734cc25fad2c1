package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hupe1980/taps/internal/filter"
	"github.com/hupe1980/taps/internal/options"
	"github.com/hupe1980/taps/internal/output"
	"github.com/hupe1980/taps/internal/transformer"
)

// runOptions holds the flags shared by run and watch that are not part of
// the layered configuration.
type runOptions struct {
	format      string
	output      string
	metricsFile string
}

// usageTemplate is cobra's default usage template with local flags rendered
// by argument group.
const usageTemplate = `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{groupedFlagUsages .LocalFlags | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}
`

func init() {
	cobra.AddTemplateFunc("groupedFlagUsages", options.GroupedUsages)
}

// inferFormat picks the report format from the --output extension unless
// --format was given explicitly.
func inferFormat(cmd *cobra.Command, opts *runOptions) {
	if cmd.Flags().Changed("format") || opts.output == "" {
		return
	}

	if name, ok := output.DefaultRegistry().FormatFor(opts.output); ok {
		opts.format = name
	}
}

// registerPipelineFlags adds the filter flags, the transformer choice flags
// and the output flags to cmd. The transformer named in argv has its
// options marked required.
func registerPipelineFlags(cmd *cobra.Command, reg *transformer.Registry, argv []string, opts *runOptions) error {
	f := cmd.Flags()

	filter.RegisterFlags(f)

	if _, err := transformer.RegisterChoiceFlags(f, reg, argv); err != nil {
		return err
	}

	f.StringVar(&opts.format, "format", "yaml", "report format: json, yaml")
	f.StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write pipeline metrics in Prometheus text format to a file")

	filterTypes := make([]string, 0, len(filter.Types()))
	for _, t := range filter.Types() {
		filterTypes = append(filterTypes, string(t))
	}

	completions := map[string][]string{
		filter.FlagType:          filterTypes,
		transformer.SelectorFlag: reg.Names(),
		"format":                 output.DefaultRegistry().Formats(),
	}

	for name, values := range completions {
		if err := cmd.RegisterFlagCompletionFunc(name, fixedCompletion(values)); err != nil {
			return err
		}
	}

	cmd.SetUsageTemplate(usageTemplate)

	return nil
}

// requireFlags fills required flags that were not given on the command line
// from the layered settings (environment or config file) and fails for any
// that remain unset.
func requireFlags(fs *pflag.FlagSet, settings map[string]any) error {
	var missing []string

	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed || !options.IsRequired(fs, f.Name) {
			return
		}

		if v, ok := settings[f.Name]; ok && v != nil {
			if s := fmt.Sprint(v); s != "" && s != f.DefValue {
				if err := fs.Set(f.Name, s); err == nil {
					return
				}
			}
		}

		missing = append(missing, f.Name)
	})

	if len(missing) == 0 {
		return nil
	}

	sort.Strings(missing)

	return fmt.Errorf(`required flag(s) "%s" not set`, strings.Join(missing, `", "`))
}
