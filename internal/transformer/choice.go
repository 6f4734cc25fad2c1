package transformer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// SelectorFlag is the name of the flag selecting the transformer.
const SelectorFlag = "transformer"

// DefaultTransformer is selected when --transformer is not given.
const DefaultTransformer = "null"

// ChoiceConfig holds the selected transformer name.
type ChoiceConfig struct {
	Transformer string `mapstructure:"transformer"`
}

// ScanSelector extracts the --transformer value from raw, unparsed
// arguments. It matches the exact token "--transformer" followed by its
// value, or "--transformer=<value>". When the flag appears more than once
// the last occurrence wins, mirroring how the flag parser resolves it.
// Scanning stops at the "--" terminator. It returns false when no value is
// present.
func ScanSelector(argv []string) (string, bool) {
	flag := "--" + SelectorFlag

	var (
		value string
		found bool
	)

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		if arg == "--" {
			break
		}

		if arg == flag {
			if i+1 < len(argv) {
				value, found = argv[i+1], true
				i++
			}

			continue
		}

		if v, ok := strings.CutPrefix(arg, flag+"="); ok {
			value, found = v, true
		}
	}

	return value, found
}

// AddChoiceFlags registers the selector flag and one argument group per
// registered transformer on fs. Only the group of selected is marked
// required; pass "" to leave every group optional. Groups are added in
// name order so help output is stable.
func AddChoiceFlags(fs *pflag.FlagSet, reg *Registry, selected string) error {
	types := reg.Registered()
	names := make([]string, 0, len(types))

	for name := range types {
		names = append(names, name)
	}

	slices.Sort(names)

	fs.String(SelectorFlag, DefaultTransformer,
		fmt.Sprintf("transformer to use (%s)", strings.Join(names, ", ")))

	for _, name := range names {
		if err := GroupFor(name, types[name]).AddFlags(fs, name == selected); err != nil {
			return fmt.Errorf("adding %s transformer flags: %w", name, err)
		}
	}

	return nil
}

// RegisterChoiceFlags runs both steps: it scans argv for the selected
// transformer and then builds the flags with that selection. It returns the
// scanned selection, or "" when none was given.
func RegisterChoiceFlags(fs *pflag.FlagSet, reg *Registry, argv []string) (string, error) {
	selected, _ := ScanSelector(argv)

	if err := AddChoiceFlags(fs, reg, selected); err != nil {
		return "", err
	}

	return selected, nil
}

// Resolve builds the selected transformer configuration. settings holds
// flat parsed values keyed by flag name; the selected group's options are
// extracted from it.
func (c ChoiceConfig) Resolve(reg *Registry, settings map[string]any) (Config, error) {
	name := c.Transformer
	if name == "" {
		name = DefaultTransformer
	}

	g, err := reg.Group(name)
	if err != nil {
		return nil, err
	}

	return reg.Config(name, g.Collect(settings))
}
