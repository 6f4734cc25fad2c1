// Package options turns declarative configuration fields into command-line
// argument groups and decodes parsed settings back into typed configuration
// structs.
//
// A [Group] is a named cluster of flags contributed by one configuration
// type. Each field becomes a flag named "<prefix>-<field>". When a group is
// added as required, every field without a default is marked as a required
// flag, which cobra enforces at parse time.
package options

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// GroupAnnotation is the pflag annotation key recording a flag's group.
const GroupAnnotation = "taps_group"

// Kind is the value type of a field.
type Kind int

// Supported field kinds.
const (
	String Kind = iota
	Int
	Float
	Bool
	Duration
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Duration:
		return "duration"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field describes one configuration option.
type Field struct {
	// Name is the option key, e.g. "dir". It is also the mapstructure key
	// used when decoding.
	Name string

	// Usage is the help text.
	Usage string

	// Kind is the value type.
	Kind Kind

	// Default is the default value. A nil Default means the field has no
	// default and must be supplied when its group is required.
	Default any
}

// HasDefault reports whether the field carries a default value.
func (f Field) HasDefault() bool { return f.Default != nil }

// Group is a named cluster of fields exposed as flags.
type Group struct {
	Name   string
	Prefix string
	Fields []Field
}

// FlagName returns the flag name for the given field name.
func (g Group) FlagName(field string) string {
	if g.Prefix == "" {
		return field
	}

	return g.Prefix + "-" + field
}

// AddFlags registers the group's fields on fs. When required is true, every
// field without a default is marked as a required flag.
func (g Group) AddFlags(fs *pflag.FlagSet, required bool) error {
	for _, f := range g.Fields {
		name := g.FlagName(f.Name)

		if fs.Lookup(name) != nil {
			return fmt.Errorf("group %s: flag --%s already defined", g.Name, name)
		}

		usage := f.Usage
		if required && !f.HasDefault() {
			usage += " (required)"
		}

		if err := addFlag(fs, name, usage, f); err != nil {
			return fmt.Errorf("group %s: %w", g.Name, err)
		}

		if err := fs.SetAnnotation(name, GroupAnnotation, []string{g.Name}); err != nil {
			return fmt.Errorf("group %s: annotating --%s: %w", g.Name, name, err)
		}

		if required && !f.HasDefault() {
			if err := cobra.MarkFlagRequired(fs, name); err != nil {
				return fmt.Errorf("group %s: marking --%s required: %w", g.Name, name, err)
			}
		}
	}

	return nil
}

// Collect extracts the group's options from flat parsed settings, keyed by
// field name. Settings keys are flag names.
func (g Group) Collect(settings map[string]any) map[string]any {
	out := make(map[string]any, len(g.Fields))

	for _, f := range g.Fields {
		if v, ok := settings[g.FlagName(f.Name)]; ok {
			out[f.Name] = v
		}
	}

	return out
}

func addFlag(fs *pflag.FlagSet, name, usage string, f Field) error {
	mismatch := func() error {
		return fmt.Errorf("field %q: default %T does not match kind %s", f.Name, f.Default, f.Kind)
	}

	switch f.Kind {
	case String:
		def, ok := f.Default.(string)
		if !ok && f.HasDefault() {
			return mismatch()
		}

		fs.String(name, def, usage)
	case Int:
		def, ok := f.Default.(int)
		if !ok && f.HasDefault() {
			return mismatch()
		}

		fs.Int(name, def, usage)
	case Float:
		def, ok := f.Default.(float64)
		if !ok && f.HasDefault() {
			return mismatch()
		}

		fs.Float64(name, def, usage)
	case Bool:
		def, ok := f.Default.(bool)
		if !ok && f.HasDefault() {
			return mismatch()
		}

		fs.Bool(name, def, usage)
	case Duration:
		def, ok := f.Default.(time.Duration)
		if !ok && f.HasDefault() {
			return mismatch()
		}

		fs.Duration(name, def, usage)
	default:
		return fmt.Errorf("field %q: unsupported kind %s", f.Name, f.Kind)
	}

	return nil
}

// IsRequired reports whether the named flag carries cobra's required
// annotation.
func IsRequired(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	if f == nil {
		return false
	}

	v := f.Annotations[cobra.BashCompOneRequiredFlag]

	return len(v) == 1 && v[0] == "true"
}

// GroupOf returns the group a flag belongs to, or "" for ungrouped flags.
func GroupOf(f *pflag.Flag) string {
	if v := f.Annotations[GroupAnnotation]; len(v) > 0 {
		return v[0]
	}

	return ""
}

// GroupedUsages renders flag usages with ungrouped flags first, followed by
// one section per group in name order.
func GroupedUsages(fs *pflag.FlagSet) string {
	ungrouped := pflag.NewFlagSet("", pflag.ContinueOnError)
	groups := make(map[string]*pflag.FlagSet)

	fs.VisitAll(func(f *pflag.Flag) {
		name := GroupOf(f)
		if name == "" {
			ungrouped.AddFlag(f)
			return
		}

		gs, ok := groups[name]
		if !ok {
			gs = pflag.NewFlagSet(name, pflag.ContinueOnError)
			groups[name] = gs
		}

		gs.AddFlag(f)
	})

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}

	sort.Strings(names)

	var b strings.Builder

	b.WriteString(ungrouped.FlagUsages())

	for _, name := range names {
		fmt.Fprintf(&b, "\n%s options:\n%s", name, groups[name].FlagUsages())
	}

	return b.String()
}

// Decode decodes opts into target, which must be a pointer to a struct with
// mapstructure tags. Values are converted loosely ("5" decodes into an int,
// "2s" into a time.Duration). Unknown keys are an error.
func Decode(opts map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("creating options decoder: %w", err)
	}

	if err := dec.Decode(opts); err != nil {
		return fmt.Errorf("decoding options: %w", err)
	}

	return nil
}
