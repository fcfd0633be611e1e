// Package config defines the runtime options shared by the statuspage
// commands, translating Cobra/Viper flag, environment and file values into
// a strongly typed struct.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cabewaldrop/statuspage/internal/annotate"
	"github.com/cabewaldrop/statuspage/internal/engine"
	"github.com/cabewaldrop/statuspage/internal/view"
)

// EnvPrefix prefixes environment overrides, e.g. STATUSPAGE_META_COLUMNS.
const EnvPrefix = "STATUSPAGE"

// Options holds the table layout and interaction settings.
type Options struct {
	SortColumns     []int
	MetaColumns     int
	Aliases         map[string]string
	Debounce        time.Duration
	Repos           []string
	JobURLTemplates []string
	LogLevel        string
}

// DefaultRepos names the apt repositories behind the squares of each cell.
var DefaultRepos = []string{"building", "shadow-fixed", "ros/public"}

// NewOptions returns Options with defaults applied.
func NewOptions() *Options {
	aliases := make(map[string]string, len(engine.DefaultAliases))
	for k, v := range engine.DefaultAliases {
		aliases[k] = v
	}
	return &Options{
		SortColumns: []int{1, 2, 3},
		MetaColumns: 3,
		Aliases:     aliases,
		Debounce:    view.DefaultDebounce,
		Repos:       append([]string(nil), DefaultRepos...),
		LogLevel:    "info",
	}
}

// BindFlags attaches the table flags to fs and returns their names.
func (o *Options) BindFlags(fs *pflag.FlagSet) []string {
	fs.IntSliceVar(&o.SortColumns, "sort-columns", o.SortColumns, "1-based column positions that produce sort keys")
	fs.IntVar(&o.MetaColumns, "meta-columns", o.MetaColumns, "Number of leading metadata columns; only these sort on click")
	fs.StringToStringVar(&o.Aliases, "alias", o.Aliases, "Query keyword substitutions, e.g. blue=class=\"o\"")
	fs.DurationVar(&o.Debounce, "debounce", o.Debounce, "Quiet period before a typed search is applied")
	fs.StringSliceVar(&o.Repos, "repos", o.Repos, "Repository names, one per square in a version cell")
	fs.StringSliceVar(&o.JobURLTemplates, "job-url", o.JobURLTemplates, "Per version column job URL template containing {pkg}")
	return []string{"sort-columns", "meta-columns", "alias", "debounce", "repos", "job-url"}
}

// Load merges the config file and environment into o. Flags that were set
// explicitly on fs win over both. explicitPath, when set, must exist;
// otherwise a missing default config file is not an error.
func Load(v *viper.Viper, fs *pflag.FlagSet, explicitPath string, o *Options) error {
	configureConfigFile(v, explicitPath)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitPath != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	apply := func(name string, set func()) {
		if fs != nil && fs.Changed(name) {
			return
		}
		if v.IsSet(name) {
			set()
		}
	}
	apply("sort-columns", func() { o.SortColumns = v.GetIntSlice("sort-columns") })
	apply("meta-columns", func() { o.MetaColumns = v.GetInt("meta-columns") })
	apply("alias", func() { o.Aliases = v.GetStringMapString("alias") })
	apply("debounce", func() { o.Debounce = v.GetDuration("debounce") })
	apply("repos", func() { o.Repos = v.GetStringSlice("repos") })
	apply("job-url", func() { o.JobURLTemplates = v.GetStringSlice("job-url") })
	apply("log-level", func() { o.LogLevel = v.GetString("log-level") })

	return o.Validate()
}

func configureConfigFile(v *viper.Viper, explicitPath string) {
	if explicitPath != "" {
		if expanded, err := homedir.Expand(explicitPath); err == nil {
			explicitPath = expanded
		}
		v.SetConfigFile(explicitPath)
		return
	}
	v.SetConfigName("statuspage")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "statuspage"))
	}
}

// Validate checks the options for values the view cannot work with.
func (o *Options) Validate() error {
	if o.MetaColumns < 0 {
		return fmt.Errorf("meta-columns must not be negative, got %d", o.MetaColumns)
	}
	for _, c := range o.SortColumns {
		if c < 1 {
			return fmt.Errorf("sort-columns are 1-based, got %d", c)
		}
	}
	if o.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", o.Debounce)
	}
	for i, tmpl := range o.JobURLTemplates {
		if tmpl != "" && !strings.Contains(tmpl, annotate.PackagePlaceholder) {
			return fmt.Errorf("job-url %d (%q) has no %s placeholder", i+1, tmpl, annotate.PackagePlaceholder)
		}
	}
	return nil
}

// Shortcuts returns the keyword links offered next to the search box: the
// aliases in name order, then the row markers.
func (o *Options) Shortcuts() []string {
	keys := make([]string, 0, len(o.Aliases))
	for k := range o.Aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return append(keys, "diff", "sync")
}

// ViewOptions converts o into controller options.
func (o *Options) ViewOptions() view.Options {
	return view.Options{
		SortColumns: o.SortColumns,
		MetaColumns: o.MetaColumns,
		Aliases:     o.Aliases,
		Debounce:    o.Debounce,
		Annotator: &annotate.Annotator{
			Repos:           o.Repos,
			JobURLTemplates: o.JobURLTemplates,
		},
	}
}
