package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestNewOptionsDefaults(t *testing.T) {
	o := NewOptions()
	if len(o.SortColumns) != 3 || o.MetaColumns != 3 {
		t.Errorf("unexpected column defaults: %v / %d", o.SortColumns, o.MetaColumns)
	}
	if o.Debounce != 250*time.Millisecond {
		t.Errorf("expected 250ms debounce, got %s", o.Debounce)
	}
	if o.Aliases["red"] != `class="m"` {
		t.Errorf("expected red alias, got %q", o.Aliases["red"])
	}
	if err := o.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statuspage.yaml")
	content := `meta-columns: 5
sort-columns: [1, 2, 3, 4, 5]
debounce: 100ms
repos: [building, testing]
job-url:
  - "http://jenkins/job/{pkg}/"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.BindFlags(fs)
	if err := Load(viper.New(), fs, path, o); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if o.MetaColumns != 5 {
		t.Errorf("expected meta-columns 5, got %d", o.MetaColumns)
	}
	if len(o.SortColumns) != 5 {
		t.Errorf("expected 5 sort columns, got %v", o.SortColumns)
	}
	if o.Debounce != 100*time.Millisecond {
		t.Errorf("expected 100ms, got %s", o.Debounce)
	}
	if len(o.Repos) != 2 || o.Repos[1] != "testing" {
		t.Errorf("unexpected repos %v", o.Repos)
	}
	if len(o.JobURLTemplates) != 1 {
		t.Errorf("expected one job url, got %v", o.JobURLTemplates)
	}
}

func TestLoadFlagWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statuspage.yaml")
	if err := os.WriteFile(path, []byte("meta-columns: 5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.BindFlags(fs)
	if err := fs.Parse([]string{"--meta-columns=2"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if err := Load(viper.New(), fs, path, o); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if o.MetaColumns != 2 {
		t.Errorf("expected flag value 2, got %d", o.MetaColumns)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STATUSPAGE_META_COLUMNS", "4")
	t.Chdir(t.TempDir())

	o := NewOptions()
	if err := Load(viper.New(), nil, "", o); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if o.MetaColumns != 4 {
		t.Errorf("expected env value 4, got %d", o.MetaColumns)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	o := NewOptions()
	err := Load(viper.New(), nil, filepath.Join(t.TempDir(), "nope.yaml"), o)
	if err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"zero sort column", func(o *Options) { o.SortColumns = []int{0} }, true},
		{"negative meta", func(o *Options) { o.MetaColumns = -1 }, true},
		{"negative debounce", func(o *Options) { o.Debounce = -time.Second }, true},
		{"job url without placeholder", func(o *Options) { o.JobURLTemplates = []string{"http://x/"} }, true},
		{"empty job url", func(o *Options) { o.JobURLTemplates = []string{""} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOptions()
			tt.mutate(o)
			err := o.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShortcuts(t *testing.T) {
	o := NewOptions()
	got := o.Shortcuts()
	want := []string{"blue", "gray", "red", "yellow", "diff", "sync"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("shortcut %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
