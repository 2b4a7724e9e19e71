package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/bentogrid/pkg/config"
	"github.com/matzehuels/bentogrid/pkg/grid"
)

func TestConfigCommands(t *testing.T) {
	dir := testEnv(t)
	t.Cleanup(func() { grid.SetColumns(grid.DefaultColumns) })
	want := filepath.Join(dir, "config", appName, "config.toml")

	out, err := execute(t, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != want {
		t.Errorf("config path = %q, want %q", strings.TrimSpace(out), want)
	}

	if _, err := execute(t, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	cfg, err := config.Load(want)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Grid.Columns != 8 {
		t.Errorf("columns = %d, want 8", cfg.Grid.Columns)
	}

	// An existing file is left alone without --force.
	writeFile(t, want, "[grid]\ncolumns = 12\n")
	if _, err := execute(t, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, _ := os.ReadFile(want)
	if !strings.Contains(string(data), "columns = 12") {
		t.Error("config init overwrote an existing file")
	}

	out, err = execute(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "columns = 12") {
		t.Errorf("config show = %q, want the loaded file", out)
	}

	if _, err := execute(t, "config", "init", "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
	data, _ = os.ReadFile(want)
	if !strings.Contains(string(data), "columns = 8") {
		t.Error("config init --force did not overwrite")
	}
}
