package cmd

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/go-drift/sprout/pkg/engine"
	"github.com/go-drift/sprout/pkg/errors"
	"github.com/go-drift/sprout/pkg/graphics"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := output
	output = &buf
	t.Cleanup(func() { output = prev })
	return &buf
}

func TestParseRunArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    runOptions
		wantErr bool
	}{
		{"defaults", nil, runOptions{debugPort: -1}, false},
		{"debug port", []string{"--debug-port", "9000"}, runOptions{debugPort: 9000}, false},
		{"free port", []string{"--debug-port", "0"}, runOptions{debugPort: 0}, false},
		{"log file", []string{"--log", "out.log"}, runOptions{debugPort: -1, logFile: "out.log"}, false},
		{"missing port", []string{"--debug-port"}, runOptions{}, true},
		{"bad port", []string{"--debug-port", "http"}, runOptions{}, true},
		{"port out of range", []string{"--debug-port", "70000"}, runOptions{}, true},
		{"unknown flag", []string{"--fast"}, runOptions{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRunArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    graphics.Size
		wantErr bool
	}{
		{"80x24", graphics.Size{Width: 80, Height: 24}, false},
		{"120X40", graphics.Size{Width: 120, Height: 40}, false},
		{"80", graphics.Size{}, true},
		{"0x10", graphics.Size{}, true},
		{"axb", graphics.Size{}, true},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSize(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExecute_VersionAndHelp(t *testing.T) {
	buf := captureOutput(t)

	if err := Execute([]string{"--version"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), Version) {
		t.Errorf("version output = %q", buf.String())
	}

	buf.Reset()
	if err := Execute(nil); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"run", "status", "tree"} {
		if !strings.Contains(buf.String(), name) {
			t.Errorf("help does not list %q", name)
		}
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	captureOutput(t)
	if err := Execute([]string{"deploy"}); err == nil {
		t.Error("expected an error for an unknown command")
	}
}

func TestStatus_ReadsProjectConfig(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"go.mod":      "module example.com/apps/greeter\n\ngo 1.24\n",
		"sprout.yaml": "viewport:\n  width: 100\n  height: 30\nlayout:\n  pixel_snap: false\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	t.Chdir(dir)
	buf := captureOutput(t)

	if err := Execute([]string{"status"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Project: greeter", "example.com/apps/greeter", "100x30", "pixel snap:      false"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestStatus_InvalidConfigIsConfigError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sprout.yaml"), []byte("viewport: [1, 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	captureOutput(t)

	err := Execute([]string{"status"})
	var sproutErr *errors.SproutError
	if !stderrors.As(err, &sproutErr) {
		t.Fatalf("Execute() error = %v, want a SproutError", err)
	}
	if sproutErr.Kind != errors.KindConfig || sproutErr.Op != "config.Resolve" {
		t.Errorf("error = %s/%s, want config.Resolve/config", sproutErr.Op, sproutErr.Kind)
	}
}

func TestTree_PrintsLaidOutDemo(t *testing.T) {
	t.Chdir(t.TempDir())
	buf := captureOutput(t)

	if err := Execute([]string{"tree", "--size", "40x12"}); err != nil {
		t.Fatal(err)
	}
	var root engine.TreeNode
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatalf("tree output is not JSON: %v\n%s", err, buf.String())
	}
	if root.Widget != "demo.App" {
		t.Errorf("root widget = %q, want demo.App", root.Widget)
	}
	if root.Rect == nil || float64(root.Rect.Width) != 40 || float64(root.Rect.Height) != 12 {
		t.Errorf("root rect = %+v, want 40x12", root.Rect)
	}
}

func TestTree_RejectsBadFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	captureOutput(t)
	if err := Execute([]string{"tree", "--size"}); err == nil {
		t.Error("expected an error for a missing size")
	}
}
