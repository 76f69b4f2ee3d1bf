package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smazurov/histonode/internal/frame"
)

func TestSplitCmd(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "dump.bin")
	if err := os.WriteFile(src, make([]byte, 20), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := CreateSplitCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{src, "4", "2", filepath.Join(dir, "f"), "--offset", "4"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("split failed: %v", err)
	}

	if !strings.Contains(out.String(), "Total full frames in dump: 2") {
		t.Errorf("summary missing from output:\n%s", out.String())
	}
	for _, name := range []string{"f0001.pgm", "f0002.pgm"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestSplitCmdRejectsBadWidth(t *testing.T) {
	cmd := CreateSplitCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"dump.bin", "wide", "2", "f"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for non-numeric width")
	}
}

func TestReplayCmd(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "frames.bin")
	if err := os.WriteFile(src, make([]byte, 2*frame.Size), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := CreateReplayCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{src, "--start-frame", "10"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header and 2 frames:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "FRAME") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "startup") {
		t.Errorf("frame 11 should be skipped at startup: %q", lines[1])
	}
}
