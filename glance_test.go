package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGlanceFlags(t *testing.T) {
	tt := []struct {
		args  []string
		check func() bool
	}{
		{
			args: []string{"--header", "3"},
			check: func() bool { return header == 3 },
		},
		{
			args:  []string{"-r", "0.5"},
			check: func() bool { return rateStr == "0.5" },
		},
		{
			args:  []string{"-n", "10"},
			check: func() bool { return fixed == 10 },
		},
		{
			args:  []string{"--quiet"},
			check: func() bool { return quiet },
		},
	}

	for _, v := range tt {
		if err := rootCmd.ParseFlags(v.args); err != nil {
			t.Fatal(err)
		}
		if !v.check() {
			t.Errorf("parsing flags failed: %v", v.args)
		}
	}
}

func TestParseRate(t *testing.T) {
	tt := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"0.1", 0.1, false},
		{"50%", 0.5, false},
		{"4", 0.25, false}, // >1 reads as 1/X
		{"-0.1", 0, true},
		{"150%", 0, true},
		{"nope", 0, true},
	}
	for _, v := range tt {
		got, err := parseRate(v.in)
		if v.wantErr {
			if err == nil {
				t.Errorf("parseRate(%q): expected error", v.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRate(%q): unexpected error: %v", v.in, err)
			continue
		}
		if got != v.want {
			t.Errorf("parseRate(%q) = %v, want %v", v.in, got, v.want)
		}
	}
}

func TestRunInputsContinuesAfterMissingFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	if err := os.WriteFile(good, []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "does-not-exist.txt")

	old := resolvedCfg
	defer func() { resolvedCfg = old }()
	resolvedCfg.Header = 5
	resolvedCfg.Footer = 5

	exitCode = 0
	defer func() { exitCode = 0 }()

	runInputs([]string{missing, good})

	if exitCode != 1 {
		t.Fatalf("expected exit code 1 after a missing input, got %d", exitCode)
	}
}

func TestExpandPathLeavesStdinMarkerAlone(t *testing.T) {
	if got := expandPath("-"); got != "-" {
		t.Fatalf("expandPath(%q) = %q, want unchanged", "-", got)
	}
}

func TestOpenInputRejectsMissingFile(t *testing.T) {
	_, _, err := openInput(filepath.Join(t.TempDir(), "nope"))
	if err == nil || !strings.Contains(err.Error(), "unable to open") {
		t.Fatalf("expected an open error, got %v", err)
	}
}
