package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.csv", "A\nB\n")
	dups := writeFile(t, dir, "dups.csv", "A\nB\nA\n")

	tests := []struct {
		name       string
		args       []string
		wantStatus int
		wantLines  []string
	}{
		{
			name:       "all files pass",
			args:       []string{good},
			wantStatus: 0,
			wantLines:  []string{good + ": OK (2 codes)"},
		},
		{
			name:       "one failure fails the run",
			args:       []string{"-lang", "en", good, dups},
			wantStatus: 1,
			wantLines: []string{
				good + ": OK (2 codes)",
				dups + ": Duplicate codes were found in the file: A.",
			},
		},
		{
			name:       "french by default",
			args:       []string{dups},
			wantStatus: 1,
			wantLines:  []string{dups + ": Plusieurs codes identiques ont été trouvés dans le fichier : A."},
		},
		{
			name:       "no files is a usage error",
			args:       nil,
			wantStatus: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			status := run(context.Background(), tt.args, &stdout, &stderr)

			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (stderr: %s)", status, tt.wantStatus, stderr.String())
			}
			if tt.wantLines == nil {
				return
			}
			got := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
			if strings.Join(got, "\n") != strings.Join(tt.wantLines, "\n") {
				t.Errorf("output:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(tt.wantLines, "\n"))
			}
		})
	}
}

func TestRun_JSON(t *testing.T) {
	dir := t.TempDir()
	big := writeFile(t, dir, "big.csv", strings.Repeat("ABCDEFGH\n", 200))

	var stdout, stderr bytes.Buffer
	status := run(context.Background(), []string{"-json", "-max-size", "1024", "-lang", "en", big}, &stdout, &stderr)

	if status != 1 {
		t.Fatalf("status = %d, want 1", status)
	}
	var got fileResult
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout.String(), err)
	}
	if got.File != big || got.ErrorMessage != "The file must not exceed 1 KB." {
		t.Errorf("result = %+v", got)
	}
}

func TestCheckFiles_KeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.csv", "b.csv", "c.csv", "d.csv"} {
		paths = append(paths, writeFile(t, dir, name, name+"\n"))
	}
	paths = append(paths, filepath.Join(dir, "missing.csv"))

	var stdout, stderr bytes.Buffer
	status := run(context.Background(), append([]string{"-workers", "2"}, paths...), &stdout, &stderr)

	if status != 1 {
		t.Fatalf("status = %d, want 1 for the missing file", status)
	}
	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	if len(lines) != len(paths) {
		t.Fatalf("got %d lines, want %d", len(lines), len(paths))
	}
	for i, p := range paths {
		if !strings.HasPrefix(lines[i], p+": ") {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], p)
		}
	}
}
