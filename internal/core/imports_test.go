package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/JonMunkholm/codeimport/internal/codes"
	"golang.org/x/text/language"
)

type memFile string

func (f memFile) Size() int64                  { return int64(len(f)) }
func (f memFile) Open() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(string(f))), nil }

func TestContentHash(t *testing.T) {
	a := ContentHash("A\nB\n")
	if len(a) != 32 {
		t.Fatalf("hash length = %d, want 32 hex chars", len(a))
	}
	if a != ContentHash("A\nB\n") {
		t.Error("hash is not stable")
	}
	if a == ContentHash("A\nB\nC\n") {
		t.Error("different content produced the same hash")
	}
}

func TestCheckCapturing(t *testing.T) {
	s := &Service{checker: codes.NewChecker()}

	rows, content, err := s.checkCapturing(context.Background(), memFile("  A \nB\n"), language.French)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || rows[0] != "A" || rows[1] != "B" {
		t.Errorf("rows = %q", rows)
	}
	if content != "  A \nB\n" {
		t.Errorf("captured content = %q, want the raw text", content)
	}
}

func TestCheckCapturing_Failure(t *testing.T) {
	s := &Service{checker: codes.NewChecker()}

	_, content, err := s.checkCapturing(context.Background(), memFile("A\nA\n"), language.English)

	var checkErr *codes.CheckError
	if !errors.As(err, &checkErr) || checkErr.Kind != codes.KindDuplicates {
		t.Fatalf("error = %v, want a duplicates CheckError", err)
	}
	if content != "A\nA\n" {
		t.Errorf("captured content = %q", content)
	}
}

func TestCheckCapturing_LeavesCheckerUntouched(t *testing.T) {
	checker := codes.NewChecker()
	s := &Service{checker: checker}

	_, _, _ = s.checkCapturing(context.Background(), memFile("A\n"), language.French)

	// The shared checker keeps its own reader; a second call captures anew.
	_, content, _ := s.checkCapturing(context.Background(), memFile("B\n"), language.French)
	if content != "B\n" {
		t.Errorf("captured content = %q, want %q", content, "B\n")
	}
}

func TestImportCodes_NoFile(t *testing.T) {
	s := &Service{checker: codes.NewChecker(), limiter: NewUploadLimiter(1, 0)}

	_, err := s.ImportCodes(context.Background(), ImportParams{StockID: 1})
	if err == nil || MapError(err).Code != "FILE006" {
		t.Errorf("error = %v, want FILE006", err)
	}
}
