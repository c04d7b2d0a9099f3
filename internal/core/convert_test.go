package core

import (
	"testing"
	"time"

	db "github.com/JonMunkholm/codeimport/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func TestToPgTimestamptz(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	local := time.Date(2026, 3, 1, 10, 0, 0, 0, paris)

	tests := []struct {
		name      string
		input     *time.Time
		wantValid bool
	}{
		{"nil is NULL", nil, false},
		{"zero is NULL", &time.Time{}, false},
		{"set time is kept", &local, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPgTimestamptz(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v", got.Valid, tt.wantValid)
			}
			if !tt.wantValid {
				return
			}
			if !got.Time.Equal(*tt.input) {
				t.Errorf("Time = %v, want %v", got.Time, *tt.input)
			}
			if got.Time.Location() != time.UTC {
				t.Errorf("Location = %v, want UTC", got.Time.Location())
			}
			if back := FromPgTimestamptz(got); back == nil || !back.Equal(*tt.input) {
				t.Errorf("FromPgTimestamptz = %v, want %v", back, *tt.input)
			}
		})
	}

	if FromPgTimestamptz(pgtype.Timestamptz{}) != nil {
		t.Error("FromPgTimestamptz(NULL) should be nil")
	}
}

func TestToPgInt4(t *testing.T) {
	if ToPgInt4(nil).Valid {
		t.Error("ToPgInt4(nil) should be NULL")
	}

	zero := 0
	got := ToPgInt4(&zero)
	if !got.Valid || got.Int32 != 0 {
		t.Errorf("ToPgInt4(0) = %+v, want a valid zero", got)
	}

	if back := FromPgInt4(pgtype.Int4{Int32: 12, Valid: true}); back == nil || *back != 12 {
		t.Errorf("FromPgInt4(12) = %v", back)
	}
	if FromPgInt4(pgtype.Int4{}) != nil {
		t.Error("FromPgInt4(NULL) should be nil")
	}
}

func TestNumericRoundTrip(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0.00", "0.00"},
		{"12.50", "12.50"},
		{"300.00", "300.00"},
		{"7", "7.00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n, err := ToPgNumeric(tt.input)
			if err != nil {
				t.Fatalf("ToPgNumeric(%q) error: %v", tt.input, err)
			}
			if got := NumericToString(n); got != tt.want {
				t.Errorf("NumericToString = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := ToPgNumeric("twelve"); err == nil {
		t.Error("ToPgNumeric(\"twelve\") should fail")
	}
	if got := NumericToString(pgtype.Numeric{}); got != "" {
		t.Errorf("NumericToString(NULL) = %q, want empty", got)
	}
}

func TestToImportEntry(t *testing.T) {
	id := uuid.New()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	got := toImportEntry(db.ActivationCodeImport{
		ID:          id,
		StockID:     pgtype.Int8{Int64: 9, Valid: true},
		FileName:    "codes.csv",
		FileSize:    42,
		ContentHash: "00ff",
		CodeCount:   3,
		FailureKind: pgtype.Text{String: "duplicates", Valid: true},
		CreatedAt:   pgtype.Timestamptz{Time: created, Valid: true},
	})

	if got.ID != id.String() || got.StockID != 9 || got.CodeCount != 3 {
		t.Errorf("toImportEntry identity fields = %+v", got)
	}
	if got.FailureKind != "duplicates" || got.IPAddress != "" {
		t.Errorf("toImportEntry optional fields = %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
}
