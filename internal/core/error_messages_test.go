package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/codeimport/internal/codes"
	"golang.org/x/text/language"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "check error keeps its message",
			err:         &codes.CheckError{Kind: codes.KindDuplicates, Message: "Plusieurs codes identiques ont été trouvés dans le fichier : A."},
			wantCode:    "FILE005",
			wantMessage: "Plusieurs codes identiques ont été trouvés dans le fichier : A.",
		},
		{
			name:        "wrapped check error",
			err:         fmt.Errorf("import: %w", &codes.CheckError{Kind: codes.KindTooLarge, Message: "too big"}),
			wantCode:    "FILE001",
			wantMessage: "too big",
		},
		{
			name:        "code conflict",
			err:         &CodeConflictError{Codes: []string{"A"}},
			wantCode:    "CODE001",
			wantMessage: "Some activation codes are already attached to this stock",
		},
		{
			name:        "code constraint before generic duplicate key",
			err:         errors.New(`ERROR: duplicate key value violates unique constraint "unique_code_in_stock"`),
			wantCode:    "CODE001",
			wantMessage: "Some activation codes are already attached to this stock",
		},
		{
			name:        "already imported",
			err:         fmt.Errorf("stock 4: %w", ErrAlreadyImported),
			wantCode:    "CODE002",
			wantMessage: "This file was already imported into this stock",
		},
		{
			name:        "no code left",
			err:         ErrNoActivationCodeAvailable,
			wantCode:    "CODE003",
			wantMessage: "This stock has no activation code left",
		},
		{
			name:        "stock not found",
			err:         ErrStockNotFound,
			wantCode:    "STOCK002",
			wantMessage: "Stock not found",
		},
		{
			name:        "offer not digital",
			err:         ErrOfferNotDigital,
			wantCode:    "STOCK003",
			wantMessage: "Activation codes can only be added to digital offers",
		},
		{
			name:        "price too high",
			err:         fmt.Errorf("%w: 301.00 exceeds 300", ErrPriceTooHigh),
			wantCode:    "STOCK005",
			wantMessage: "The price is above the maximum allowed",
		},
		{
			name:        "quantity below bookings",
			err:         fmt.Errorf("%w: 2 < 3", ErrQuantityBelowBooked),
			wantCode:    "STOCK010",
			wantMessage: "The quantity is below the number of bookings",
		},
		{
			name:        "deadline before generic timeout",
			err:         context.DeadlineExceeded,
			wantCode:    "UPL003",
			wantMessage: "Request timed out",
		},
		{
			name:        "limiter busy",
			err:         ErrTooManyUploads,
			wantCode:    "UPL001",
			wantMessage: "System is busy processing other uploads",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB003",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("DUPLICATE KEY value violates"),
			wantCode:    "DB001",
			wantMessage: "A record with this value already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapError_CheckErrorKeepsLocalizedAction(t *testing.T) {
	_, err := codes.NewChecker().CheckCodes([]string{"A", "A"}, language.French)

	got := MapError(err)
	if got.Code != "FILE005" {
		t.Errorf("code = %q, want FILE005", got.Code)
	}
	if got.Action != "Retirez les codes en double puis importez à nouveau le fichier." {
		t.Errorf("action = %q, want the French action", got.Action)
	}
}

func TestMapError_EveryKindHasACode(t *testing.T) {
	kinds := []codes.Kind{
		codes.KindTooLarge,
		codes.KindUnreadable,
		codes.KindNoCodes,
		codes.KindForbiddenCharacter,
		codes.KindDuplicates,
	}
	seen := make(map[string]bool)
	for _, k := range kinds {
		got := MapError(&codes.CheckError{Kind: k, Message: "m"})
		if got.Code == "" || got.Code == defaultMessage.Code {
			t.Errorf("kind %v mapped to %q", k, got.Code)
		}
		if seen[got.Code] {
			t.Errorf("code %q reused for kind %v", got.Code, k)
		}
		seen[got.Code] = true
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrOfferIsEvent,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
