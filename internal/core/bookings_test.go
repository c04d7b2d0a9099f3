package core

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewBookingToken(t *testing.T) {
	id := uuid.MustParse("00010203-0405-0607-0809-0a0b0c0d0e0f")

	got := newBookingToken(id)
	if got != "ABCDEF" {
		t.Errorf("newBookingToken() = %q, want %q", got, "ABCDEF")
	}

	for i := 0; i < 100; i++ {
		token := newBookingToken(uuid.New())
		if len(token) != TokenLength {
			t.Fatalf("token %q has length %d", token, len(token))
		}
		for _, r := range token {
			if !strings.ContainsRune(tokenAlphabet, r) {
				t.Fatalf("token %q contains %q", token, r)
			}
		}
	}
}
