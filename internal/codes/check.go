// Package codes validates activation code files uploaded by venue operators
// for digital offers.
//
// A file passes when it is at most MaxSize bytes, has readable text with at
// least one line break, yields one or more non-empty trimmed rows, contains
// no comma, semicolon or period, and repeats no code. Checks run in that
// order and stop at the first failure, which is reported as a *CheckError
// carrying a localized message.
package codes

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

// DefaultMaxSize is the largest accepted file, in bytes (1 MiB).
const DefaultMaxSize int64 = 1 << 20

// DefaultMaxDuplicatesShown bounds how many duplicated codes a message lists.
const DefaultMaxDuplicatesShown = 5

// DefaultTemplateURL is where the downloadable CSV template is served.
const DefaultTemplateURL = "/api/activation-codes/template"

// Kind classifies a failed check. Kinds are ordered by evaluation priority.
type Kind int

const (
	KindTooLarge Kind = iota + 1
	KindUnreadable
	KindNoCodes
	KindForbiddenCharacter
	KindDuplicates
)

// String returns the stable identifier used in logs, metrics and the
// import history.
func (k Kind) String() string {
	switch k {
	case KindTooLarge:
		return "too_large"
	case KindUnreadable:
		return "unreadable"
	case KindNoCodes:
		return "no_codes"
	case KindForbiddenCharacter:
		return "forbidden_character"
	case KindDuplicates:
		return "duplicates"
	default:
		return "unknown"
	}
}

// CheckError is the single failure a check reports.
type CheckError struct {
	Kind       Kind
	Duplicates []string // distinct duplicated codes, only for KindDuplicates
	Truncated  bool     // Message lists fewer codes than Duplicates holds
	Message    string   // localized, shown verbatim to the user
	Action     string   // localized hint on how to fix the file
}

func (e *CheckError) Error() string {
	return e.Message
}

// Checker runs the upload checks. The zero value is ready to use.
type Checker struct {
	MaxSize            int64
	MaxDuplicatesShown int
	TemplateURL        string
	Read               TextReader
	Messages           *Messages
}

// NewChecker returns a Checker with every default applied.
func NewChecker() *Checker {
	c := &Checker{}
	return c.withDefaults()
}

func (c *Checker) withDefaults() *Checker {
	out := *c
	if out.MaxSize <= 0 {
		out.MaxSize = DefaultMaxSize
	}
	if out.MaxDuplicatesShown <= 0 {
		out.MaxDuplicatesShown = DefaultMaxDuplicatesShown
	}
	if out.TemplateURL == "" {
		out.TemplateURL = DefaultTemplateURL
	}
	if out.Read == nil {
		out.Read = ReadText
	}
	if out.Messages == nil {
		out.Messages = defaultMessages
	}
	return &out
}

var defaultMessages = NewMessages()

// Check validates f and returns its codes in file order. Any failure is a
// *CheckError; Check never returns another error type.
func (c *Checker) Check(ctx context.Context, f File, tag language.Tag) ([]string, error) {
	c = c.withDefaults()

	if f.Size() > c.MaxSize {
		return nil, c.fail(tag, KindTooLarge, nil)
	}

	text, ok := c.Read(ctx, f)
	if !ok || !strings.Contains(text, "\n") {
		return nil, c.fail(tag, KindUnreadable, nil)
	}

	return c.checkRows(tag, SplitRows(text))
}

// CheckCodes applies the row checks (no rows, forbidden characters,
// duplicates) to codes that did not come from a file. Codes are trimmed
// and empty entries dropped first, as SplitRows would.
func (c *Checker) CheckCodes(codes []string, tag language.Tag) ([]string, error) {
	c = c.withDefaults()

	rows := make([]string, 0, len(codes))
	for _, code := range codes {
		if row := trimRow(code); row != "" {
			rows = append(rows, row)
		}
	}
	return c.checkRows(tag, rows)
}

func (c *Checker) checkRows(tag language.Tag, rows []string) ([]string, error) {
	if len(rows) == 0 {
		return nil, c.fail(tag, KindNoCodes, nil)
	}
	if hasForbiddenCharacter(rows) {
		return nil, c.fail(tag, KindForbiddenCharacter, nil)
	}
	if dups := Duplicates(rows); len(dups) > 0 {
		return nil, c.fail(tag, KindDuplicates, dups)
	}
	return rows, nil
}

func (c *Checker) fail(tag language.Tag, kind Kind, dups []string) *CheckError {
	e := &CheckError{Kind: kind}
	m := c.Messages

	switch kind {
	case KindTooLarge:
		e.Message = m.Sprintf(tag, msgTooLarge, m.sizeLabel(tag, c.MaxSize))
		e.Action = m.Sprintf(tag, actTooLarge)
	case KindUnreadable:
		e.Message = m.Sprintf(tag, msgUnreadable)
		e.Action = m.Sprintf(tag, actUnreadable)
	case KindNoCodes:
		e.Message = m.Sprintf(tag, msgNoCodes)
		e.Action = m.Sprintf(tag, actNoCodes)
	case KindForbiddenCharacter:
		e.Message = m.Sprintf(tag, msgFormat, c.TemplateURL)
		e.Action = m.Sprintf(tag, actFormat)
	case KindDuplicates:
		list, truncated := duplicateList(dups, c.MaxDuplicatesShown)
		e.Duplicates = dups
		e.Truncated = truncated
		e.Message = m.Sprintf(tag, msgDuplicates, list)
		e.Action = m.Sprintf(tag, actDuplicates)
	}
	return e
}
