package codes

import (
	"strings"
	"unicode"
)

// ForbiddenCharacters may not appear in any row. A row holding one of them
// is usually a multi-column export rather than one code per line.
const ForbiddenCharacters = ",;."

// SplitRows splits text on '\n', trims every line and drops the lines that
// are empty after trimming. Order is preserved; "\r\n" files lose their '\r'
// in the trim.
func SplitRows(text string) []string {
	lines := strings.Split(text, "\n")
	rows := make([]string, 0, len(lines))
	for _, line := range lines {
		row := trimRow(line)
		if row != "" {
			rows = append(rows, row)
		}
	}
	return rows
}

// trimRow strips white space and byte order marks from both ends, the same
// set as JavaScript's String.prototype.trim. U+0085 (NEL) is kept.
func trimRow(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return (unicode.IsSpace(r) && r != '\u0085') || r == '\uFEFF'
	})
}

// hasForbiddenCharacter reports whether any row contains a forbidden
// character.
func hasForbiddenCharacter(rows []string) bool {
	for _, row := range rows {
		if strings.ContainsAny(row, ForbiddenCharacters) {
			return true
		}
	}
	return false
}

// Duplicates returns every value that occurs more than once in rows, once
// each, in the order in which the first repetition was seen.
func Duplicates(rows []string) []string {
	seen := make(map[string]bool, len(rows))
	reported := make(map[string]bool)
	var dups []string

	for _, row := range rows {
		if !seen[row] {
			seen[row] = true
			continue
		}
		if !reported[row] {
			reported[row] = true
			dups = append(dups, row)
		}
	}
	return dups
}
