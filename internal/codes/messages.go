package codes

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// DefaultLanguage is used when no supported language matches the request.
var DefaultLanguage = language.French

var supported = []language.Tag{language.French, language.English}

var matcher = language.NewMatcher(supported)

// Message keys. The English text doubles as the key.
const (
	msgTooLarge   = "The file must not exceed %s."
	msgUnreadable = "The file is empty or could not be read."
	msgNoCodes    = "The file does not contain any activation code."
	msgFormat     = "The file format is not respected: one code per line, with no comma, semicolon or period. Download the template: %s"
	msgDuplicates = "Duplicate codes were found in the file: %s."
	msgSizeMB     = "%s MB"
	msgSizeKB     = "%s KB"
	msgSizeBytes  = "%s bytes"

	actTooLarge   = "Split the codes across several files."
	actUnreadable = "Upload a UTF-8 text file with one code per line."
	actNoCodes    = "Add at least one activation code to the file."
	actFormat     = "Start from the downloadable template."
	actDuplicates = "Remove the repeated codes and upload the file again."
)

var french = map[string]string{
	msgTooLarge:   "Le poids du fichier ne doit pas dépasser %s.",
	msgUnreadable: "Le fichier est vide ou illisible.",
	msgNoCodes:    "Le fichier ne contient aucun code d’activation.",
	msgFormat:     "Le format du fichier n’est pas respecté : un seul code par ligne, sans virgule, point-virgule ni point. Téléchargez le gabarit : %s",
	msgDuplicates: "Plusieurs codes identiques ont été trouvés dans le fichier : %s.",
	msgSizeMB:     "%s Mo",
	msgSizeKB:     "%s Ko",
	msgSizeBytes:  "%s octets",

	actTooLarge:   "Répartissez les codes dans plusieurs fichiers.",
	actUnreadable: "Importez un fichier texte UTF-8 avec un code par ligne.",
	actNoCodes:    "Ajoutez au moins un code d’activation au fichier.",
	actFormat:     "Partez du gabarit téléchargeable.",
	actDuplicates: "Retirez les codes en double puis importez à nouveau le fichier.",
}

// Messages renders the validator's user-facing messages.
type Messages struct {
	cat catalog.Catalog
}

// NewMessages builds the French and English catalog.
func NewMessages() *Messages {
	b := catalog.NewBuilder(catalog.Fallback(DefaultLanguage))
	for key, fr := range french {
		// Keys are static; SetString only fails on malformed messages.
		if err := b.SetString(language.French, key, fr); err != nil {
			panic(fmt.Sprintf("codes: french message %q: %v", key, err))
		}
		if err := b.SetString(language.English, key, key); err != nil {
			panic(fmt.Sprintf("codes: english message %q: %v", key, err))
		}
	}
	return &Messages{cat: b}
}

// Sprintf formats the message for key in the closest supported language.
func (m *Messages) Sprintf(tag language.Tag, key string, args ...any) string {
	p := message.NewPrinter(Supported(tag), message.Catalog(m.cat))
	return p.Sprintf(key, args...)
}

// Supported maps tag to the closest language the catalog carries.
func Supported(tag language.Tag) language.Tag {
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return DefaultLanguage
	}
	return supported[idx]
}

// MatchLanguage picks a supported language from an Accept-Language header
// value. Empty or malformed headers yield DefaultLanguage.
func MatchLanguage(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLanguage
	}
	return supported[idx]
}

// sizeLabel renders a byte count in the largest whole-ish unit.
func (m *Messages) sizeLabel(tag language.Tag, n int64) string {
	const (
		kib = 1024
		mib = 1024 * kib
	)
	switch {
	case n >= mib:
		return m.Sprintf(tag, msgSizeMB, trimFloat(float64(n)/mib))
	case n >= kib:
		return m.Sprintf(tag, msgSizeKB, trimFloat(float64(n)/kib))
	default:
		return m.Sprintf(tag, msgSizeBytes, fmt.Sprint(n))
	}
}

// trimFloat formats f with at most one decimal and no trailing ".0".
func trimFloat(f float64) string {
	s := fmt.Sprintf("%.1f", f)
	return strings.TrimSuffix(s, ".0")
}

// duplicateList joins up to max codes, appending an ellipsis when dups is
// longer. truncated reports whether codes were left out.
func duplicateList(dups []string, max int) (list string, truncated bool) {
	if len(dups) > max {
		return strings.Join(dups[:max], ", ") + "…", true
	}
	return strings.Join(dups, ", "), false
}
