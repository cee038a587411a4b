package headline

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizationError reports a raw tuple that is not a real headline,
// e.g. a boilerplate list item captured by the page parser.
type NormalizationError struct {
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("not a headline: %s", e.Reason)
}

// escapeRules makes text safe for the LaTeX digest. The rules are an
// ordered list, not a map: the literal-ampersand rule must run after
// the HTML entity rules so already-escaped entities are not escaped
// twice, and the bare-quote rules must run after the open-quote rules.
var escapeRules = [][2]string{
	{"&amp;", `\&`},
	{"&gt;", ">"},
	{"&lt;", "<"},
	{"&", `\&`},
	{"$", `\$`},
	{"%", `\%`},
	{"#", `\#`},
	{` "`, " ``"},
	{" '", " `"},
	{`"`, "''"},
	{"\u00a0", " "},
}

// EscapeText applies the ordered substitution rules for LaTeX output.
func EscapeText(s string) string {
	for _, rule := range escapeRules {
		s = strings.ReplaceAll(s, rule[0], rule[1])
	}
	return s
}

var (
	trackingPrefixPattern = regexp.MustCompile(`^http.*\*`)
	citeTagPattern        = regexp.MustCompile(`</?cite>`)
)

// Normalizer canonicalizes raw headline tuples into storable records.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize cleans a raw tuple into a Record. Dates are not resolved
// here; the caller fills Date and LookupDate. A tuple without a title
// or without a recognizable source yields a NormalizationError.
func (n *Normalizer) Normalize(symbol string, raw RawHeadline) (Record, error) {
	title := norm.NFC.String(strings.TrimSpace(raw.Title))
	if title == "" {
		return Record{}, &NormalizationError{Reason: "missing title"}
	}

	source := strings.TrimSpace(raw.Source)
	if source == "" || source == "None" {
		return Record{}, &NormalizationError{Reason: "missing source"}
	}
	source = citeTagPattern.ReplaceAllString(source, "")
	source = strings.TrimPrefix(source, "at ")

	link := trackingPrefixPattern.ReplaceAllString(strings.TrimSpace(raw.Link), "")

	return Record{
		Symbol:   symbol,
		Headline: EscapeText(title),
		URL:      link,
		Source:   EscapeText(strings.TrimSpace(source)),
	}, nil
}
