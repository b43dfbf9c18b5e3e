package normalization

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Supported currency conventions. The first entry is the fallback.
var currencyLocales = []language.Tag{
	language.BrazilianPortuguese,
	language.AmericanEnglish,
}

var (
	currencyMatcher = language.NewMatcher(currencyLocales)
	currencyJunk    = regexp.MustCompile(`[^0-9,.\-]`)
	leadingNumber   = regexp.MustCompile(`^-?(?:\d+(?:\.\d*)?|\.\d+)`)
)

// CurrencyNormalizer converts monetary values from the backend into float64.
// Strings are read with the decimal and grouping separators of its locale.
type CurrencyNormalizer struct {
	locale   language.Tag
	decimal  string
	grouping string
}

var defaultCurrency = NewCurrencyNormalizer("pt-BR")

// NewCurrencyNormalizer builds a normalizer for a BCP 47 tag. Tags that match no
// supported convention fall back to pt-BR.
func NewCurrencyNormalizer(locale string) *CurrencyNormalizer {
	tag := currencyLocales[0]
	if parsed, err := language.Parse(strings.TrimSpace(locale)); err == nil {
		if _, index, confidence := currencyMatcher.Match(parsed); confidence != language.No {
			tag = currencyLocales[index]
		}
	}

	n := &CurrencyNormalizer{locale: tag, decimal: ",", grouping: "."}
	if tag == language.AmericanEnglish {
		n.decimal, n.grouping = ".", ","
	}
	return n
}

// Locale returns the convention in use.
func (n *CurrencyNormalizer) Locale() language.Tag {
	return n.locale
}

// Normalize never fails: nil, unknown types and unparsable strings become 0.
// Numbers pass through untouched, negatives included.
func (n *CurrencyNormalizer) Normalize(value any) float64 {
	switch typed := value.(type) {
	case nil:
		return 0
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case json.Number:
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return n.parse(typed.String())
	case string:
		return n.parse(typed)
	default:
		return 0
	}
}

func (n *CurrencyNormalizer) parse(raw string) float64 {
	cleaned := currencyJunk.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, n.grouping, "")
	if n.decimal != "." {
		cleaned = strings.ReplaceAll(cleaned, n.decimal, ".")
	}

	match := leadingNumber.FindString(cleaned)
	if match == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// NormalizeCurrency applies the pt-BR convention.
func NormalizeCurrency(value any) float64 {
	return defaultCurrency.Normalize(value)
}
