package analyzer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DocCategory is the coarse document classification.
type DocCategory string

const (
	CategoryContract DocCategory = "contract"
	CategoryInvoice  DocCategory = "invoice"
	CategoryAct      DocCategory = "act"
	CategoryUnknown  DocCategory = "unknown"
)

// DocClassification is the result of inspecting the document prefix.
// TemplateHint, when set, names the built-in template the document most
// likely belongs to.
type DocClassification struct {
	Category     DocCategory `json:"category"`
	Name         string      `json:"name"`
	TemplateHint string      `json:"template_hint,omitempty"`
	IsContract   bool        `json:"is_contract"`
}

// ExtractionResult holds the metadata pulled out of the document text.
// Every field is independently optional: extraction never fails, a field
// that could not be recognized is simply absent (nil, empty or zero).
type ExtractionResult struct {
	Classification DocClassification `json:"classification"`
	Date           *time.Time        `json:"date,omitempty"`
	Number         string            `json:"number,omitempty"`
	Amount         float64           `json:"amount,omitempty"`
	Counterparty   string            `json:"counterparty,omitempty"`
}

// Extractor pulls structured metadata out of raw contract text using the
// locale-specific patterns of the regulation. The zero value is usable;
// exclusions name the operator's own organization so it is never reported
// as the counterparty.
type Extractor struct {
	exclusions []string
}

// NewExtractor creates an Extractor with the given own-organization
// exclusion substrings (matched case-insensitively).
func NewExtractor(exclusions []string) *Extractor {
	return &Extractor{exclusions: exclusions}
}

var monthNames = map[string]time.Month{
	"января": 1, "февраля": 2, "марта": 3, "апреля": 4,
	"мая": 5, "июня": 6, "июля": 7, "августа": 8,
	"сентября": 9, "октября": 10, "ноября": 11, "декабря": 12,
}

var (
	longDateRe    = regexp.MustCompile(`«?(\d{1,2})»?\s*([а-яё]+)\s*(\d{4})`)
	numericDateRe = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})`)
	numberRe      = regexp.MustCompile(`№\s*([A-Za-zА-Яа-я0-9\-/]+)`)
	amountRe      = regexp.MustCompile(`(\d[\d\s]*\d)\s*(?:\([^)]+\))?\s*руб`)
	entityRe      = regexp.MustCompile(`(?:ООО|ОАО|ЗАО|ПАО|АО)\s*[«"]([^»"]+)[»"]`)
)

// ExtractAll runs every extractor over the text.
func (e *Extractor) ExtractAll(text string) ExtractionResult {
	return ExtractionResult{
		Classification: e.Classify(text),
		Date:           e.ExtractDate(text),
		Number:         e.ExtractNumber(text),
		Amount:         e.ExtractAmount(text),
		Counterparty:   e.ExtractCounterparty(text),
	}
}

// ExtractDate finds the document date. The localized long form
// («D» month-name YYYY) is tried first, then a numeric D.M.YYYY fallback.
// Invalid calendar values and unknown month names are no match, not errors.
func (e *Extractor) ExtractDate(text string) *time.Time {
	if m := longDateRe.FindStringSubmatch(strings.ToLower(text)); m != nil {
		if month, ok := monthNames[m[2]]; ok {
			day, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[3])
			if d, ok := makeDate(year, int(month), day); ok {
				return &d
			}
		}
	}
	if m := numericDateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if d, ok := makeDate(year, month, day); ok {
			return &d
		}
	}
	return nil
}

// makeDate validates calendar values by round-tripping through time.Date,
// which normalizes out-of-range components (month 13 becomes January).
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// ExtractNumber finds the document number after the № marker within the
// first 500 characters. Tokens shorter than 3 characters are rejected.
func (e *Extractor) ExtractNumber(text string) string {
	m := numberRe.FindStringSubmatch(firstRunes(text, 500))
	if m == nil {
		return ""
	}
	token := strings.TrimSpace(m[1])
	if len([]rune(token)) < 3 {
		return ""
	}
	return token
}

// ExtractAmount finds the first space-grouped digit run followed by a
// currency word and parses it. Returns 0 when no amount is recognized.
func (e *Extractor) ExtractAmount(text string) float64 {
	m := amountRe.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return 0
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, m[1])
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	return v
}

// ExtractCounterparty returns the first quoted legal-entity mention whose
// name does not contain any own-organization exclusion substring, so the
// operator's own entity is never reported as the counterparty.
func (e *Extractor) ExtractCounterparty(text string) string {
	for _, m := range entityRe.FindAllStringSubmatch(text, -1) {
		name := strings.ToUpper(m[1])
		excluded := false
		for _, x := range e.exclusions {
			if strings.Contains(name, strings.ToUpper(x)) {
				excluded = true
				break
			}
		}
		if !excluded {
			return m[0]
		}
	}
	return ""
}

// Classify inspects the first 2000 characters, lowercased, and walks the
// keyword ladder in priority order; the first matching branch wins.
func (e *Extractor) Classify(text string) DocClassification {
	prefix := strings.ToLower(firstRunes(text, 2000))

	if strings.Contains(prefix, "договор") || strings.Contains(prefix, "контракт") {
		if strings.Contains(prefix, "услуг") &&
			(strings.Contains(prefix, "вагон") || strings.Contains(prefix, "перевоз")) {
			return DocClassification{
				Category: CategoryContract, Name: "Договор ТЭО",
				TemplateHint: TemplateTEO, IsContract: true,
			}
		}
		if strings.Contains(prefix, "поставк") {
			return DocClassification{
				Category: CategoryContract, Name: "Договор поставки",
				TemplateHint: TemplateSupply, IsContract: true,
			}
		}
		return DocClassification{Category: CategoryContract, Name: "Договор", IsContract: true}
	}
	if strings.Contains(prefix, "счёт") || strings.Contains(prefix, "счет") {
		return DocClassification{Category: CategoryInvoice, Name: "Счёт на оплату"}
	}
	if strings.Contains(firstRunes(prefix, 200), "акт") {
		return DocClassification{Category: CategoryAct, Name: "Акт"}
	}
	return DocClassification{Category: CategoryUnknown, Name: "Документ"}
}
