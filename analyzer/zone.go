package analyzer

import (
	"fmt"
	"strconv"
)

// Zone is the risk tier that determines approval routing.
type Zone string

const (
	ZoneGreen  Zone = "green"
	ZoneYellow Zone = "yellow"
	ZoneRed    Zone = "red"
)

// DocumentForm describes which form the contract document uses.
type DocumentForm string

const (
	FormTemplate     DocumentForm = "Типовая форма (ТФ)"
	FormCounterparty DocumentForm = "Форма контрагента"
	FormFree         DocumentForm = "Свободная форма"
)

// DocumentForms lists the accepted document form values.
var DocumentForms = []DocumentForm{FormTemplate, FormCounterparty, FormFree}

// RedDealTypes always route to the red zone regardless of amount or form.
var RedDealTypes = []string{
	"Аренда вагонов",
	"Лизинг вагонов",
	"Покупка вагонов",
	"Договор с РЖД",
	"Кредит",
	"Займ",
}

// YellowDealTypes route to the yellow zone unless a red rule fired first.
var YellowDealTypes = []string{
	"Договор ТЭО",
	"Рамочный договор",
	"Единственный поставщик",
}

// Thresholds are the monetary cutoffs of the zone ladder. All comparisons
// are strict: an amount equal to a threshold does not exceed it.
type Thresholds struct {
	GreenTemplateMax    float64 `json:"green_template_max" yaml:"green_template_max"`
	GreenNonTemplateMax float64 `json:"green_non_template_max" yaml:"green_non_template_max"`
	YellowMax           float64 `json:"yellow_max" yaml:"yellow_max"`
}

// DefaultThresholds are the regulation's documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		GreenTemplateMax:    100_000,
		GreenNonTemplateMax: 50_000,
		YellowMax:           5_000_000,
	}
}

// ZoneDecision is the outcome of zone classification. It is immutable:
// a re-run always produces a fresh decision that replaces the old one.
type ZoneDecision struct {
	Zone           Zone   `json:"zone"`
	Reason         string `json:"reason"`
	LegalReview    bool   `json:"legal_review"`
	TurnaroundDays int    `json:"turnaround_days"`
}

// ClassifyZone maps (amount, document form, deal type) to a risk zone.
// Pure and total; rules are evaluated in order and the first match wins.
func ClassifyZone(amount float64, form DocumentForm, dealType string, t Thresholds) ZoneDecision {
	if containsString(RedDealTypes, dealType) {
		return ZoneDecision{
			Zone:           ZoneRed,
			Reason:         "Тип сделки: " + dealType,
			LegalReview:    true,
			TurnaroundDays: 10,
		}
	}
	if amount > t.YellowMax {
		return ZoneDecision{
			Zone:           ZoneRed,
			Reason:         fmt.Sprintf("Сумма превышает %s ₽", groupThousands(t.YellowMax)),
			LegalReview:    true,
			TurnaroundDays: 10,
		}
	}
	if containsString(YellowDealTypes, dealType) {
		return ZoneDecision{
			Zone:           ZoneYellow,
			Reason:         "Тип сделки: " + dealType,
			LegalReview:    true,
			TurnaroundDays: 5,
		}
	}
	if form == FormTemplate {
		if amount > t.GreenTemplateMax {
			return ZoneDecision{
				Zone:           ZoneYellow,
				Reason:         fmt.Sprintf("ТФ свыше %s ₽", groupThousands(t.GreenTemplateMax)),
				LegalReview:    true,
				TurnaroundDays: 5,
			}
		}
	} else if amount > t.GreenNonTemplateMax {
		return ZoneDecision{
			Zone:           ZoneYellow,
			Reason:         fmt.Sprintf("Нетиповая форма свыше %s ₽", groupThousands(t.GreenNonTemplateMax)),
			LegalReview:    true,
			TurnaroundDays: 5,
		}
	}
	return ZoneDecision{
		Zone:   ZoneGreen,
		Reason: "Зелёный коридор (п. 4.1 Регламента)",
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// groupThousands renders an amount with space-separated thousands groups,
// the convention used in the regulation's reason strings.
func groupThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
