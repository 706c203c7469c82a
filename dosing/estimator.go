package dosing

import (
	"fmt"
	"strings"
)

// Estimate is the computed outcome for one request. Matched reports whether
// any rule applied; a false value is a valid, displayable outcome meaning
// "consult the label text instead", not an error. SingleDose and DailyCap
// stay nil when they cannot be computed (no rule, or weight missing for a
// weight-based rule).
type Estimate struct {
	Matched    bool     `json:"matched"`
	RuleKey    string   `json:"rule_key,omitempty"`
	SingleDose *float64 `json:"single_dose,omitempty"`
	DailyCap   *float64 `json:"daily_cap,omitempty"`
	Unit       string   `json:"unit,omitempty"`
	Frequency  string   `json:"frequency,omitempty"`
	Notes      []string `json:"notes,omitempty"`
	AgeWarning string   `json:"age_warning,omitempty"`
}

// Calculate computes a dose estimate for a generic drug name against an
// ordered rule table. Age and weight are optional; nil means not supplied.
// The function is pure: no external calls, no retries.
func Calculate(genericName string, ageYears, weightKg *float64, table []Rule) Estimate {
	est := Estimate{}

	upper := strings.ToUpper(genericName)
	for _, rule := range table {
		if !strings.Contains(upper, rule.Key) {
			continue
		}
		est.Matched = true
		est.RuleKey = rule.Key
		est.Unit = rule.Unit
		est.Frequency = rule.Frequency

		switch g := rule.Guideline.(type) {
		case WeightBased:
			applyWeightBased(&est, g, rule.Unit, weightKg)
		case FixedByAge:
			applyFixedByAge(&est, g, ageYears)
		}
		break
	}

	// Age advisories layer onto every outcome, matched or not.
	if ageYears != nil {
		switch {
		case *ageYears < 2:
			est.AgeWarning = "For children under 2 years, always consult a healthcare provider before administering any medication."
		case *ageYears < 12:
			est.AgeWarning = "Pediatric dosing shown. Always verify with the label information and consult a healthcare provider."
		}
	}

	return est
}

func applyWeightBased(est *Estimate, g WeightBased, unit string, weightKg *float64) {
	if weightKg == nil || *weightKg <= 0 {
		est.Notes = append(est.Notes, "Weight is required for a weight-based dose calculation. Refer to the label dosage information.")
		return
	}

	dose := g.DosePerKg * *weightKg
	if dose > g.MaxSingleDose {
		est.Notes = append(est.Notes, fmt.Sprintf("Adjusted from %.1f %s to the maximum single dose", dose, unit))
		dose = g.MaxSingleDose
	}

	cap := g.MaxDailyDosePerKg * *weightKg
	if cap > g.MaxDailyTotal {
		cap = g.MaxDailyTotal
	}

	est.SingleDose = &dose
	est.DailyCap = &cap
}

func applyFixedByAge(est *Estimate, g FixedByAge, ageYears *float64) {
	// Without an age the threshold cannot be evaluated, so the adult dose
	// applies.
	dose := g.AdultDose
	if ageYears != nil && *ageYears < g.AgeThresholdYears {
		dose = g.PediatricDose
	}
	est.SingleDose = &dose
}
