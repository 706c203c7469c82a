// Package dosing computes approximate single-dose and daily-cap estimates
// from a fixed, ordered table of per-drug dosing rules. Estimates are
// educational only and never replace the label text or professional advice.
package dosing

// Guideline is the dosing strategy attached to a rule. Exactly two
// strategies exist: weight-proportional dosing with clamps, and fixed
// doses selected by an age threshold.
type Guideline interface {
	guideline()
}

// WeightBased doses proportionally to body weight, clamped to a maximum
// single dose, with a daily cap of min(MaxDailyDosePerKg*weight, MaxDailyTotal).
type WeightBased struct {
	DosePerKg         float64 `json:"dose_per_kg"`
	MaxSingleDose     float64 `json:"max_single_dose"`
	MaxDailyDosePerKg float64 `json:"max_daily_dose_per_kg"`
	MaxDailyTotal     float64 `json:"max_daily_total"`
}

// FixedByAge uses the pediatric dose below AgeThresholdYears and the adult
// dose at or above it. When no age is supplied the adult dose applies.
type FixedByAge struct {
	PediatricDose     float64 `json:"pediatric_dose"`
	AdultDose         float64 `json:"adult_dose"`
	AgeThresholdYears float64 `json:"age_threshold_years"`
}

func (WeightBased) guideline() {}
func (FixedByAge) guideline()  {}

// Rule binds a guideline to the generic-name fragment it matches.
type Rule struct {
	// Key is an uppercase fragment matched by substring containment against
	// the uppercased generic name, so "ACETAMINOPHEN" also matches
	// "Acetaminophen (Tylenol)".
	Key       string
	Unit      string
	Frequency string
	Guideline Guideline
}

// DefaultTable is the built-in rule table. Order matters: the first rule
// whose key is contained in the generic name wins.
var DefaultTable = []Rule{
	{
		Key:       "ACETAMINOPHEN",
		Unit:      "mg",
		Frequency: "every 4-6 hours",
		Guideline: WeightBased{DosePerKg: 15, MaxSingleDose: 1000, MaxDailyDosePerKg: 75, MaxDailyTotal: 4000},
	},
	{
		Key:       "IBUPROFEN",
		Unit:      "mg",
		Frequency: "every 6-8 hours",
		Guideline: WeightBased{DosePerKg: 10, MaxSingleDose: 400, MaxDailyDosePerKg: 40, MaxDailyTotal: 1200},
	},
	{
		Key:       "AMOXICILLIN",
		Unit:      "mg",
		Frequency: "every 8 hours",
		Guideline: WeightBased{DosePerKg: 25, MaxSingleDose: 500, MaxDailyDosePerKg: 100, MaxDailyTotal: 3000},
	},
	{
		Key:       "DIPHENHYDRAMINE",
		Unit:      "mg",
		Frequency: "every 6 hours",
		Guideline: WeightBased{DosePerKg: 1.25, MaxSingleDose: 50, MaxDailyDosePerKg: 5, MaxDailyTotal: 300},
	},
	{
		Key:       "CETIRIZINE",
		Unit:      "mg",
		Frequency: "once daily",
		Guideline: FixedByAge{PediatricDose: 5, AdultDose: 10, AgeThresholdYears: 6},
	},
	{
		Key:       "AZITHROMYCIN",
		Unit:      "mg",
		Frequency: "once daily",
		Guideline: WeightBased{DosePerKg: 10, MaxSingleDose: 500, MaxDailyDosePerKg: 10, MaxDailyTotal: 500},
	},
}
