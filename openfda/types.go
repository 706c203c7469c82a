package openfda

// CandidateMatch is the compact summary returned by Search, enough for a
// caller to pick a record before fetching the full label.
type CandidateMatch struct {
	ID           string  `json:"id"`
	BrandName    *string `json:"brand_name"`
	GenericName  *string `json:"generic_name"`
	Manufacturer *string `json:"manufacturer"`
	ProductType  *string `json:"product_type"`
}

// SearchResult is the deduplicated result set for one search query. Total
// is the source-reported match count, which can exceed len(Results).
type SearchResult struct {
	Results []CandidateMatch `json:"results"`
	Total   int              `json:"total"`
}

// LabelRecord is one drug label as published by openFDA, with long-form
// text normalized. Optional fields are nil when the source omits them, so
// callers can tell "absent" from "present but blank".
type LabelRecord struct {
	ID               string  `json:"id"`
	BrandName        *string `json:"brand_name,omitempty"`
	GenericName      *string `json:"generic_name,omitempty"`
	Manufacturer     *string `json:"manufacturer,omitempty"`
	ProductType      *string `json:"product_type,omitempty"`
	Route            *string `json:"route,omitempty"`
	ActiveIngredient *string `json:"active_ingredient,omitempty"`
	Purpose          *string `json:"purpose,omitempty"`
	Indications      *string `json:"indications,omitempty"`
	DosageText       *string `json:"dosage_and_administration,omitempty"`
	Warnings         *string `json:"warnings,omitempty"`
	DoNotUse         *string `json:"do_not_use,omitempty"`
	AskDoctor        *string `json:"ask_doctor,omitempty"`
	StopUse          *string `json:"stop_use,omitempty"`
	Storage          *string `json:"storage,omitempty"`
	Disclaimer       string  `json:"disclaimer,omitempty"`
}

// Raw envelope shapes for the openFDA label endpoint. Every field of
// interest is list-valued; element 0 is taken when present.

type labelEnvelope struct {
	Meta    labelMeta     `json:"meta"`
	Results []labelResult `json:"results"`
}

type labelMeta struct {
	Results struct {
		Total int `json:"total"`
	} `json:"results"`
}

type labelResult struct {
	ID                      string        `json:"id"`
	OpenFDA                 openfdaFields `json:"openfda"`
	ActiveIngredient        []string      `json:"active_ingredient"`
	Purpose                 []string      `json:"purpose"`
	IndicationsAndUsage     []string      `json:"indications_and_usage"`
	DosageAndAdministration []string      `json:"dosage_and_administration"`
	Warnings                []string      `json:"warnings"`
	DoNotUse                []string      `json:"do_not_use"`
	AskDoctor               []string      `json:"ask_doctor"`
	StopUse                 []string      `json:"stop_use"`
	StorageAndHandling      []string      `json:"storage_and_handling"`
}

type openfdaFields struct {
	BrandName        []string `json:"brand_name"`
	GenericName      []string `json:"generic_name"`
	ManufacturerName []string `json:"manufacturer_name"`
	ProductType      []string `json:"product_type"`
	Route            []string `json:"route"`
}
