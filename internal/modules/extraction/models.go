package extraction

// RawEntry is one loosely-typed entry as returned by the external
// document-extraction model. It must pass through the normalizer
// before becoming anything the rest of the system touches.
type RawEntry struct {
	Label    string      `json:"label"`
	Amount   interface{} `json:"amount"` // number or text, possibly signed
	Currency string      `json:"currency,omitempty"`
	Kind     string      `json:"kind,omitempty"`
	Category string      `json:"category,omitempty"`
	Date     string      `json:"date,omitempty"`
}

// Extraction is the raw extraction object for one document.
type Extraction struct {
	Entries     []RawEntry `json:"entries"`
	PeriodLabel string     `json:"period_label,omitempty"`
	RawText     string     `json:"raw_text,omitempty"`
}

// CandidateRow is a normalized, deduplicated transaction candidate.
// Not persisted: the caller reviews candidates before committing them
// as transactions.
type CandidateRow struct {
	Date           string  `json:"date"`
	Type           string  `json:"type"`
	Category       string  `json:"category"`
	Description    string  `json:"description"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	OriginalAmount float64 `json:"original_amount"`
}

// Meta describes how a batch was normalized.
type Meta struct {
	Count               int      `json:"count"`
	USDRateUsed         *float64 `json:"usd_rate_used,omitempty"`
	USDSource           string   `json:"usd_source,omitempty"`
	TaxesAppliedPercent float64  `json:"taxes_applied_percent"`
}

// Result is the normalizer output.
type Result struct {
	Rows []CandidateRow `json:"rows"`
	Meta Meta           `json:"meta"`
}

// NormalizeRequest is the HTTP payload for POST /extraction/normalize.
type NormalizeRequest struct {
	Extraction
	MaxRows int `json:"max_rows,omitempty"`
}
