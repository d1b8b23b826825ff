package importer

// Row is one loosely typed record from a spreadsheet or CSV export.
// Keys are matched case-insensitively against Spanish and English
// column names.
type Row map[string]interface{}

// Request is the import payload
type Request struct {
	Source string `json:"source"`
	Rows   []Row  `json:"rows"`
}

// Result reports the outcome of an import. Imported is zero whenever
// the batch insert fails: partial imports never happen.
type Result struct {
	Source   string `json:"source"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Total    int    `json:"total"`
}
