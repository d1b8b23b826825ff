package dolarapi

// Quote is one quoted USD rate from the source.
type Quote struct {
	House   string  `json:"casa"`
	Name    string  `json:"nombre"`
	Buy     float64 `json:"compra"`
	Sell    float64 `json:"venta"`
	Updated string  `json:"fechaActualizacion"`
}

// Rate returns the applicable rate from a quote. The sell side is
// what a consumer pays.
func (q *Quote) Rate() float64 {
	if q == nil {
		return 0
	}
	return q.Sell
}
