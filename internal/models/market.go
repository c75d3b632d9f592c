package models

// SpotQuote is the response of the spot endpoint, mirroring the shape the
// dashboard's alert poller consumes.
type SpotQuote struct {
	ID    string  `json:"id"`
	Vs    string  `json:"vs"`
	Price float64 `json:"price"`
}
