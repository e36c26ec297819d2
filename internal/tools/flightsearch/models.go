// internal/tools/flightsearch/models.go
package flightsearch

// Input holds the parsed arguments of one flight search request.
type Input struct {
	Source                string `json:"source"`
	Destination           string `json:"destination"`
	Date                  string `json:"date"` // YYYY-MM-DD
	IsFlightsDirect       bool   `json:"is_flights_direct"`
	Currency              string `json:"currency"`
	PriceWeight           float64
	DurationWeight        float64
	LateArrivalWeight     float64
	EarlyDepartureWeight  float64
	NonDirectFlightWeight float64
}

// FlightSummary is one rated flight in the tool output, sorted by rating
// ascending (lower is better).
type FlightSummary struct {
	Price        string  `json:"price"`
	Departure    string  `json:"departure"` // DD/MM/YYYY HH:MM
	Arrival      string  `json:"arrival"`   // DD/MM/YYYY HH:MM
	Airline      string  `json:"airline"`
	FlightNumber string  `json:"flight_number"`
	IsDirect     bool    `json:"is_direct"`
	Rating       float64 `json:"rating"`
}
