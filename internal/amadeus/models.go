// internal/amadeus/models.go
package amadeus

import "time"

// timestampLayout matches the zone-less local timestamps the flight-offers
// API returns, e.g. "2025-03-01T06:25:00".
const timestampLayout = "2006-01-02T15:04:05"

// SearchQuery holds the parameters for a flight-offers search.
type SearchQuery struct {
	Origin        string
	Destination   string
	DepartureDate string // YYYY-MM-DD
	Currency      string // ISO 4217
	NonStop       bool
	Max           int
}

// FlightOffer is a single offer from the flight-offers search response.
type FlightOffer struct {
	ID          string      `json:"id"`
	Itineraries []Itinerary `json:"itineraries"`
	Price       Price       `json:"price"`
}

type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

// Segment is one leg of a multi-leg flight.
type Segment struct {
	Departure   Endpoint `json:"departure"`
	Arrival     Endpoint `json:"arrival"`
	CarrierCode string   `json:"carrierCode"`
	Number      string   `json:"number"`
}

type Endpoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"`
}

type Price struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
}

type searchResponse struct {
	Data []FlightOffer `json:"data"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Time parses the endpoint timestamp in the offer's local time.
func (e Endpoint) Time() (time.Time, error) {
	return time.Parse(timestampLayout, e.At)
}

// Segments returns the segments of the first itinerary.
func (o FlightOffer) Segments() []Segment {
	if len(o.Itineraries) == 0 {
		return nil
	}
	return o.Itineraries[0].Segments
}

// DepartureTime is the departure of the first segment of the first itinerary.
func (o FlightOffer) DepartureTime() (time.Time, error) {
	segs := o.Segments()
	if len(segs) == 0 {
		return time.Time{}, ErrNoSegments
	}
	return segs[0].Departure.Time()
}

// ArrivalTime is the arrival of the last segment of the first itinerary.
func (o FlightOffer) ArrivalTime() (time.Time, error) {
	segs := o.Segments()
	if len(segs) == 0 {
		return time.Time{}, ErrNoSegments
	}
	return segs[len(segs)-1].Arrival.Time()
}

// IsDirect reports whether the first itinerary has exactly one segment.
func (o FlightOffer) IsDirect() bool {
	return len(o.Segments()) == 1
}
