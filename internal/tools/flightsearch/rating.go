// internal/tools/flightsearch/rating.go
package flightsearch

import (
	"math"
	"strconv"

	"flight-concierge/internal/amadeus"
)

const (
	minWeight = 0.0
	maxWeight = 5.0

	// Flat penalty applied for arrivals after 10 PM, departures before
	// 6 AM, and flights with layovers.
	schedulePenalty = 20.0

	lateArrivalHour    = 22
	earlyDepartureHour = 6
)

// RatingWeights control how strongly each flight attribute pulls the
// composite rating. Each weight is clamped to [0, 5] and then the set is
// normalized to sum to 1; if every weight is zero the set stays zero and all
// ratings degenerate to 0.
type RatingWeights struct {
	Price           float64
	Duration        float64
	LateArrival     float64
	EarlyDeparture  float64
	NonDirectFlight float64
}

func NewRatingWeights(price, duration, lateArrival, earlyDeparture, nonDirect float64) RatingWeights {
	w := RatingWeights{
		Price:           clampWeight(price),
		Duration:        clampWeight(duration),
		LateArrival:     clampWeight(lateArrival),
		EarlyDeparture:  clampWeight(earlyDeparture),
		NonDirectFlight: clampWeight(nonDirect),
	}

	sum := w.Price + w.Duration + w.LateArrival + w.EarlyDeparture + w.NonDirectFlight
	if sum != 0 {
		w.Price /= sum
		w.Duration /= sum
		w.LateArrival /= sum
		w.EarlyDeparture /= sum
		w.NonDirectFlight /= sum
	}

	return w
}

func clampWeight(v float64) float64 {
	return math.Max(minWeight, math.Min(v, maxWeight))
}

// Rate computes the composite rating for one offer. Lower ratings are
// better: price and duration contribute directly, plus flat penalties for
// late arrival, early departure, and layovers. The result is rounded to two
// decimal places.
func (w RatingWeights) Rate(offer amadeus.FlightOffer) (float64, error) {
	price, err := strconv.ParseFloat(offer.Price.Total, 64)
	if err != nil {
		return 0, err
	}

	departure, err := offer.DepartureTime()
	if err != nil {
		return 0, err
	}
	arrival, err := offer.ArrivalTime()
	if err != nil {
		return 0, err
	}

	durationHours := arrival.Sub(departure).Hours()

	var latePenalty float64
	if arrival.Hour() >= lateArrivalHour {
		latePenalty = schedulePenalty
	}

	var earlyPenalty float64
	if departure.Hour() < earlyDepartureHour {
		earlyPenalty = schedulePenalty
	}

	var nonDirectPenalty float64
	if !offer.IsDirect() {
		nonDirectPenalty = schedulePenalty
	}

	rating := w.Price*price +
		w.Duration*durationHours +
		w.LateArrival*latePenalty +
		w.EarlyDeparture*earlyPenalty +
		w.NonDirectFlight*nonDirectPenalty

	return math.Round(rating*100) / 100, nil
}
