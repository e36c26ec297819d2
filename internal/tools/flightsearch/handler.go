// internal/tools/flightsearch/handler.go
package flightsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"flight-concierge/internal/agent"
	"flight-concierge/internal/amadeus"
	"flight-concierge/internal/common/database"
	"flight-concierge/internal/common/logger"
)

const (
	ToolName = "get_flights_data"

	outputTimeLayout = "02/01/2006 15:04"
	dateLayout       = "2006-01-02"
)

// FlightSearcher is the slice of the Amadeus client the tool needs.
type FlightSearcher interface {
	SearchFlightOffers(ctx context.Context, query amadeus.SearchQuery) ([]amadeus.FlightOffer, error)
}

type Handler struct {
	config   *Config
	searcher FlightSearcher
	cache    *database.RedisClient
	logger   logger.Logger
	now      func() time.Time
}

// NewHandler creates the flight search tool. cache may be nil, in which case
// every request goes to the API.
func NewHandler(config *Config, searcher FlightSearcher, cache *database.RedisClient, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		searcher: searcher,
		cache:    cache,
		logger: log.WithFields(map[string]interface{}{
			"tool": ToolName,
		}),
		now: time.Now,
	}
}

func (h *Handler) Name() string { return ToolName }

func (h *Handler) Description() string {
	return "Fetches flight offers between two airports on a given date and rates them by " +
		"price, duration, and schedule. Weights (0-5) set the relative importance of each " +
		"attribute; they are normalized before rating. Lower ratings are better and the " +
		"returned flights are sorted best-first."
}

func (h *Handler) Parameters() []agent.ToolParam {
	return []agent.ToolParam{
		{Name: "source", Type: "string", Description: "IATA code of the departure airport, e.g. 'CAI'.", Required: true},
		{Name: "destination", Type: "string", Description: "IATA code of the arrival airport, e.g. 'LHR'.", Required: true},
		{Name: "date", Type: "string", Description: "Departure date in YYYY-MM-DD format. Defaults to tomorrow."},
		{Name: "is_flights_direct", Type: "boolean", Description: "Restrict the search to direct flights only.", Default: false},
		{Name: "currency", Type: "string", Description: "ISO 4217 currency code for prices.", Default: "USD"},
		{Name: "price_weight", Type: "number", Description: "Importance of the flight price. Higher values prioritize cheaper flights.", Default: 0},
		{Name: "duration_weight", Type: "number", Description: "Importance of the flight duration. Longer flights are penalized more with higher values.", Default: 0},
		{Name: "late_arrival_weight", Type: "number", Description: "Penalty weight for flights arriving after 10 PM.", Default: 0},
		{Name: "early_departure_weight", Type: "number", Description: "Penalty weight for flights departing before 6 AM.", Default: 0},
		{Name: "non_direct_flight_weight", Type: "number", Description: "Penalty weight for flights with layovers.", Default: 0},
	}
}

// Execute implements the agent tool contract: parse arguments, search and
// rate, then render the numbered flight list for the model.
func (h *Handler) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	input, err := h.parseInput(args)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	flights, err := h.Search(ctx, input)
	if err != nil {
		return "", err
	}

	return FormatList(flights), nil
}

// Search fetches offers for the route, rates each one, and returns the
// summaries sorted by rating ascending. API failures are downgraded to an
// empty result so the agent can still answer.
func (h *Handler) Search(ctx context.Context, input *Input) ([]FlightSummary, error) {
	offers, err := h.fetchOffers(ctx, input)
	if err != nil {
		h.logger.Warn("flight search failed, returning empty results", map[string]interface{}{
			"source":      input.Source,
			"destination": input.Destination,
			"date":        input.Date,
			"error":       err.Error(),
		})
		return []FlightSummary{}, nil
	}

	weights := NewRatingWeights(
		input.PriceWeight,
		input.DurationWeight,
		input.LateArrivalWeight,
		input.EarlyDepartureWeight,
		input.NonDirectFlightWeight,
	)

	flights := make([]FlightSummary, 0, len(offers))
	for _, offer := range offers {
		summary, err := h.summarize(offer, weights)
		if err != nil {
			h.logger.Warn("skipping malformed offer", map[string]interface{}{
				"offerId": offer.ID,
				"error":   err.Error(),
			})
			continue
		}
		flights = append(flights, summary)
	}

	// Stable keeps the API order for ties, including the all-zero-weights
	// case where every rating is 0.
	sort.SliceStable(flights, func(i, j int) bool {
		return flights[i].Rating < flights[j].Rating
	})

	h.logger.Info("flight search completed", map[string]interface{}{
		"source":      input.Source,
		"destination": input.Destination,
		"date":        input.Date,
		"flightCount": len(flights),
	})

	return flights, nil
}

func (h *Handler) fetchOffers(ctx context.Context, input *Input) ([]amadeus.FlightOffer, error) {
	query := amadeus.SearchQuery{
		Origin:        input.Source,
		Destination:   input.Destination,
		DepartureDate: input.Date,
		Currency:      input.Currency,
		NonStop:       input.IsFlightsDirect,
		Max:           h.config.MaxOffers,
	}

	cacheKey := fmt.Sprintf("flights:%s:%s:%s:%s:%t",
		query.Origin, query.Destination, query.DepartureDate, query.Currency, query.NonStop)

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, cacheKey); err == nil {
			var offers []amadeus.FlightOffer
			if err := json.Unmarshal([]byte(cached), &offers); err == nil {
				h.logger.Debug("cache hit", map[string]interface{}{"key": cacheKey})
				return offers, nil
			}
			// Poisoned entry, drop it and fall through to the API.
			_ = h.cache.Del(ctx, cacheKey)
		}
	}

	offers, err := h.searcher.SearchFlightOffers(ctx, query)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if payload, err := json.Marshal(offers); err == nil {
			if err := h.cache.Set(ctx, cacheKey, payload, h.config.CacheTTL); err != nil {
				h.logger.Warn("cache write failed", map[string]interface{}{
					"key":   cacheKey,
					"error": err.Error(),
				})
			}
		}
	}

	return offers, nil
}

func (h *Handler) summarize(offer amadeus.FlightOffer, weights RatingWeights) (FlightSummary, error) {
	rating, err := weights.Rate(offer)
	if err != nil {
		return FlightSummary{}, err
	}

	departure, err := offer.DepartureTime()
	if err != nil {
		return FlightSummary{}, err
	}
	arrival, err := offer.ArrivalTime()
	if err != nil {
		return FlightSummary{}, err
	}

	first := offer.Segments()[0]
	return FlightSummary{
		Price:        offer.Price.Total,
		Departure:    departure.Format(outputTimeLayout),
		Arrival:      arrival.Format(outputTimeLayout),
		Airline:      first.CarrierCode,
		FlightNumber: first.Number,
		IsDirect:     offer.IsDirect(),
		Rating:       rating,
	}, nil
}

func (h *Handler) parseInput(args map[string]interface{}) (*Input, error) {
	input := &Input{
		Source:                strings.ToUpper(strings.TrimSpace(stringArg(args, "source"))),
		Destination:           strings.ToUpper(strings.TrimSpace(stringArg(args, "destination"))),
		Date:                  strings.TrimSpace(stringArg(args, "date")),
		IsFlightsDirect:       boolArg(args, "is_flights_direct"),
		Currency:              strings.ToUpper(strings.TrimSpace(stringArg(args, "currency"))),
		PriceWeight:           numberArg(args, "price_weight"),
		DurationWeight:        numberArg(args, "duration_weight"),
		LateArrivalWeight:     numberArg(args, "late_arrival_weight"),
		EarlyDepartureWeight:  numberArg(args, "early_departure_weight"),
		NonDirectFlightWeight: numberArg(args, "non_direct_flight_weight"),
	}

	if input.Source == "" {
		return nil, fmt.Errorf("source is required")
	}
	if input.Destination == "" {
		return nil, fmt.Errorf("destination is required")
	}

	if input.Currency == "" {
		input.Currency = h.config.DefaultCurrency
	}

	if input.Date == "" {
		input.Date = h.now().AddDate(0, 0, 1).Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, input.Date); err != nil {
		return nil, fmt.Errorf("date must be in YYYY-MM-DD format: %q", input.Date)
	}

	return input, nil
}

// FormatList renders the flights as the numbered list the model consumes,
// one line per flight, best rating first.
func FormatList(flights []FlightSummary) string {
	if len(flights) == 0 {
		return "No flights found."
	}

	var b strings.Builder
	for i, f := range flights {
		fmt.Fprintf(&b, "%d- (%s, %s, %t) Price: %s, Departure: %s, Arrival: %s\n",
			i+1, f.Airline, f.FlightNumber, f.IsDirect, f.Price, f.Departure, f.Arrival)
	}
	return b.String()
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func boolArg(args map[string]interface{}, key string) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return false
}

func numberArg(args map[string]interface{}, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}
