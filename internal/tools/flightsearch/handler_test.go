// internal/tools/flightsearch/handler_test.go
package flightsearch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"flight-concierge/internal/amadeus"
	"flight-concierge/internal/common/database"
	"flight-concierge/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeSearcher struct {
	offers    []amadeus.FlightOffer
	err       error
	callCount int
	lastQuery amadeus.SearchQuery
}

func (f *fakeSearcher) SearchFlightOffers(ctx context.Context, query amadeus.SearchQuery) ([]amadeus.FlightOffer, error) {
	f.callCount++
	f.lastQuery = query
	return f.offers, f.err
}

func createTestConfig() *Config {
	return &Config{
		Timeout:         3 * time.Second,
		CacheTTL:        10 * time.Minute,
		MaxOffers:       20,
		DefaultCurrency: "USD",
	}
}

func newTestHandler(t *testing.T, searcher FlightSearcher, cache *database.RedisClient) *Handler {
	h := NewHandler(createTestConfig(), searcher, cache, logger.NewTestLogger(t))
	h.now = func() time.Time {
		return time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC)
	}
	return h
}

func newTestCache(t *testing.T) (*database.RedisClient, *miniredis.Miniredis) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	return &database.RedisClient{Client: client}, srv
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Search_SortsByRating(t *testing.T) {
	searcher := &fakeSearcher{offers: []amadeus.FlightOffer{
		makeOffer("900.00", "2025-03-01T10:00:00", "2025-03-01T14:00:00", 1),
		makeOffer("300.00", "2025-03-01T10:00:00", "2025-03-01T14:00:00", 1),
		makeOffer("600.00", "2025-03-01T10:00:00", "2025-03-01T14:00:00", 1),
	}}
	handler := newTestHandler(t, searcher, nil)

	flights, err := handler.Search(context.Background(), &Input{
		Source:      "CAI",
		Destination: "LHR",
		Date:        "2025-03-01",
		Currency:    "USD",
		PriceWeight: 5,
	})

	require.NoError(t, err)
	require.Len(t, flights, 3)
	assert.Equal(t, "300.00", flights[0].Price)
	assert.Equal(t, "600.00", flights[1].Price)
	assert.Equal(t, "900.00", flights[2].Price)
	assert.True(t, flights[0].Rating < flights[2].Rating)
}

func TestHandler_Search_ZeroWeightsKeepAPIOrder(t *testing.T) {
	searcher := &fakeSearcher{offers: []amadeus.FlightOffer{
		makeOffer("900.00", "2025-03-01T10:00:00", "2025-03-01T14:00:00", 1),
		makeOffer("300.00", "2025-03-01T10:00:00", "2025-03-01T14:00:00", 1),
	}}
	handler := newTestHandler(t, searcher, nil)

	flights, err := handler.Search(context.Background(), &Input{
		Source:      "CAI",
		Destination: "LHR",
		Date:        "2025-03-01",
		Currency:    "USD",
	})

	require.NoError(t, err)
	require.Len(t, flights, 2)
	assert.Equal(t, 0.0, flights[0].Rating)
	assert.Equal(t, "900.00", flights[0].Price) // stable sort keeps API order
}

func TestHandler_Search_APIFailureReturnsEmpty(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("amadeus unavailable")}
	handler := newTestHandler(t, searcher, nil)

	flights, err := handler.Search(context.Background(), &Input{
		Source:      "CAI",
		Destination: "LHR",
		Date:        "2025-03-01",
		Currency:    "USD",
	})

	assert.NoError(t, err)
	assert.Empty(t, flights)
}

func TestHandler_Search_SkipsMalformedOffer(t *testing.T) {
	searcher := &fakeSearcher{offers: []amadeus.FlightOffer{
		makeOffer("450.00", "2025-03-01T10:00:00", "2025-03-01T14:00:00", 1),
		{ID: "broken", Price: amadeus.Price{Total: "100.00"}}, // no segments
	}}
	handler := newTestHandler(t, searcher, nil)

	flights, err := handler.Search(context.Background(), &Input{
		Source:      "CAI",
		Destination: "LHR",
		Date:        "2025-03-01",
		Currency:    "USD",
	})

	require.NoError(t, err)
	assert.Len(t, flights, 1)
}

func TestHandler_Search_DirectFlag(t *testing.T) {
	searcher := &fakeSearcher{offers: []amadeus.FlightOffer{
		makeOffer("450.00", "2025-03-01T10:00:00", "2025-03-01T18:00:00", 2),
	}}
	handler := newTestHandler(t, searcher, nil)

	flights, err := handler.Search(context.Background(), &Input{
		Source:          "CAI",
		Destination:     "LHR",
		Date:            "2025-03-01",
		Currency:        "USD",
		IsFlightsDirect: true,
	})

	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.False(t, flights[0].IsDirect)
	assert.True(t, searcher.lastQuery.NonStop)
	assert.Equal(t, 20, searcher.lastQuery.Max)
}

// ==========================
// Cache Tests
// ==========================

func TestHandler_Search_CacheHitSkipsAPI(t *testing.T) {
	cache, _ := newTestCache(t)
	searcher := &fakeSearcher{offers: []amadeus.FlightOffer{
		makeOffer("450.00", "2025-03-01T10:00:00", "2025-03-01T14:00:00", 1),
	}}
	handler := newTestHandler(t, searcher, cache)

	input := &Input{Source: "CAI", Destination: "LHR", Date: "2025-03-01", Currency: "USD"}

	_, err := handler.Search(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, searcher.callCount)

	// Second identical search is served from the cache.
	flights, err := handler.Search(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, searcher.callCount)
	require.Len(t, flights, 1)
	assert.Equal(t, "450.00", flights[0].Price)
}

func TestHandler_Search_CacheKeyIncludesRoute(t *testing.T) {
	cache, _ := newTestCache(t)
	searcher := &fakeSearcher{offers: []amadeus.FlightOffer{
		makeOffer("450.00", "2025-03-01T10:00:00", "2025-03-01T14:00:00", 1),
	}}
	handler := newTestHandler(t, searcher, cache)

	_, err := handler.Search(context.Background(), &Input{Source: "CAI", Destination: "LHR", Date: "2025-03-01", Currency: "USD"})
	require.NoError(t, err)

	_, err = handler.Search(context.Background(), &Input{Source: "CAI", Destination: "FRA", Date: "2025-03-01", Currency: "USD"})
	require.NoError(t, err)

	assert.Equal(t, 2, searcher.callCount)
}

func TestHandler_Search_PoisonedCacheEntryFallsThrough(t *testing.T) {
	cache, srv := newTestCache(t)
	searcher := &fakeSearcher{offers: []amadeus.FlightOffer{
		makeOffer("450.00", "2025-03-01T10:00:00", "2025-03-01T14:00:00", 1),
	}}
	handler := newTestHandler(t, searcher, cache)

	require.NoError(t, srv.Set("flights:CAI:LHR:2025-03-01:USD:false", "{not json"))

	flights, err := handler.Search(context.Background(), &Input{Source: "CAI", Destination: "LHR", Date: "2025-03-01", Currency: "USD"})

	require.NoError(t, err)
	assert.Len(t, flights, 1)
	assert.Equal(t, 1, searcher.callCount)
}

// ==========================
// Argument Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	handler := newTestHandler(t, &fakeSearcher{}, nil)

	t.Run("defaults applied", func(t *testing.T) {
		input, err := handler.parseInput(map[string]interface{}{
			"source":      "cai",
			"destination": "lhr",
		})

		require.NoError(t, err)
		assert.Equal(t, "CAI", input.Source)
		assert.Equal(t, "LHR", input.Destination)
		assert.Equal(t, "USD", input.Currency)
		assert.Equal(t, "2025-03-01", input.Date) // tomorrow relative to the test clock
		assert.False(t, input.IsFlightsDirect)
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := handler.parseInput(map[string]interface{}{"destination": "LHR"})
		assert.Error(t, err)
	})

	t.Run("missing destination", func(t *testing.T) {
		_, err := handler.parseInput(map[string]interface{}{"source": "CAI"})
		assert.Error(t, err)
	})

	t.Run("bad date format", func(t *testing.T) {
		_, err := handler.parseInput(map[string]interface{}{
			"source":      "CAI",
			"destination": "LHR",
			"date":        "01/03/2025",
		})
		assert.Error(t, err)
	})

	t.Run("weights parsed as numbers", func(t *testing.T) {
		input, err := handler.parseInput(map[string]interface{}{
			"source":                   "CAI",
			"destination":              "LHR",
			"price_weight":             float64(5),
			"duration_weight":          float64(3),
			"non_direct_flight_weight": float64(2),
		})

		require.NoError(t, err)
		assert.Equal(t, 5.0, input.PriceWeight)
		assert.Equal(t, 3.0, input.DurationWeight)
		assert.Equal(t, 2.0, input.NonDirectFlightWeight)
	})
}

// ==========================
// Output Formatting Tests
// ==========================

func TestFormatList(t *testing.T) {
	flights := []FlightSummary{
		{Price: "300.00", Departure: "01/03/2025 10:00", Arrival: "01/03/2025 14:00", Airline: "MS", FlightNumber: "777", IsDirect: true, Rating: 100.0},
		{Price: "600.00", Departure: "01/03/2025 06:30", Arrival: "01/03/2025 15:45", Airline: "LH", FlightNumber: "583", IsDirect: false, Rating: 200.0},
	}

	got := FormatList(flights)

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1- (MS, 777, true) Price: 300.00, Departure: 01/03/2025 10:00, Arrival: 01/03/2025 14:00", lines[0])
	assert.Equal(t, "2- (LH, 583, false) Price: 600.00, Departure: 01/03/2025 06:30, Arrival: 01/03/2025 15:45", lines[1])
}

func TestFormatList_Empty(t *testing.T) {
	assert.Equal(t, "No flights found.", FormatList(nil))
}

// ==========================
// Tool Contract Tests
// ==========================

func TestHandler_Execute_EndToEnd(t *testing.T) {
	searcher := &fakeSearcher{offers: []amadeus.FlightOffer{
		makeOffer("450.00", "2025-03-01T10:00:00", "2025-03-01T14:00:00", 1),
	}}
	handler := newTestHandler(t, searcher, nil)

	out, err := handler.Execute(context.Background(), map[string]interface{}{
		"source":       "CAI",
		"destination":  "LHR",
		"date":         "2025-03-01",
		"price_weight": float64(5),
	})

	require.NoError(t, err)
	assert.Contains(t, out, "1- (MS, 777, true)")
	assert.Contains(t, out, "Price: 450.00")
}

func TestHandler_Execute_InvalidArgs(t *testing.T) {
	handler := newTestHandler(t, &fakeSearcher{}, nil)

	_, err := handler.Execute(context.Background(), map[string]interface{}{})
	assert.Error(t, err)
}
