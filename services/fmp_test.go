package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stock-advisor/models"
)

// resetBreakers gives each test a fresh circuit breaker registry so
// failures in one test cannot trip breakers for the next
func resetBreakers(t *testing.T) {
	t.Helper()
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))
}

// fastRetry shortens backoff so failure tests stay quick
func fastRetry(t *testing.T) {
	t.Helper()
	saved := DefaultRetryConfig
	DefaultRetryConfig = RetryConfig{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
	t.Cleanup(func() { DefaultRetryConfig = saved })
}

func TestNewFMPService(t *testing.T) {
	service := NewFMPService("test-api-key", 15*time.Second)
	if service == nil {
		t.Fatal("NewFMPService should not return nil")
	}
	if service.apiKey != "test-api-key" {
		t.Errorf("apiKey = %v, want 'test-api-key'", service.apiKey)
	}
	if service.httpClient == nil {
		t.Error("httpClient should not be nil")
	}
	if service.httpClient.Timeout != 15*time.Second {
		t.Errorf("httpClient.Timeout = %v, want 15s", service.httpClient.Timeout)
	}
	if service.baseURL != "https://financialmodelingprep.com/api/v3" {
		t.Errorf("baseURL = %v, want FMP v3 base", service.baseURL)
	}
}

func TestScreen_SendsDerivedFilters(t *testing.T) {
	resetBreakers(t)

	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock-screener" {
			t.Errorf("path = %v, want /stock-screener", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"symbol": "TCS.NS", "companyName": "Tata Consultancy Services", "marketCap": 150000000000, "sector": "Technology", "price": 42.10, "volume": 900000, "exchangeShortName": "NSE", "country": "IN", "isEtf": false, "isActivelyTrading": true},
			{"symbol": "NIFTYBEES.NS", "companyName": "Nippon India ETF", "marketCap": 2000000000, "sector": "", "price": 28.00, "volume": 500000, "exchangeShortName": "NSE", "country": "IN", "isEtf": true, "isActivelyTrading": true}
		]`))
	}))
	defer server.Close()

	service := NewFMPService("test-key", 5*time.Second)
	service.baseURL = server.URL

	candidates, err := service.Screen(context.Background(), models.ScreenFilters{
		Market:           "IN",
		PriceMax:         50,
		DividendYieldMin: 0.01,
		BetaMax:          1.2,
		VolumeMin:        50000,
		Limit:            40,
	})
	if err != nil {
		t.Fatalf("Screen() error = %v", err)
	}

	if gotQuery.Get("apikey") != "test-key" {
		t.Errorf("apikey = %v, want 'test-key'", gotQuery.Get("apikey"))
	}
	if gotQuery.Get("country") != "IN" {
		t.Errorf("country = %v, want 'IN'", gotQuery.Get("country"))
	}
	if gotQuery.Get("priceLowerThan") != "50" {
		t.Errorf("priceLowerThan = %v, want '50'", gotQuery.Get("priceLowerThan"))
	}
	if gotQuery.Get("dividendYieldMoreThan") != "0.01" {
		t.Errorf("dividendYieldMoreThan = %v, want '0.01'", gotQuery.Get("dividendYieldMoreThan"))
	}
	if gotQuery.Get("betaLowerThan") != "1.2" {
		t.Errorf("betaLowerThan = %v, want '1.2'", gotQuery.Get("betaLowerThan"))
	}
	if gotQuery.Get("volumeMoreThan") != "50000" {
		t.Errorf("volumeMoreThan = %v, want '50000'", gotQuery.Get("volumeMoreThan"))
	}
	if gotQuery.Get("limit") != "40" {
		t.Errorf("limit = %v, want '40'", gotQuery.Get("limit"))
	}

	// The ETF row must be filtered out
	if len(candidates) != 1 {
		t.Fatalf("candidates = %d, want 1", len(candidates))
	}
	if candidates[0].Symbol != "TCS.NS" {
		t.Errorf("candidates[0].Symbol = %v, want 'TCS.NS'", candidates[0].Symbol)
	}
}

func TestScreen_OmitsUnsetFilters(t *testing.T) {
	resetBreakers(t)

	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	service := NewFMPService("test-key", 5*time.Second)
	service.baseURL = server.URL

	_, err := service.Screen(context.Background(), models.ScreenFilters{Market: "US", Limit: 40})
	if err != nil {
		t.Fatalf("Screen() error = %v", err)
	}

	for _, param := range []string{"priceLowerThan", "peRatioLessThan", "pbRatioLessThan", "revenueGrowthMoreThan", "betaLowerThan"} {
		if gotQuery.Has(param) {
			t.Errorf("unset filter %q should not be sent, got %v", param, gotQuery.Get(param))
		}
	}
}

func TestScreen_EmptyResultIsNotAnError(t *testing.T) {
	resetBreakers(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	service := NewFMPService("test-key", 5*time.Second)
	service.baseURL = server.URL

	candidates, err := service.Screen(context.Background(), models.ScreenFilters{Market: "US"})
	if err != nil {
		t.Fatalf("Screen() error = %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("candidates = %d, want 0", len(candidates))
	}
}

func TestScreen_Non200(t *testing.T) {
	resetBreakers(t)
	fastRetry(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewFMPService("test-key", 5*time.Second)
	service.baseURL = server.URL

	_, err := service.Screen(context.Background(), models.ScreenFilters{Market: "US"})
	if err == nil {
		t.Fatal("Screen() should fail on a 500 response")
	}
}

func TestGetProfile(t *testing.T) {
	resetBreakers(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profile/AAPL" {
			t.Errorf("path = %v, want /profile/AAPL", r.URL.Path)
		}
		w.Write([]byte(`[{
			"symbol": "AAPL",
			"companyName": "Apple Inc.",
			"price": 175.50,
			"beta": 1.25,
			"mktCap": 2500000000000,
			"lastDiv": 0.96,
			"range": "140.82-199.62",
			"changes": 2.35,
			"currency": "USD",
			"exchangeShortName": "NASDAQ",
			"industry": "Consumer Electronics",
			"website": "https://www.apple.com",
			"description": "Apple Inc. designs smartphones.",
			"ceo": "Tim Cook",
			"sector": "Technology",
			"country": "US",
			"image": "https://example.com/aapl.png",
			"ipoDate": "1980-12-12",
			"isActivelyTrading": true
		}]`))
	}))
	defer server.Close()

	service := NewFMPService("test-key", 5*time.Second)
	service.baseURL = server.URL

	details, err := service.GetProfile(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}

	if details.Symbol != "AAPL" {
		t.Errorf("Symbol = %v, want 'AAPL'", details.Symbol)
	}
	if details.CompanyName != "Apple Inc." {
		t.Errorf("CompanyName = %v, want 'Apple Inc.'", details.CompanyName)
	}
	if details.MarketCap != 2500000000000 {
		t.Errorf("MarketCap = %v, want 2500000000000", details.MarketCap)
	}
	if details.Range52Week != "140.82-199.62" {
		t.Errorf("Range52Week = %v, want '140.82-199.62'", details.Range52Week)
	}
	if details.CEO != "Tim Cook" {
		t.Errorf("CEO = %v, want 'Tim Cook'", details.CEO)
	}
}

func TestGetProfile_EmptyIsErrNoData(t *testing.T) {
	resetBreakers(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	service := NewFMPService("test-key", 5*time.Second)
	service.baseURL = server.URL

	_, err := service.GetProfile(context.Background(), "NOPE")
	if !errors.Is(err, ErrNoData) {
		t.Errorf("GetProfile() error = %v, want ErrNoData", err)
	}
}

func TestGetRatios_MissingFieldsStayNil(t *testing.T) {
	resetBreakers(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ratios-ttm/MSFT" {
			t.Errorf("path = %v, want /ratios-ttm/MSFT", r.URL.Path)
		}
		w.Write([]byte(`[{
			"priceEarningsRatioTTM": 32.5,
			"returnOnEquityTTM": 0.43
		}]`))
	}))
	defer server.Close()

	service := NewFMPService("test-key", 5*time.Second)
	service.baseURL = server.URL

	ratios, err := service.GetRatios(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("GetRatios() error = %v", err)
	}

	if ratios.PERatio == nil || *ratios.PERatio != 32.5 {
		t.Errorf("PERatio = %v, want 32.5", ratios.PERatio)
	}
	if ratios.ReturnOnEquity == nil || *ratios.ReturnOnEquity != 0.43 {
		t.Errorf("ReturnOnEquity = %v, want 0.43", ratios.ReturnOnEquity)
	}
	if ratios.PriceToSalesRatio != nil {
		t.Errorf("PriceToSalesRatio = %v, want nil for missing field", *ratios.PriceToSalesRatio)
	}
	if ratios.DebtToEquityRatio != nil {
		t.Errorf("DebtToEquityRatio = %v, want nil for missing field", *ratios.DebtToEquityRatio)
	}
}

func TestGetQuote(t *testing.T) {
	resetBreakers(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{
			"symbol": "AAPL",
			"price": 175.50,
			"change": 2.35,
			"changesPercentage": 1.36,
			"dayLow": 172.10,
			"dayHigh": 176.80,
			"yearLow": 140.82,
			"yearHigh": 199.62,
			"previousClose": 173.15,
			"volume": 50000000,
			"avgVolume": 45000000
		}]`))
	}))
	defer server.Close()

	service := NewFMPService("test-key", 5*time.Second)
	service.baseURL = server.URL

	quote, err := service.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetQuote() error = %v", err)
	}

	if !quote.Price.Equal(decimal.NewFromFloat(175.50)) {
		t.Errorf("Price = %v, want 175.50", quote.Price)
	}
	if !quote.PreviousClose.Equal(decimal.NewFromFloat(173.15)) {
		t.Errorf("PreviousClose = %v, want 173.15", quote.PreviousClose)
	}
	if quote.Volume != 50000000 {
		t.Errorf("Volume = %v, want 50000000", quote.Volume)
	}
}

func TestGetTechnicals(t *testing.T) {
	resetBreakers(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/technical_indicator/1day/AAPL" {
			t.Errorf("path = %v, want /technical_indicator/1day/AAPL", r.URL.Path)
		}
		switch r.URL.Query().Get("type") {
		case "rsi":
			if r.URL.Query().Get("period") != "14" {
				t.Errorf("rsi period = %v, want '14'", r.URL.Query().Get("period"))
			}
			w.Write([]byte(`[{"date": "2026-08-28", "close": 175.5, "rsi": 61.2}]`))
		case "sma":
			if r.URL.Query().Get("period") != "50" {
				t.Errorf("sma period = %v, want '50'", r.URL.Query().Get("period"))
			}
			w.Write([]byte(`[{"date": "2026-08-28", "close": 175.5, "sma": 168.4}]`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	service := NewFMPService("test-key", 5*time.Second)
	service.baseURL = server.URL

	technicals, err := service.GetTechnicals(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetTechnicals() error = %v", err)
	}

	if technicals.RSI == nil || *technicals.RSI != 61.2 {
		t.Errorf("RSI = %v, want 61.2", technicals.RSI)
	}
	if technicals.SMA50 == nil || *technicals.SMA50 != 168.4 {
		t.Errorf("SMA50 = %v, want 168.4", technicals.SMA50)
	}
}

func TestGetTechnicals_PartialFailureKeepsOther(t *testing.T) {
	resetBreakers(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") == "rsi" {
			w.Write([]byte(`[{"date": "2026-08-28", "close": 175.5, "rsi": 61.2}]`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewFMPService("test-key", 5*time.Second)
	service.baseURL = server.URL

	technicals, err := service.GetTechnicals(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetTechnicals() error = %v", err)
	}

	if technicals.RSI == nil || *technicals.RSI != 61.2 {
		t.Errorf("RSI = %v, want 61.2", technicals.RSI)
	}
	if technicals.SMA50 != nil {
		t.Errorf("SMA50 = %v, want nil when the sma fetch fails", *technicals.SMA50)
	}
}
