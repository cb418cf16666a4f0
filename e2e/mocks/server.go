// Package mocks provides HTTP mock servers for the external APIs used
// in E2E tests.
package mocks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// ScreenerResult is one row served by the mock screener endpoint
type ScreenerResult struct {
	Symbol            string  `json:"symbol"`
	CompanyName       string  `json:"companyName"`
	MarketCap         int64   `json:"marketCap"`
	Sector            string  `json:"sector"`
	Price             float64 `json:"price"`
	Volume            int64   `json:"volume"`
	ExchangeShortName string  `json:"exchangeShortName"`
	Country           string  `json:"country"`
	IsEtf             bool    `json:"isEtf"`
	IsActivelyTrading bool    `json:"isActivelyTrading"`
}

// Profile is the mock company profile payload
type Profile struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Price       float64 `json:"price"`
	MktCap      int64   `json:"mktCap"`
	Sector      string  `json:"sector"`
	Country     string  `json:"country"`
}

// Ratios is the mock TTM ratios payload
type Ratios struct {
	PERatio           *float64 `json:"priceEarningsRatioTTM,omitempty"`
	PriceToSalesRatio *float64 `json:"priceToSalesRatioTTM,omitempty"`
	ReturnOnEquity    *float64 `json:"returnOnEquityTTM,omitempty"`
	DebtToEquityRatio *float64 `json:"debtToEquityRatioTTM,omitempty"`
}

// RequestLog records incoming requests for test assertions
type RequestLog struct {
	Method string
	Path   string
	Query  string
}

// FMPServer provides configurable mock responses for the market-data
// provider endpoints the service calls.
type FMPServer struct {
	mu     sync.RWMutex
	server *httptest.Server

	// Response configurations
	screenerResults []ScreenerResult
	profiles        map[string]Profile
	ratios          map[string]Ratios

	// Error injection
	screenerStatus int
	profileStatus  int

	// Request tracking for assertions
	requestLog []RequestLog
}

// NewFMPServer creates a mock provider with empty defaults
func NewFMPServer() *FMPServer {
	m := &FMPServer{
		profiles: make(map[string]Profile),
		ratios:   make(map[string]Ratios),
	}
	m.server = httptest.NewServer(m)
	return m
}

// URL returns the mock server's base URL
func (m *FMPServer) URL() string {
	return m.server.URL
}

// Close shuts the mock server down
func (m *FMPServer) Close() {
	m.server.Close()
}

// SetScreenerResults configures the screener response
func (m *FMPServer) SetScreenerResults(results []ScreenerResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.screenerResults = results
}

// SetProfile configures the profile and ratios served for one symbol
func (m *FMPServer) SetProfile(symbol string, profile Profile, ratios Ratios) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[symbol] = profile
	m.ratios[symbol] = ratios
}

// FailScreener makes the screener endpoint return the given status
func (m *FMPServer) FailScreener(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.screenerStatus = status
}

// FailProfiles makes all profile endpoints return the given status
func (m *FMPServer) FailProfiles(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profileStatus = status
}

// Requests returns a copy of the logged requests
func (m *FMPServer) Requests() []RequestLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RequestLog(nil), m.requestLog...)
}

func (m *FMPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestLog = append(m.requestLog, RequestLog{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
	})
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	switch {
	case r.URL.Path == "/stock-screener":
		if m.screenerStatus != 0 {
			w.WriteHeader(m.screenerStatus)
			return
		}
		writeJSON(w, m.screenerResults)

	case strings.HasPrefix(r.URL.Path, "/profile/"):
		if m.profileStatus != 0 {
			w.WriteHeader(m.profileStatus)
			return
		}
		symbol := strings.TrimPrefix(r.URL.Path, "/profile/")
		if profile, ok := m.profiles[symbol]; ok {
			writeJSON(w, []Profile{profile})
			return
		}
		writeJSON(w, []Profile{})

	case strings.HasPrefix(r.URL.Path, "/ratios-ttm/"):
		symbol := strings.TrimPrefix(r.URL.Path, "/ratios-ttm/")
		if ratios, ok := m.ratios[symbol]; ok {
			writeJSON(w, []Ratios{ratios})
			return
		}
		writeJSON(w, []Ratios{})

	case strings.HasPrefix(r.URL.Path, "/quote/"):
		writeJSON(w, []map[string]any{})

	case strings.HasPrefix(r.URL.Path, "/technical_indicator/"):
		writeJSON(w, []map[string]any{})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// ScriptedLLM is a canned LLM backend for E2E runs. It satisfies the
// same interface as the real services and replays a fixed response.
type ScriptedLLM struct {
	mu       sync.Mutex
	Response string
	Err      error
	Prompts  []string
}

// InvokeWithPrompt records the prompt and replays the scripted response
func (s *ScriptedLLM) InvokeWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, userPrompt)
	if s.Err != nil {
		return "", s.Err
	}
	return s.Response, nil
}
