package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"stock-advisor/models"
	"stock-advisor/observability"
)

// ErrNoData is returned when the provider replies with an empty payload
// for a symbol. Callers treat it as "skip" or 404, never as a retryable
// transport failure.
var ErrNoData = errors.New("no data for symbol")

// FMPService handles communication with the Financial Modeling Prep API
type FMPService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewFMPService creates a new FMPService instance. FMP_BASE_URL
// overrides the endpoint so E2E runs can point at a mock server.
func NewFMPService(apiKey string, timeout time.Duration) *FMPService {
	baseURL := "https://financialmodelingprep.com/api/v3"
	if override := os.Getenv("FMP_BASE_URL"); override != "" {
		baseURL = override
	}

	return &FMPService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// fmpScreenerResponse represents a single result from the FMP stock screener API
type fmpScreenerResponse struct {
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

// fmpProfileResponse represents a company profile from the FMP API
type fmpProfileResponse struct {
	Symbol            string  `json:"symbol"`
	CompanyName       string  `json:"companyName"`
	Price             float64 `json:"price"`
	Beta              float64 `json:"beta"`
	MktCap            int64   `json:"mktCap"`
	LastDiv           float64 `json:"lastDiv"`
	Range             string  `json:"range"`
	Changes           float64 `json:"changes"`
	Currency          string  `json:"currency"`
	ExchangeShortName string  `json:"exchangeShortName"`
	Industry          string  `json:"industry"`
	Website           string  `json:"website"`
	Description       string  `json:"description"`
	CEO               string  `json:"ceo"`
	Sector            string  `json:"sector"`
	Country           string  `json:"country"`
	Image             string  `json:"image"`
	IPODate           string  `json:"ipoDate"`
	IsActivelyTrading bool    `json:"isActivelyTrading"`
}

// fmpRatiosResponse represents TTM ratios from the FMP API. Pointer
// fields keep provider-missing values distinguishable from zero.
type fmpRatiosResponse struct {
	PERatio           *float64 `json:"priceEarningsRatioTTM"`
	PriceToBookRatio  *float64 `json:"priceToBookRatioTTM"`
	PriceToSalesRatio *float64 `json:"priceToSalesRatioTTM"`
	ReturnOnEquity    *float64 `json:"returnOnEquityTTM"`
	DebtToEquityRatio *float64 `json:"debtToEquityRatioTTM"`
	DividendYield     *float64 `json:"dividendYieldTTM"`
}

// fmpQuoteResponse represents a live quote from the FMP API
type fmpQuoteResponse struct {
	Symbol            string          `json:"symbol"`
	Price             decimal.Decimal `json:"price"`
	Change            decimal.Decimal `json:"change"`
	ChangesPercentage decimal.Decimal `json:"changesPercentage"`
	DayLow            decimal.Decimal `json:"dayLow"`
	DayHigh           decimal.Decimal `json:"dayHigh"`
	YearLow           decimal.Decimal `json:"yearLow"`
	YearHigh          decimal.Decimal `json:"yearHigh"`
	PreviousClose     decimal.Decimal `json:"previousClose"`
	Volume            int64           `json:"volume"`
	AvgVolume         int64           `json:"avgVolume"`
}

// fmpIndicatorResponse represents one row of a daily technical indicator
// series; only the requested indicator field is populated.
type fmpIndicatorResponse struct {
	Date  string   `json:"date"`
	Close float64  `json:"close"`
	RSI   *float64 `json:"rsi"`
	SMA   *float64 `json:"sma"`
}

// getJSON issues an authenticated GET against the FMP API and decodes
// the JSON body into v.
func (s *FMPService) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", s.apiKey)

	reqURL := s.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("FMP API returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	return nil
}

// Screen searches for stocks matching the derived filters and returns
// the candidate list. An empty result is not an error.
func (s *FMPService) Screen(ctx context.Context, filters models.ScreenFilters) ([]models.Candidate, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFMP, "screen")
	timer := metrics.NewTimer()

	results, err := WithCircuitBreaker(ctx, BreakerFMP, func() ([]models.Candidate, error) {
		var candidates []models.Candidate

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			params := url.Values{}
			if filters.Market != "" {
				params.Set("country", filters.Market)
			}
			if filters.PriceMax > 0 {
				params.Set("priceLowerThan", strconv.FormatFloat(filters.PriceMax, 'f', -1, 64))
			}
			if filters.RevenueGrowthMin > 0 {
				params.Set("revenueGrowthMoreThan", strconv.FormatFloat(filters.RevenueGrowthMin, 'f', -1, 64))
			}
			if filters.PEMax > 0 {
				params.Set("peRatioLessThan", strconv.FormatFloat(filters.PEMax, 'f', -1, 64))
			}
			if filters.PBMax > 0 {
				params.Set("pbRatioLessThan", strconv.FormatFloat(filters.PBMax, 'f', -1, 64))
			}
			if filters.DividendYieldMin > 0 {
				params.Set("dividendYieldMoreThan", strconv.FormatFloat(filters.DividendYieldMin, 'f', -1, 64))
			}
			if filters.BetaMax > 0 {
				params.Set("betaLowerThan", strconv.FormatFloat(filters.BetaMax, 'f', -1, 64))
			}
			if filters.VolumeMin > 0 {
				params.Set("volumeMoreThan", strconv.FormatInt(filters.VolumeMin, 10))
			}
			if filters.ActiveOnly {
				params.Set("isActivelyTrading", "true")
			}
			if filters.Limit > 0 {
				params.Set("limit", strconv.Itoa(filters.Limit))
			}

			var screenerResp []fmpScreenerResponse
			if err := s.getJSON(ctx, "/stock-screener", params, &screenerResp); err != nil {
				return err
			}

			candidates = make([]models.Candidate, 0, len(screenerResp))
			for _, stock := range screenerResp {
				// ETFs never carry the ratio fields the ranking prompt relies on
				if stock.IsEtf {
					continue
				}
				candidates = append(candidates, models.Candidate{
					Symbol:      stock.Symbol,
					CompanyName: stock.CompanyName,
					Price:       stock.Price,
					MarketCap:   stock.MarketCap,
					Sector:      stock.Sector,
					Exchange:    stock.ExchangeShortName,
					Country:     stock.Country,
				})
			}

			return nil
		})

		if err != nil {
			return nil, err
		}
		return candidates, nil
	})

	timer.ObserveExternalAPI(BreakerFMP, "screen")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerFMP, "screen", categorizeAPIError(err))
	}
	return results, err
}

// GetProfile returns the company profile for a symbol, reshaped into the
// flat detail record. Returns ErrNoData when the provider has no profile.
func (s *FMPService) GetProfile(ctx context.Context, symbol string) (*models.StockDetails, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFMP, "profile")
	timer := metrics.NewTimer()

	details, err := WithCircuitBreaker(ctx, BreakerFMP, func() (*models.StockDetails, error) {
		var profileResp []fmpProfileResponse
		if err := s.getJSON(ctx, "/profile/"+url.PathEscape(symbol), nil, &profileResp); err != nil {
			return nil, err
		}

		if len(profileResp) == 0 {
			return nil, fmt.Errorf("profile for %s: %w", symbol, ErrNoData)
		}

		p := profileResp[0]
		return &models.StockDetails{
			Symbol:       p.Symbol,
			CompanyName:  p.CompanyName,
			Price:        p.Price,
			Changes:      p.Changes,
			Currency:     p.Currency,
			MarketCap:    p.MktCap,
			Beta:         p.Beta,
			LastDividend: p.LastDiv,
			Range52Week:  p.Range,
			Exchange:     p.ExchangeShortName,
			Sector:       p.Sector,
			Industry:     p.Industry,
			Country:      p.Country,
			CEO:          p.CEO,
			Website:      p.Website,
			Description:  p.Description,
			Image:        p.Image,
			IPODate:      p.IPODate,
		}, nil
	})

	timer.ObserveExternalAPI(BreakerFMP, "profile")
	if err != nil && !errors.Is(err, ErrNoData) {
		metrics.RecordExternalAPIError(BreakerFMP, "profile", categorizeAPIError(err))
	}
	return details, err
}

// GetRatios fetches TTM ratios for a symbol. Returns ErrNoData when the
// provider has no ratio rows.
func (s *FMPService) GetRatios(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFMP, "ratios")
	timer := metrics.NewTimer()

	ratios, err := WithCircuitBreaker(ctx, BreakerFMP, func() (*models.Fundamentals, error) {
		var ratiosResp []fmpRatiosResponse
		if err := s.getJSON(ctx, "/ratios-ttm/"+url.PathEscape(symbol), nil, &ratiosResp); err != nil {
			return nil, err
		}

		if len(ratiosResp) == 0 {
			return nil, fmt.Errorf("ratios for %s: %w", symbol, ErrNoData)
		}

		r := ratiosResp[0]
		return &models.Fundamentals{
			PERatio:           r.PERatio,
			PBRatio:           r.PriceToBookRatio,
			PriceToSalesRatio: r.PriceToSalesRatio,
			ReturnOnEquity:    r.ReturnOnEquity,
			DebtToEquityRatio: r.DebtToEquityRatio,
			DividendYield:     r.DividendYield,
		}, nil
	})

	timer.ObserveExternalAPI(BreakerFMP, "ratios")
	if err != nil && !errors.Is(err, ErrNoData) {
		metrics.RecordExternalAPIError(BreakerFMP, "ratios", categorizeAPIError(err))
	}
	return ratios, err
}

// GetQuote fetches the live quote for a symbol
func (s *FMPService) GetQuote(ctx context.Context, symbol string) (*models.LiveQuote, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFMP, "quote")
	timer := metrics.NewTimer()

	quote, err := WithCircuitBreaker(ctx, BreakerFMP, func() (*models.LiveQuote, error) {
		var quoteResp []fmpQuoteResponse
		if err := s.getJSON(ctx, "/quote/"+url.PathEscape(symbol), nil, &quoteResp); err != nil {
			return nil, err
		}

		if len(quoteResp) == 0 {
			return nil, fmt.Errorf("quote for %s: %w", symbol, ErrNoData)
		}

		q := quoteResp[0]
		return &models.LiveQuote{
			Price:         q.Price,
			Change:        q.Change,
			ChangePercent: q.ChangesPercentage,
			DayLow:        q.DayLow,
			DayHigh:       q.DayHigh,
			YearLow:       q.YearLow,
			YearHigh:      q.YearHigh,
			PreviousClose: q.PreviousClose,
			Volume:        q.Volume,
			AvgVolume:     q.AvgVolume,
		}, nil
	})

	timer.ObserveExternalAPI(BreakerFMP, "quote")
	if err != nil && !errors.Is(err, ErrNoData) {
		metrics.RecordExternalAPIError(BreakerFMP, "quote", categorizeAPIError(err))
	}
	return quote, err
}

// GetTechnicals fetches the latest daily RSI(14) and SMA(50) values.
// Either indicator may come back nil; an error means both were
// unreachable.
func (s *FMPService) GetTechnicals(ctx context.Context, symbol string) (*models.Technicals, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFMP, "technicals")
	timer := metrics.NewTimer()

	technicals, err := WithCircuitBreaker(ctx, BreakerFMP, func() (*models.Technicals, error) {
		t := &models.Technicals{}

		rsi, rsiErr := s.getIndicator(ctx, symbol, "rsi", 14)
		if rsiErr == nil {
			t.RSI = rsi
		}

		sma, smaErr := s.getIndicator(ctx, symbol, "sma", 50)
		if smaErr == nil {
			t.SMA50 = sma
		}

		if rsiErr != nil && smaErr != nil {
			return nil, fmt.Errorf("failed to fetch technical indicators for %s: %w", symbol, rsiErr)
		}
		return t, nil
	})

	timer.ObserveExternalAPI(BreakerFMP, "technicals")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerFMP, "technicals", categorizeAPIError(err))
	}
	return technicals, err
}

// getIndicator fetches the most recent value of one daily indicator
func (s *FMPService) getIndicator(ctx context.Context, symbol, indicator string, period int) (*float64, error) {
	params := url.Values{}
	params.Set("type", indicator)
	params.Set("period", strconv.Itoa(period))

	var rows []fmpIndicatorResponse
	if err := s.getJSON(ctx, "/technical_indicator/1day/"+url.PathEscape(symbol), params, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s for %s: %w", indicator, symbol, ErrNoData)
	}

	// Most recent row first
	switch indicator {
	case "rsi":
		return rows[0].RSI, nil
	case "sma":
		return rows[0].SMA, nil
	default:
		return nil, fmt.Errorf("unsupported indicator %q", indicator)
	}
}

// Compile-time interface verification
var _ FMPServiceInterface = (*FMPService)(nil)
