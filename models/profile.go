package models

import "github.com/shopspring/decimal"

// QuantProfile is the merged set of financial fields gathered per ticker
// before ranking. Ratio fields are pointers so missing provider values
// serialize as null in the prompt instead of a misleading zero.
type QuantProfile struct {
	Ticker            string   `json:"ticker"`
	CompanyName       string   `json:"companyName"`
	Sector            string   `json:"sector"`
	MarketCap         int64    `json:"marketCap"`
	Price             float64  `json:"price"`
	PERatio           *float64 `json:"peRatio"`
	PriceToSalesRatio *float64 `json:"priceToSalesRatio"`
	ReturnOnEquity    *float64 `json:"returnOnEquity"`
	DebtToEquityRatio *float64 `json:"debtToEquityRatio"`
}

// StockDetails is the flat single-ticker record served by the detail
// endpoint, reshaped from the provider profile.
type StockDetails struct {
	Symbol       string  `json:"symbol"`
	CompanyName  string  `json:"company_name"`
	Price        float64 `json:"price"`
	Changes      float64 `json:"changes"`
	Currency     string  `json:"currency"`
	MarketCap    int64   `json:"market_cap"`
	Beta         float64 `json:"beta"`
	LastDividend float64 `json:"last_dividend"`
	Range52Week  string  `json:"range_52_week"`
	Exchange     string  `json:"exchange"`
	Sector       string  `json:"sector"`
	Industry     string  `json:"industry"`
	Country      string  `json:"country"`
	CEO          string  `json:"ceo"`
	Website      string  `json:"website"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	IPODate      string  `json:"ipo_date"`
}

// LiveQuote carries the intraday quote section of the dashboard. Money
// fields use decimal to avoid float drift on display values.
type LiveQuote struct {
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	DayLow        decimal.Decimal `json:"day_low"`
	DayHigh       decimal.Decimal `json:"day_high"`
	YearLow       decimal.Decimal `json:"year_low"`
	YearHigh      decimal.Decimal `json:"year_high"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	Volume        int64           `json:"volume"`
	AvgVolume     int64           `json:"avg_volume"`
}

// Fundamentals carries the TTM ratio section of the dashboard
type Fundamentals struct {
	PERatio           *float64 `json:"pe_ratio"`
	PBRatio           *float64 `json:"pb_ratio"`
	PriceToSalesRatio *float64 `json:"price_to_sales_ratio"`
	ReturnOnEquity    *float64 `json:"return_on_equity"`
	DebtToEquityRatio *float64 `json:"debt_to_equity_ratio"`
	DividendYield     *float64 `json:"dividend_yield"`
}

// Technicals carries the latest daily indicator values
type Technicals struct {
	RSI   *float64 `json:"rsi"`
	SMA50 *float64 `json:"sma_50"`
}

// Dashboard is the nested single-ticker view for the frontend. Profile
// is required; the other sections are omitted when their fetch fails.
type Dashboard struct {
	Profile      StockDetails  `json:"profile"`
	LiveQuote    *LiveQuote    `json:"live_quote,omitempty"`
	Fundamentals *Fundamentals `json:"fundamentals,omitempty"`
	Technicals   *Technicals   `json:"technicals,omitempty"`
}
