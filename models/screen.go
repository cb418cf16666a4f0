package models

// ScreenFilters are the provider-side filters derived from a free-text
// query. Zero values mean "not applied".
type ScreenFilters struct {
	Market           string  `json:"market"`
	PriceMax         float64 `json:"price_max,omitempty"`
	RevenueGrowthMin float64 `json:"revenue_growth_min,omitempty"`
	PEMax            float64 `json:"pe_max,omitempty"`
	PBMax            float64 `json:"pb_max,omitempty"`
	DividendYieldMin float64 `json:"dividend_yield_min,omitempty"`
	BetaMax          float64 `json:"beta_max,omitempty"`
	VolumeMin        int64   `json:"volume_min,omitempty"`
	ActiveOnly       bool    `json:"active_only,omitempty"`
	Limit            int     `json:"limit"`
}

// Candidate is one screener hit. The symbol is the only identity carried
// forward into aggregation.
type Candidate struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"company_name"`
	Price       float64 `json:"price"`
	MarketCap   int64   `json:"market_cap"`
	Sector      string  `json:"sector"`
	Exchange    string  `json:"exchange"`
	Country     string  `json:"country"`
}
