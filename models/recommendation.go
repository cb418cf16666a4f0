package models

// Recommendation is one ranked pick produced by the LLM. The reason is
// free text from the model and is not validated against the profile it
// was derived from.
type Recommendation struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`
	Reason      string `json:"reason"`
}

// SystemTicker marks sentinel rows returned in place of real picks when
// a pipeline stage comes up empty. Sentinels ride the ordinary success
// schema with HTTP 200.
const SystemTicker = "SYSTEM"

// NoStocksFound is the sentinel returned when the screener yields no
// candidates for the derived filters.
func NoStocksFound() []Recommendation {
	return []Recommendation{{
		Ticker:      SystemTicker,
		CompanyName: "No Stocks Found",
		Reason: "The screening system did not find any stocks matching your specific " +
			"financial criteria (e.g. price, P/E ratio, growth rate). Please try a broader request.",
	}}
}

// AggregationFailed is the sentinel returned when candidates were found
// but no quantitative profile could be assembled for any of them.
func AggregationFailed() []Recommendation {
	return []Recommendation{{
		Ticker:      SystemTicker,
		CompanyName: "Data Aggregation Failed",
		Reason: "A list of stocks was found, but their detailed financial profiles could not " +
			"be retrieved from the data provider. This may be a temporary API issue.",
	}}
}

// AIFormatError is the sentinel returned when the model reply contained
// no parseable JSON array.
func AIFormatError() []Recommendation {
	return []Recommendation{{
		Ticker:      SystemTicker,
		CompanyName: "AI Error",
		Reason:      "The AI analysis module failed to return a valid response after processing the financial data.",
	}}
}

// IsSentinel reports whether recs is a single system sentinel row
func IsSentinel(recs []Recommendation) bool {
	return len(recs) == 1 && recs[0].Ticker == SystemTicker
}
