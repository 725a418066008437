package models

// LedgerForecast is the projected balance of a single ledger
type LedgerForecast struct {
	LedgerID         int64             `json:"ledger_id"`
	LedgerName       string            `json:"ledger_name"`
	OpeningBalance   float64           `json:"opening_balance"`
	ProjectedBalance float64           `json:"projected_balance"`
	ProjectedChange  float64           `json:"projected_change"`
	Monthly          []MonthlyForecast `json:"monthly,omitempty"`
}

// MonthlyForecast is the projection for one calendar month
type MonthlyForecast struct {
	Month           string  `json:"month"` // Format: YYYY-MM
	RecurringTotal  float64 `json:"recurring_total"`
	HistoricalTotal float64 `json:"historical_total"`
	ProjectedChange float64 `json:"projected_change"`
}

// ForecastReport is the response of the forecast endpoint
type ForecastReport struct {
	AsAt           string           `json:"as_at"`
	Until          string           `json:"until"`
	LookbackMonths int              `json:"lookback_months"`
	Ledgers        []LedgerForecast `json:"ledgers"`
}

// BalanceReport is the response of the balance endpoint
type BalanceReport struct {
	AsOf string            `json:"as_of"`
	Data []BusinessBalance `json:"data"`
}

// BusinessBalance groups entity balances of a business
type BusinessBalance struct {
	BusinessID int64           `json:"business_id"`
	Business   string          `json:"business"`
	Entities   []EntityBalance `json:"entities"`
}

// EntityBalance groups ledger balances of an entity
type EntityBalance struct {
	EntityID int64           `json:"entity_id"`
	Entity   string          `json:"entity"`
	Ledgers  []LedgerCurrent `json:"ledgers"`
}

// LedgerCurrent is the current balance of a ledger
type LedgerCurrent struct {
	LedgerID       int64   `json:"ledger_id"`
	Ledger         string  `json:"ledger"`
	CurrentBalance float64 `json:"current_balance"`
}
