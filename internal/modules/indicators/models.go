// Package indicators derives business and credit indicators from a submitted
// financial statement snapshot.
//
// The calculator is a pure function: no I/O, no randomness, deterministic for
// a given snapshot. It always produces a full report; inputs that make a
// ratio uncomputable yield a zero value with StatusInsufficientData rather
// than an error, so "no data" stays distinguishable from a measured zero.
package indicators

// RevenueModel describes how the business earns revenue.
type RevenueModel string

const (
	RevenueModelSubscription  RevenueModel = "subscription"
	RevenueModelTransactional RevenueModel = "transactional"
	RevenueModelMixed         RevenueModel = "mixed"
)

// Periodicity is the reporting cadence of the commercial customer counts.
type Periodicity string

const (
	PeriodicityMonthly   Periodicity = "monthly"
	PeriodicityQuarterly Periodicity = "quarterly"
	PeriodicityAnnual    Periodicity = "annual"
)

// ReportingCurrencies are the accepted statement currencies.
var ReportingCurrencies = []string{"USD", "COP", "EUR", "MXN", "PEN", "CLP"}

// ReportDetails describes the reporting context of the snapshot.
type ReportDetails struct {
	Currency     string       `json:"currency"`
	RevenueModel RevenueModel `json:"revenue_model"`
	PeriodStart  string       `json:"period_start"`
	PeriodEnd    string       `json:"period_end"`
}

// IncomeStatement carries the period's income statement figures.
// PriorYearRevenue is optional; absent means YoY growth cannot be computed.
type IncomeStatement struct {
	DomesticSales      float64  `json:"domestic_sales"`
	ExportSales        float64  `json:"export_sales"`
	PriorYearRevenue   *float64 `json:"prior_year_revenue,omitempty"`
	CostOfSales        float64  `json:"cost_of_sales"`
	OperatingExpenses  float64  `json:"operating_expenses"`
	RDSpend            float64  `json:"rd_spend"`
	CapitalExpenditure float64  `json:"capital_expenditure"`
	NetIncome          float64  `json:"net_income"`
}

// Commercial carries customer acquisition and retention figures. The pointer
// fields are model-conditional: MRR and AvgActiveCustomers apply to
// subscription businesses, AvgTicket, PurchaseFrequency and RetentionYears to
// transactional ones.
type Commercial struct {
	AcquisitionSpend   float64     `json:"acquisition_spend"`
	NewCustomers       float64     `json:"new_customers"`
	StartingCustomers  float64     `json:"starting_customers"`
	ChurnedCustomers   float64     `json:"churned_customers"`
	EndingCustomers    float64     `json:"ending_customers"`
	Periodicity        Periodicity `json:"periodicity"`
	MRR                *float64    `json:"mrr,omitempty"`
	AvgActiveCustomers *float64    `json:"avg_active_customers,omitempty"`
	AvgTicket          *float64    `json:"avg_ticket,omitempty"`
	PurchaseFrequency  *float64    `json:"purchase_frequency,omitempty"`
	RetentionYears     *float64    `json:"retention_years,omitempty"`
}

// BalanceSheet carries period-end balance sheet figures.
type BalanceSheet struct {
	CurrentAssets         float64 `json:"current_assets"`
	NonCurrentAssets      float64 `json:"non_current_assets"`
	Cash                  float64 `json:"cash"`
	Receivables           float64 `json:"receivables"`
	Inventory             float64 `json:"inventory"`
	CurrentLiabilities    float64 `json:"current_liabilities"`
	NonCurrentLiabilities float64 `json:"non_current_liabilities"`
	Payables              float64 `json:"payables"`
	ShortTermDebt         float64 `json:"short_term_debt"`
	Equity                float64 `json:"equity"`
}

// Operations carries operational figures.
type Operations struct {
	MonthlyBurnRate float64 `json:"monthly_burn_rate"`
}

// FinancialSnapshot is one immutable financial statement submission.
type FinancialSnapshot struct {
	ReportDetails   ReportDetails   `json:"report_details"`
	IncomeStatement IncomeStatement `json:"income_statement"`
	Commercial      Commercial      `json:"commercial"`
	BalanceSheet    BalanceSheet    `json:"balance_sheet"`
	Operations      Operations      `json:"operations"`
}

// BusinessProfile is the company context the calculator needs beyond the
// statement itself. RequestedAmount is the actual capital request when known;
// absent, the capital gap indicator falls back to an assumed 30% of revenue.
type BusinessProfile struct {
	EmployeeCount   int      `json:"employee_count"`
	RequestedAmount *float64 `json:"requested_amount,omitempty"`
}

// Status classifies an indicator value.
type Status string

const (
	StatusGood   Status = "good"
	StatusNormal Status = "normal"
	StatusBad    Status = "bad"
	// StatusInsufficientData marks indicators whose inputs were missing or
	// zero-divisor; the value is reported as 0 but means "unknown".
	StatusInsufficientData Status = "insufficient_data"
	// StatusNotApplicable marks indicators excluded by the revenue model.
	StatusNotApplicable Status = "not_applicable"
)

// FinancialIndicator is one computed metric with its classification.
type FinancialIndicator struct {
	Value       float64 `json:"value"`
	Status      Status  `json:"status"`
	Description string  `json:"description"`
}

// CalculatedIndicators is the full indicator report for one snapshot.
// Exactly one of LTVSubscription/LTVTransactional is populated, matching the
// revenue model; both are nil for mixed-model businesses, in which case
// LTVToCAC carries StatusNotApplicable.
type CalculatedIndicators struct {
	EBITDA             FinancialIndicator  `json:"ebitda"`
	GrossMargin        FinancialIndicator  `json:"gross_margin"`
	OperatingMargin    FinancialIndicator  `json:"operating_margin"`
	CurrentRatio       FinancialIndicator  `json:"current_ratio"`
	DebtToEquity       FinancialIndicator  `json:"debt_to_equity"`
	ROE                FinancialIndicator  `json:"roe"`
	ROA                FinancialIndicator  `json:"roa"`
	RunwayMonths       FinancialIndicator  `json:"runway_months"`
	RevenuePerEmployee FinancialIndicator  `json:"revenue_per_employee"`
	YoYGrowth          FinancialIndicator  `json:"yoy_growth"`
	RDIntensity        FinancialIndicator  `json:"rd_intensity"`
	ExportShare        FinancialIndicator  `json:"export_share"`
	CapexRatio         FinancialIndicator  `json:"capex_ratio"`
	CAC                FinancialIndicator  `json:"cac"`
	MonthlyChurn       FinancialIndicator  `json:"monthly_churn"`
	LTVSubscription    *FinancialIndicator `json:"ltv_sub,omitempty"`
	LTVTransactional   *FinancialIndicator `json:"ltv_tx,omitempty"`
	LTVToCAC           FinancialIndicator  `json:"ltv_cac"`
	CapitalGap         FinancialIndicator  `json:"capital_gap"`
}
