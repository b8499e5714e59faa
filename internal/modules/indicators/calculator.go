package indicators

import (
	"github.com/rs/zerolog"
)

// Calculator derives the full indicator report from one snapshot.
type Calculator struct {
	log zerolog.Logger
}

// NewCalculator creates a new indicator calculator.
func NewCalculator(log zerolog.Logger) *Calculator {
	return &Calculator{
		log: log.With().Str("service", "indicators").Logger(),
	}
}

// CalculateAll computes every indicator for the snapshot. It never fails:
// uncomputable ratios come back as zero-valued indicators with
// StatusInsufficientData.
func (c *Calculator) CalculateAll(snapshot FinancialSnapshot, profile BusinessProfile) CalculatedIndicators {
	inc := snapshot.IncomeStatement
	bal := snapshot.BalanceSheet
	com := snapshot.Commercial

	// Derived base quantities
	revenue := inc.DomesticSales + inc.ExportSales
	grossProfit := revenue - inc.CostOfSales
	operatingProfit := grossProfit - inc.OperatingExpenses
	totalAssets := bal.CurrentAssets + bal.NonCurrentAssets
	totalLiabilities := bal.CurrentLiabilities + bal.NonCurrentLiabilities

	employees := profile.EmployeeCount
	if employees < 1 {
		employees = 1
	}

	report := CalculatedIndicators{
		EBITDA:             c.ebitda(operatingProfit),
		GrossMargin:        c.marginPct(grossProfit, revenue, 30, 20, "Gross profit as a percentage of revenue"),
		OperatingMargin:    c.marginPct(operatingProfit, revenue, 15, 5, "Operating profit as a percentage of revenue"),
		CurrentRatio:       c.currentRatio(bal),
		DebtToEquity:       c.debtToEquity(totalLiabilities, bal.Equity),
		ROE:                c.marginPct(inc.NetIncome, bal.Equity, 12, 6, "Net income as a percentage of equity"),
		ROA:                c.marginPct(inc.NetIncome, totalAssets, 8, 3, "Net income as a percentage of total assets"),
		RunwayMonths:       c.runway(bal.Cash, snapshot.Operations.MonthlyBurnRate),
		RevenuePerEmployee: c.revenuePerEmployee(revenue, employees),
		YoYGrowth:          c.yoyGrowth(revenue, inc.PriorYearRevenue),
		RDIntensity:        c.rdIntensity(inc.RDSpend, revenue),
		ExportShare:        c.marginPct(inc.ExportSales, revenue, 20, 10, "Export sales as a percentage of revenue"),
		CapexRatio:         c.capexRatio(inc.CapitalExpenditure, revenue),
		CapitalGap:         c.capitalGap(revenue, profile.RequestedAmount),
	}

	report.CAC = c.cac(com)
	report.MonthlyChurn = c.monthlyChurn(com)

	// Model-conditional lifetime value: exactly one variant, or neither for
	// mixed-model businesses.
	switch snapshot.ReportDetails.RevenueModel {
	case RevenueModelSubscription:
		ltv := c.ltvSubscription(com, report.MonthlyChurn, report.CAC)
		report.LTVSubscription = &ltv
		report.LTVToCAC = c.ltvToCAC(ltv, report.CAC)
	case RevenueModelTransactional:
		ltv := c.ltvTransactional(com, report.CAC)
		report.LTVTransactional = &ltv
		report.LTVToCAC = c.ltvToCAC(ltv, report.CAC)
	default:
		// Mixed (or unspecified) model: no LTV variant applies, and the
		// combined ratio is reported as not applicable instead of a
		// spurious bad score.
		report.LTVToCAC = FinancialIndicator{
			Value:       0,
			Status:      StatusNotApplicable,
			Description: "LTV to CAC ratio (not applicable for mixed revenue models)",
		}
	}

	c.log.Debug().
		Str("revenue_model", string(snapshot.ReportDetails.RevenueModel)).
		Float64("revenue", revenue).
		Msg("Calculated indicator report")

	return report
}

// classify applies the generic two-floor rule for higher-is-better ratios.
func classify(value, goodMin, normalMin float64) Status {
	switch {
	case value >= goodMin:
		return StatusGood
	case value >= normalMin:
		return StatusNormal
	default:
		return StatusBad
	}
}

func (c *Calculator) ebitda(operatingProfit float64) FinancialIndicator {
	status := StatusBad
	switch {
	case operatingProfit > 0:
		status = StatusGood
	case operatingProfit >= 0:
		status = StatusNormal
	}
	return FinancialIndicator{
		Value:       operatingProfit,
		Status:      status,
		Description: "Operating profit as an EBITDA proxy",
	}
}

// marginPct computes numerator/denominator in percentage space and applies
// the generic classifier. A non-positive denominator yields insufficient data.
func (c *Calculator) marginPct(numerator, denominator, goodMin, normalMin float64, description string) FinancialIndicator {
	if denominator <= 0 {
		return FinancialIndicator{Value: 0, Status: StatusInsufficientData, Description: description}
	}
	value := numerator / denominator * 100
	return FinancialIndicator{Value: value, Status: classify(value, goodMin, normalMin), Description: description}
}

func (c *Calculator) currentRatio(bal BalanceSheet) FinancialIndicator {
	description := "Current assets over current liabilities"
	if bal.CurrentLiabilities <= 0 {
		return FinancialIndicator{Value: 0, Status: StatusInsufficientData, Description: description}
	}
	value := bal.CurrentAssets / bal.CurrentLiabilities
	return FinancialIndicator{Value: value, Status: classify(value, 1.5, 1.0), Description: description}
}

// debtToEquity is inverted: lower is better.
func (c *Calculator) debtToEquity(totalLiabilities, equity float64) FinancialIndicator {
	description := "Total liabilities over equity"
	if equity <= 0 {
		return FinancialIndicator{Value: 0, Status: StatusInsufficientData, Description: description}
	}
	value := totalLiabilities / equity
	status := StatusBad
	switch {
	case value < 1.0:
		status = StatusGood
	case value <= 2.0:
		status = StatusNormal
	}
	return FinancialIndicator{Value: value, Status: status, Description: description}
}

func (c *Calculator) runway(cash, monthlyBurn float64) FinancialIndicator {
	description := "Months of runway at the current burn rate"
	if monthlyBurn <= 0 {
		return FinancialIndicator{Value: 0, Status: StatusInsufficientData, Description: description}
	}
	value := cash / monthlyBurn
	return FinancialIndicator{Value: value, Status: classify(value, 12, 6), Description: description}
}

func (c *Calculator) revenuePerEmployee(revenue float64, employees int) FinancialIndicator {
	value := revenue / float64(employees)
	return FinancialIndicator{
		Value:       value,
		Status:      classify(value, 100000, 50000),
		Description: "Revenue per employee",
	}
}

func (c *Calculator) yoyGrowth(revenue float64, prior *float64) FinancialIndicator {
	description := "Year-over-year revenue growth percentage"
	if prior == nil || *prior <= 0 {
		return FinancialIndicator{Value: 0, Status: StatusInsufficientData, Description: description}
	}
	value := (revenue - *prior) / *prior * 100
	return FinancialIndicator{Value: value, Status: classify(value, 15, 5), Description: description}
}

// rdIntensity uses a band: a healthy business invests meaningfully in R&D
// without letting it dominate.
func (c *Calculator) rdIntensity(rdSpend, revenue float64) FinancialIndicator {
	description := "R&D spend as a percentage of revenue"
	if revenue <= 0 {
		return FinancialIndicator{Value: 0, Status: StatusInsufficientData, Description: description}
	}
	value := rdSpend / revenue * 100

	var status Status
	switch {
	case value >= 5 && value <= 15:
		status = StatusGood
	case (value >= 1 && value < 5) || value > 15:
		status = StatusNormal
	default:
		status = StatusBad
	}
	return FinancialIndicator{Value: value, Status: status, Description: description}
}

func (c *Calculator) capexRatio(capex, revenue float64) FinancialIndicator {
	desc := "Capital expenditure as a percentage of revenue"
	if revenue <= 0 {
		return FinancialIndicator{Value: 0, Status: StatusInsufficientData, Description: desc}
	}
	value := capex / revenue * 100

	var status Status
	switch {
	case value >= 5 && value <= 15:
		status = StatusGood
	case value < 5 || value > 20:
		status = StatusNormal
	default:
		status = StatusBad
	}
	return FinancialIndicator{Value: value, Status: status, Description: desc}
}

// cac has no absolute benchmark; a computed value always classifies normal.
func (c *Calculator) cac(com Commercial) FinancialIndicator {
	description := "Acquisition spend per new customer"
	if com.NewCustomers <= 0 {
		return FinancialIndicator{Value: 0, Status: StatusInsufficientData, Description: description}
	}
	value := com.AcquisitionSpend / com.NewCustomers
	return FinancialIndicator{Value: value, Status: StatusNormal, Description: description}
}

// monthlyChurn normalizes the reported churn to a monthly percentage and is
// inverted: lower is better.
func (c *Calculator) monthlyChurn(com Commercial) FinancialIndicator {
	description := "Monthly customer churn percentage"
	if com.StartingCustomers <= 0 {
		return FinancialIndicator{Value: 0, Status: StatusInsufficientData, Description: description}
	}

	value := com.ChurnedCustomers / com.StartingCustomers * 100
	switch com.Periodicity {
	case PeriodicityAnnual:
		value /= 12
	case PeriodicityQuarterly:
		value /= 3
	}

	status := StatusBad
	switch {
	case value < 3:
		status = StatusGood
	case value <= 5:
		status = StatusNormal
	}
	return FinancialIndicator{Value: value, Status: status, Description: description}
}

// ltvSubscription computes lifetime value as ARPU over the monthly churn
// rate, classified relative to CAC.
func (c *Calculator) ltvSubscription(com Commercial, churn, cac FinancialIndicator) FinancialIndicator {
	description := "Customer lifetime value (subscription model)"
	if com.MRR == nil || com.AvgActiveCustomers == nil || *com.AvgActiveCustomers <= 0 {
		return FinancialIndicator{Value: 0, Status: StatusInsufficientData, Description: description}
	}
	if churn.Status == StatusInsufficientData || churn.Value <= 0 {
		return FinancialIndicator{Value: 0, Status: StatusInsufficientData, Description: description}
	}

	arpu := *com.MRR / *com.AvgActiveCustomers
	churnRate := churn.Value / 100
	value := arpu / churnRate

	return FinancialIndicator{Value: value, Status: ltvStatusAgainstCAC(value, cac), Description: description}
}

// ltvTransactional computes lifetime value as ticket size times annual
// frequency times retention, classified relative to CAC.
func (c *Calculator) ltvTransactional(com Commercial, cac FinancialIndicator) FinancialIndicator {
	description := "Customer lifetime value (transactional model)"
	if com.AvgTicket == nil || com.PurchaseFrequency == nil || com.RetentionYears == nil {
		return FinancialIndicator{Value: 0, Status: StatusInsufficientData, Description: description}
	}

	value := *com.AvgTicket * *com.PurchaseFrequency * *com.RetentionYears
	return FinancialIndicator{Value: value, Status: ltvStatusAgainstCAC(value, cac), Description: description}
}

// ltvStatusAgainstCAC classifies an LTV relative to acquisition cost.
func ltvStatusAgainstCAC(ltv float64, cac FinancialIndicator) Status {
	if cac.Status == StatusInsufficientData || cac.Value <= 0 {
		return StatusInsufficientData
	}
	switch {
	case ltv > 3*cac.Value:
		return StatusGood
	case ltv > 2*cac.Value:
		return StatusNormal
	default:
		return StatusBad
	}
}

func (c *Calculator) ltvToCAC(ltv, cac FinancialIndicator) FinancialIndicator {
	description := "LTV to CAC ratio"
	if ltv.Status == StatusInsufficientData || cac.Status == StatusInsufficientData || cac.Value <= 0 {
		return FinancialIndicator{Value: 0, Status: StatusInsufficientData, Description: description}
	}
	value := ltv.Value / cac.Value
	return FinancialIndicator{Value: value, Status: classify(value, 3, 2), Description: description}
}

// capitalGap compares the capital request against revenue. Without an actual
// requested amount the request is assumed at 30% of revenue, which makes the
// indicator a constant; callers should supply the real figure when available.
func (c *Calculator) capitalGap(revenue float64, requested *float64) FinancialIndicator {
	description := "Capital request as a percentage of revenue"
	if revenue <= 0 {
		return FinancialIndicator{Value: 0, Status: StatusInsufficientData, Description: description}
	}

	request := revenue * 0.30
	if requested != nil && *requested > 0 {
		request = *requested
	}

	value := request / revenue * 100
	status := StatusBad
	switch {
	case value <= 20:
		status = StatusGood
	case value <= 40:
		status = StatusNormal
	}
	return FinancialIndicator{Value: value, Status: status, Description: description}
}
