package rates

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/Convexo-finance/fund-convexo-sub001/internal/domain"
)

// FormatCurrency renders an amount with the asset's display symbol, decimal
// precision, and locale-specific digit grouping.
func (s *Service) FormatCurrency(amount float64, code string) (string, error) {
	asset, err := domain.GetAsset(code)
	if err != nil {
		return "", err
	}

	tag, err := language.Parse(asset.Locale)
	if err != nil {
		tag = language.English
	}

	p := message.NewPrinter(tag)
	formatted := p.Sprintf("%v", number.Decimal(amount,
		number.MinFractionDigits(asset.Decimals),
		number.MaxFractionDigits(asset.Decimals),
	))

	return asset.Symbol + formatted, nil
}
