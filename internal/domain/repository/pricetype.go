package repository

// PriceType distinguishes day-ahead forecasts from realized settlements.
type PriceType string

const (
	PriceForecast PriceType = "forecast"
	PriceActual   PriceType = "actual"
)

// IsValidPriceType returns true if pt is a supported price type.
func IsValidPriceType(pt PriceType) bool {
	switch pt {
	case PriceForecast, PriceActual:
		return true
	default:
		return false
	}
}

// NormalizePriceType converts a raw string to a valid price type (or forecast).
func NormalizePriceType(s string) PriceType {
	pt := PriceType(s)
	if IsValidPriceType(pt) {
		return pt
	}
	return PriceForecast
}
