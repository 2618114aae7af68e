package inventory

import "github.com/shopspring/decimal"

// Deficit unidades faltantes para alcanzar el umbral: max(0, threshold - stock).
func Deficit(stock, threshold int) int {
	if d := threshold - stock; d > 0 {
		return d
	}
	return 0
}

// StockRatio relación stock/umbral redondeada a 2 decimales (severidad de una alerta).
// Sin umbral la relación es 0 si no hay stock y 1 en otro caso.
func StockRatio(stock, threshold int) decimal.Decimal {
	if threshold <= 0 {
		if stock <= 0 {
			return decimal.Zero
		}
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(stock)).Div(decimal.NewFromInt(int64(threshold))).Round(2)
}

// CoveragePct porcentaje del umbral total cubierto por el stock: Σmin(stock, umbral) / Σumbral * 100.
// Devuelve 100 cuando no hay umbrales configurados.
func CoveragePct(covered, thresholdTotal int) decimal.Decimal {
	if thresholdTotal <= 0 {
		return decimal.NewFromInt(100)
	}
	return decimal.NewFromInt(int64(covered)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(thresholdTotal))).
		Round(2)
}
