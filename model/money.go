package model

import "github.com/shopspring/decimal"

// Round2 按货币规则保留两位小数（四舍五入，远离零）。
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// FormatMoney 以固定两位小数输出金额，例如 4 -> "4.00"。
func FormatMoney(d decimal.Decimal) string { return Round2(d).StringFixed(2) }

// LineAmount 计算 quantity × unitPrice 并保留两位小数。
func LineAmount(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return Round2(quantity.Mul(unitPrice))
}
