package layout

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney 保留两位小数，用 decimalSymbol 替换小数点并追加货币符号，例如 "8,22 €"。
func FormatMoney(amount decimal.Decimal, decimalSymbol, currency string) string {
	s := strings.Replace(amount.StringFixed(2), ".", decimalSymbol, 1)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// Totals 是发票的合计金额。
type Totals struct {
	Sum   decimal.Decimal
	Tax   decimal.NullDecimal
	Gross decimal.Decimal // 未设置税额时等于 Sum
}

// InvoiceTotals sums price*amount over products and adds tax when set.
// 商品列表为空时没有定义合计，返回 ErrPrecondition。
func InvoiceTotals(products []InvoiceProduct, tax decimal.NullDecimal) (Totals, error) {
	if len(products) == 0 {
		return Totals{}, errNoProducts
	}
	sum := products[0].LineSum()
	for _, p := range products[1:] {
		sum = sum.Add(p.LineSum())
	}
	t := Totals{Sum: sum, Tax: tax, Gross: sum}
	if tax.Valid {
		t.Gross = sum.Add(tax.Decimal)
	}
	return t, nil
}
