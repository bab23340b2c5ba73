package layout

import (
	"fmt"
	"strconv"
)

var errNoProducts = fmt.Errorf("%w: 发票至少需要一个商品", ErrPrecondition)

// Metrics 保存固定字号、行高与左侧起点（均为 pt）。
type Metrics struct {
	FontSizeS   float64
	LineHeightS float64
	FontSize    float64
	LineHeight  float64
	FontSizeL   float64
	LineHeightL float64
	// RowHeight 是合计行及表格后留白使用的行高。
	RowHeight float64
	PadLeft   float64
}

// DefaultMetrics returns the fixed typographic constants of all documents.
func DefaultMetrics() Metrics {
	return Metrics{
		FontSizeS:   8,
		LineHeightS: 15,
		FontSize:    12,
		LineHeight:  15,
		FontSizeL:   14,
		LineHeightL: 16,
		RowHeight:   17,
		PadLeft:     Pt(2),
	}
}

// ContentRenderer draws the content phase starting at cursor and returns the
// cursor below the last block it occupied.
type ContentRenderer interface {
	RenderContent(s Surface, m Metrics, cursor float64) (float64, error)
}

// Preflighter 是可选接口：引擎在绘制任何内容之前调用 Preflight 检查前置条件。
type Preflighter interface {
	Preflight() error
}

// PlainContent 逐行绘制正文。
type PlainContent struct {
	Lines []string
}

func (p PlainContent) RenderContent(s Surface, m Metrics, cursor float64) (float64, error) {
	for i, line := range p.Lines {
		s.SetFontSize(m.FontSize)
		s.DrawText(line, m.PadLeft, cursor+float64(i)*m.LineHeight, TextOptions{})
	}
	return cursor + float64(len(p.Lines))*m.LineHeight, nil
}

// 发票表格的列位置（cm）。
const (
	invoiceNameCol   = 4.0
	invoiceSingleCol = 13.0
	invoiceSumCol    = 17.0
	invoiceRuleEnd   = 19.0
	invoiceRuleInset = 5.0 // 分隔线向左多出的 pt
	invoiceRuleGap   = 5.0 // 分隔线下方留白（pt）
	tableGapRows     = 3
)

// InvoiceTable 绘制商品表、合计、可选税额行，然后是正文。
type InvoiceTable struct {
	Config *InvoiceConfig
}

var (
	_ Preflighter     = (*InvoiceTable)(nil)
	_ ContentRenderer = (*InvoiceTable)(nil)
)

func (t *InvoiceTable) Preflight() error {
	if t.Config == nil || len(t.Config.Products) == 0 {
		return errNoProducts
	}
	return nil
}

func (t *InvoiceTable) RenderContent(s Surface, m Metrics, cursor float64) (float64, error) {
	if err := t.Preflight(); err != nil {
		return cursor, err
	}
	cfg := t.Config
	totals, err := InvoiceTotals(cfg.Products, cfg.Tax)
	if err != nil {
		return cursor, err
	}
	amountX := m.PadLeft
	nameX := Pt(invoiceNameCol)
	singleX := Pt(invoiceSingleCol)
	sumX := Pt(invoiceSumCol)

	// 表头
	s.SetFontSize(m.FontSize)
	s.DrawText(cfg.Labels.Amount, amountX, cursor, TextOptions{})
	s.DrawText(cfg.Labels.Description, nameX, cursor, TextOptions{})
	s.DrawText(cfg.Labels.SinglePrice, singleX, cursor, TextOptions{})
	s.DrawText(cfg.Labels.LineSum, sumX, cursor, TextOptions{})
	cursor += m.LineHeight

	if !cfg.OmitHeaderRule {
		s.MoveTo(amountX-invoiceRuleInset, cursor)
		s.LineTo(Pt(invoiceRuleEnd), cursor)
		s.Stroke()
		cursor += invoiceRuleGap
	}

	// 商品行
	for i, p := range cfg.Products {
		y := cursor + float64(i)*m.LineHeight
		s.SetFontSize(m.FontSize)
		s.DrawText(strconv.Itoa(p.Amount), amountX, y, TextOptions{})
		s.DrawText(p.Name, nameX, y, TextOptions{})
		s.DrawText(FormatMoney(p.Price, cfg.DecimalSymbol, cfg.Currency), singleX, y, TextOptions{})
		s.DrawText(FormatMoney(p.LineSum(), cfg.DecimalSymbol, cfg.Currency), sumX, y, TextOptions{})
	}
	cursor += float64(len(cfg.Products)) * m.LineHeight

	// 合计
	s.SetFontSize(m.FontSizeL)
	s.DrawText(cfg.Labels.Sum, singleX, cursor, TextOptions{})
	s.DrawText(FormatMoney(totals.Sum, cfg.DecimalSymbol, cfg.Currency), sumX, cursor, TextOptions{})
	cursor += m.RowHeight

	// 税额与含税合计，仅在设置了税额时输出
	if totals.Tax.Valid {
		s.SetFontSize(m.FontSize)
		s.DrawText("+ "+cfg.Labels.Tax+" "+cfg.TaxPercentage.String()+"%", singleX, cursor, TextOptions{})
		s.DrawText(FormatMoney(totals.Tax.Decimal, cfg.DecimalSymbol, cfg.Currency), sumX, cursor, TextOptions{})
		cursor += m.RowHeight

		s.DrawText(cfg.Labels.Gross, singleX, cursor, TextOptions{})
		s.DrawText(FormatMoney(totals.Gross, cfg.DecimalSymbol, cfg.Currency), sumX, cursor, TextOptions{})
		cursor += tableGapRows * m.RowHeight
	}

	return PlainContent{Lines: cfg.Content}.RenderContent(s, m, cursor)
}

// DeliveryTable 绘制送货单商品表（无价格），然后是正文。
type DeliveryTable struct {
	Config *DeliveryNoteConfig
}

var _ ContentRenderer = (*DeliveryTable)(nil)

func (t *DeliveryTable) RenderContent(s Surface, m Metrics, cursor float64) (float64, error) {
	cfg := t.Config
	if cfg == nil {
		return cursor, fmt.Errorf("%w: 缺少送货单配置", ErrPrecondition)
	}
	amountX := m.PadLeft
	nameX := Pt(invoiceNameCol)

	s.SetFontSize(m.FontSize)
	s.DrawText(cfg.Labels.Amount, amountX, cursor, TextOptions{})
	s.DrawText(cfg.Labels.Description, nameX, cursor, TextOptions{})
	cursor += m.LineHeight

	for i, p := range cfg.Products {
		y := cursor + float64(i)*m.LineHeight
		s.SetFontSize(m.FontSize)
		s.DrawText(strconv.Itoa(p.Amount), amountX, y, TextOptions{})
		s.DrawText(p.Name, nameX, y, TextOptions{})
	}
	cursor += float64(len(cfg.Products)) * m.LineHeight
	cursor += tableGapRows * m.RowHeight

	return PlainContent{Lines: cfg.Content}.RenderContent(s, m, cursor)
}
