package layout

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// 行数上限，与下方结构体上的 validate 标签保持一致。
const (
	MaxReceiverLines      = 6
	MaxSenderLines        = 9
	MaxLetterContentLines = 35
	MaxTableContentLines  = 8
	MaxFooterLines        = 2
	MaxProducts           = 8
)

// Kind identifies the document type of a configuration.
type Kind string

const (
	KindLetter       Kind = "letter"
	KindInvoice      Kind = "invoice"
	KindDeliveryNote Kind = "delivery-note"
)

// DefaultPath 返回未指定输出路径时使用的文件名。
func (k Kind) DefaultPath() string {
	switch k {
	case KindInvoice:
		return "invoice.pdf"
	case KindDeliveryNote:
		return "deliveryNote.pdf"
	default:
		return "letter.pdf"
	}
}

// Config is implemented by every document configuration.
type Config interface {
	Kind() Kind
	Validate() error
	Header() *Head
	ContentRenderer() ContentRenderer
}

var (
	_ Config = (*LetterConfig)(nil)
	_ Config = (*InvoiceConfig)(nil)
	_ Config = (*DeliveryNoteConfig)(nil)
)

// Head 保存所有文档类型共用的信头与页脚字段。
type Head struct {
	ReturnText  string   `json:"returnText" yaml:"returnText"`
	Receiver    []string `json:"receiver" yaml:"receiver" validate:"max=6"`
	Sender      []string `json:"sender" yaml:"sender" validate:"max=9"`
	Logo        string   `json:"logo,omitempty" yaml:"logo,omitempty"` // 空字符串表示没有 logo
	Subject     string   `json:"subject" yaml:"subject"`
	Footer      []string `json:"footer,omitempty" yaml:"footer,omitempty" validate:"max=2"` // 为空表示没有页脚
	ShowBorders bool     `json:"showBorders,omitempty" yaml:"showBorders,omitempty"`
}

// HasFooter reports whether the footer phase draws anything.
func (h *Head) HasFooter() bool { return len(h.Footer) > 0 }

// HasLogo reports whether a logo reference is set.
func (h *Head) HasLogo() bool { return h.Logo != "" }

func (h *Head) setReceiver(lines []string) error {
	if err := checkMax("receiver", len(lines), MaxReceiverLines); err != nil {
		return err
	}
	h.Receiver = cloneLines(lines)
	return nil
}

func (h *Head) setSender(lines []string) error {
	if err := checkMax("sender", len(lines), MaxSenderLines); err != nil {
		return err
	}
	h.Sender = cloneLines(lines)
	return nil
}

func (h *Head) setFooter(lines []string) error {
	if err := checkMax("footer", len(lines), MaxFooterLines); err != nil {
		return err
	}
	h.Footer = cloneLines(lines)
	return nil
}

// LetterConfig holds the fields of a plain letter.
type LetterConfig struct {
	Head    `yaml:",inline"`
	Content []string `json:"content" yaml:"content" validate:"max=35"`
}

// NewLetterConfig returns an empty letter configuration.
func NewLetterConfig() *LetterConfig { return &LetterConfig{} }

func (c *LetterConfig) Kind() Kind      { return KindLetter }
func (c *LetterConfig) Header() *Head   { return &c.Head }
func (c *LetterConfig) Validate() error { return validateStruct(c) }

// ContentRenderer 返回普通正文渲染器。
func (c *LetterConfig) ContentRenderer() ContentRenderer {
	return PlainContent{Lines: c.Content}
}

func (c *LetterConfig) SetReturnText(text string) *LetterConfig {
	c.ReturnText = text
	return c
}

// SetReceiver sets the receiver block (max 6 lines).
func (c *LetterConfig) SetReceiver(lines ...string) (*LetterConfig, error) {
	if err := c.setReceiver(lines); err != nil {
		return nil, err
	}
	return c, nil
}

// SetSender sets the sender information column (max 9 lines).
func (c *LetterConfig) SetSender(lines ...string) (*LetterConfig, error) {
	if err := c.setSender(lines); err != nil {
		return nil, err
	}
	return c, nil
}

// SetLogo sets the logo image reference; an empty string removes it.
func (c *LetterConfig) SetLogo(ref string) *LetterConfig {
	c.Logo = ref
	return c
}

func (c *LetterConfig) SetSubject(text string) *LetterConfig {
	c.Subject = text
	return c
}

// SetContent sets the body lines (max 35).
func (c *LetterConfig) SetContent(lines ...string) (*LetterConfig, error) {
	if err := checkMax("content", len(lines), MaxLetterContentLines); err != nil {
		return nil, err
	}
	c.Content = cloneLines(lines)
	return c, nil
}

// SetFooter sets the footer lines (max 2); no lines removes the footer.
func (c *LetterConfig) SetFooter(lines ...string) (*LetterConfig, error) {
	if err := c.setFooter(lines); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *LetterConfig) SetShowBorders(show bool) *LetterConfig {
	c.ShowBorders = show
	return c
}

// InvoiceProduct is one line item of an invoice.
type InvoiceProduct struct {
	Name   string          `json:"name" yaml:"name"`
	Price  decimal.Decimal `json:"price" yaml:"price"`
	Amount int             `json:"amount" yaml:"amount" validate:"min=1"`
}

// NewInvoiceProduct 创建数量为 1 的商品行。
func NewInvoiceProduct(name string, price decimal.Decimal) InvoiceProduct {
	return InvoiceProduct{Name: name, Price: price, Amount: 1}
}

// LineSum returns price * amount.
func (p InvoiceProduct) LineSum() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Amount)))
}

// InvoiceLabels are the column and totals captions of the invoice table.
type InvoiceLabels struct {
	Amount      string `json:"amount" yaml:"amount"`
	Description string `json:"description" yaml:"description"`
	SinglePrice string `json:"singlePrice" yaml:"singlePrice"`
	LineSum     string `json:"lineSum" yaml:"lineSum"`
	Sum         string `json:"sum" yaml:"sum"`
	Tax         string `json:"tax" yaml:"tax"`
	Gross       string `json:"gross" yaml:"gross"`
}

// DefaultInvoiceLabels 返回德语默认表头。
func DefaultInvoiceLabels() InvoiceLabels {
	return InvoiceLabels{
		Amount:      "Anzahl",
		Description: "Beschreibung",
		SinglePrice: "Einzelpreis",
		LineSum:     "Summe",
		Sum:         "Gesamt",
		Tax:         "MwSt.",
		Gross:       "Brutto",
	}
}

// InvoiceConfig holds the fields of an invoice.
type InvoiceConfig struct {
	Head           `yaml:",inline"`
	Content        []string            `json:"content" yaml:"content" validate:"max=8"`
	Currency       string              `json:"currency" yaml:"currency"`
	TaxPercentage  decimal.Decimal     `json:"taxPercentage" yaml:"taxPercentage"`
	DecimalSymbol  string              `json:"decimalSymbol" yaml:"decimalSymbol"`
	Tax            decimal.NullDecimal `json:"tax" yaml:"tax"` // Valid=false 时不输出税额与含税合计
	Labels         InvoiceLabels       `json:"labels" yaml:"labels"`
	Products       []InvoiceProduct    `json:"products" yaml:"products" validate:"max=8,dive"`
	OmitHeaderRule bool                `json:"omitHeaderRule,omitempty" yaml:"omitHeaderRule,omitempty"`
}

// NewInvoiceConfig returns an invoice configuration with the default currency (€),
// tax percentage (19), decimal symbol (",") and German labels.
func NewInvoiceConfig() *InvoiceConfig {
	return &InvoiceConfig{
		Currency:      "€",
		TaxPercentage: decimal.NewFromInt(19),
		DecimalSymbol: ",",
		Labels:        DefaultInvoiceLabels(),
	}
}

func (c *InvoiceConfig) Kind() Kind      { return KindInvoice }
func (c *InvoiceConfig) Header() *Head   { return &c.Head }
func (c *InvoiceConfig) Validate() error { return validateStruct(c) }

// ContentRenderer 返回发票表格渲染器。
func (c *InvoiceConfig) ContentRenderer() ContentRenderer {
	return &InvoiceTable{Config: c}
}

func (c *InvoiceConfig) SetReturnText(text string) *InvoiceConfig {
	c.ReturnText = text
	return c
}

func (c *InvoiceConfig) SetReceiver(lines ...string) (*InvoiceConfig, error) {
	if err := c.setReceiver(lines); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *InvoiceConfig) SetSender(lines ...string) (*InvoiceConfig, error) {
	if err := c.setSender(lines); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *InvoiceConfig) SetLogo(ref string) *InvoiceConfig {
	c.Logo = ref
	return c
}

func (c *InvoiceConfig) SetSubject(text string) *InvoiceConfig {
	c.Subject = text
	return c
}

// SetContent sets the text below the table (max 8 lines).
func (c *InvoiceConfig) SetContent(lines ...string) (*InvoiceConfig, error) {
	if err := checkMax("content", len(lines), MaxTableContentLines); err != nil {
		return nil, err
	}
	c.Content = cloneLines(lines)
	return c, nil
}

func (c *InvoiceConfig) SetFooter(lines ...string) (*InvoiceConfig, error) {
	if err := c.setFooter(lines); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *InvoiceConfig) SetShowBorders(show bool) *InvoiceConfig {
	c.ShowBorders = show
	return c
}

// SetProducts sets the line items (max 8, each amount >= 1).
func (c *InvoiceConfig) SetProducts(products ...InvoiceProduct) (*InvoiceConfig, error) {
	if err := checkMax("products", len(products), MaxProducts); err != nil {
		return nil, err
	}
	for i, p := range products {
		if err := checkMin("products["+strconv.Itoa(i)+"].amount", p.Amount, 1); err != nil {
			return nil, err
		}
	}
	c.Products = append([]InvoiceProduct(nil), products...)
	return c, nil
}

func (c *InvoiceConfig) SetCurrency(currency string) *InvoiceConfig {
	c.Currency = currency
	return c
}

func (c *InvoiceConfig) SetTaxPercentage(percentage decimal.Decimal) *InvoiceConfig {
	c.TaxPercentage = percentage
	return c
}

// SetTax sets the absolute tax amount. The tax and gross rows are only drawn when set.
func (c *InvoiceConfig) SetTax(tax decimal.Decimal) *InvoiceConfig {
	c.Tax = decimal.NullDecimal{Decimal: tax, Valid: true}
	return c
}

// ClearTax removes the tax amount.
func (c *InvoiceConfig) ClearTax() *InvoiceConfig {
	c.Tax = decimal.NullDecimal{}
	return c
}

// SetDecimalSymbol sets the symbol replacing "." in formatted amounts, usually "," or ".".
func (c *InvoiceConfig) SetDecimalSymbol(symbol string) *InvoiceConfig {
	c.DecimalSymbol = symbol
	return c
}

func (c *InvoiceConfig) SetLabels(labels InvoiceLabels) *InvoiceConfig {
	c.Labels = labels
	return c
}

func (c *InvoiceConfig) SetOmitHeaderRule(omit bool) *InvoiceConfig {
	c.OmitHeaderRule = omit
	return c
}

// DeliveryNoteProduct is one line item of a delivery note (no price).
type DeliveryNoteProduct struct {
	Name   string `json:"name" yaml:"name"`
	Amount int    `json:"amount" yaml:"amount" validate:"min=1"`
}

// NewDeliveryNoteProduct 创建数量为 1 的商品行。
func NewDeliveryNoteProduct(name string) DeliveryNoteProduct {
	return DeliveryNoteProduct{Name: name, Amount: 1}
}

// DeliveryNoteLabels are the column captions of the delivery note table.
type DeliveryNoteLabels struct {
	Amount      string `json:"amount" yaml:"amount"`
	Description string `json:"description" yaml:"description"`
}

// DeliveryNoteConfig holds the fields of a delivery note.
type DeliveryNoteConfig struct {
	Head     `yaml:",inline"`
	Content  []string              `json:"content" yaml:"content" validate:"max=8"`
	Labels   DeliveryNoteLabels    `json:"labels" yaml:"labels"`
	Products []DeliveryNoteProduct `json:"products" yaml:"products" validate:"max=8,dive"`
}

// NewDeliveryNoteConfig returns a delivery note configuration with German labels.
func NewDeliveryNoteConfig() *DeliveryNoteConfig {
	return &DeliveryNoteConfig{
		Labels: DeliveryNoteLabels{Amount: "Anzahl", Description: "Beschreibung"},
	}
}

func (c *DeliveryNoteConfig) Kind() Kind      { return KindDeliveryNote }
func (c *DeliveryNoteConfig) Header() *Head   { return &c.Head }
func (c *DeliveryNoteConfig) Validate() error { return validateStruct(c) }

// ContentRenderer 返回送货单表格渲染器。
func (c *DeliveryNoteConfig) ContentRenderer() ContentRenderer {
	return &DeliveryTable{Config: c}
}

func (c *DeliveryNoteConfig) SetReturnText(text string) *DeliveryNoteConfig {
	c.ReturnText = text
	return c
}

func (c *DeliveryNoteConfig) SetReceiver(lines ...string) (*DeliveryNoteConfig, error) {
	if err := c.setReceiver(lines); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *DeliveryNoteConfig) SetSender(lines ...string) (*DeliveryNoteConfig, error) {
	if err := c.setSender(lines); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *DeliveryNoteConfig) SetLogo(ref string) *DeliveryNoteConfig {
	c.Logo = ref
	return c
}

func (c *DeliveryNoteConfig) SetSubject(text string) *DeliveryNoteConfig {
	c.Subject = text
	return c
}

func (c *DeliveryNoteConfig) SetContent(lines ...string) (*DeliveryNoteConfig, error) {
	if err := checkMax("content", len(lines), MaxTableContentLines); err != nil {
		return nil, err
	}
	c.Content = cloneLines(lines)
	return c, nil
}

func (c *DeliveryNoteConfig) SetFooter(lines ...string) (*DeliveryNoteConfig, error) {
	if err := c.setFooter(lines); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *DeliveryNoteConfig) SetShowBorders(show bool) *DeliveryNoteConfig {
	c.ShowBorders = show
	return c
}

func (c *DeliveryNoteConfig) SetProducts(products ...DeliveryNoteProduct) (*DeliveryNoteConfig, error) {
	if err := checkMax("products", len(products), MaxProducts); err != nil {
		return nil, err
	}
	for i, p := range products {
		if err := checkMin("products["+strconv.Itoa(i)+"].amount", p.Amount, 1); err != nil {
			return nil, err
		}
	}
	c.Products = append([]DeliveryNoteProduct(nil), products...)
	return c, nil
}

func (c *DeliveryNoteConfig) SetLabels(labels DeliveryNoteLabels) *DeliveryNoteConfig {
	c.Labels = labels
	return c
}

func checkMax(field string, got, limit int) error {
	if got > limit {
		return &ValidationError{Field: field, Rule: "max", Limit: limit, Got: got}
	}
	return nil
}

func checkMin(field string, got, limit int) error {
	if got < limit {
		return &ValidationError{Field: field, Rule: "min", Limit: limit, Got: got}
	}
	return nil
}

func cloneLines(lines []string) []string {
	if lines == nil {
		return nil
	}
	return append([]string(nil), lines...)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// 错误信息中使用 json 字段名，与 setter 报告的字段名一致
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct 用 struct 标签整体复核，并把第一条错误转换为 *ValidationError。
func validateStruct(cfg any) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	limit, _ := strconv.Atoi(fe.Param())
	return &ValidationError{
		Field: fieldPath(fe.Namespace()),
		Rule:  fe.Tag(),
		Limit: limit,
		Got:   measure(fe.Value()),
	}
}

// fieldPath 去掉类型名与内嵌的 Head 前缀，例如 "InvoiceConfig.Head.receiver" -> "receiver"。
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.TrimPrefix(ns, "Head.")
}

func measure(value any) int {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.String, reflect.Map:
		return v.Len()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int())
	default:
		return 0
	}
}
