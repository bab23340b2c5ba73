package layout

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Patrick762/pdf-letter/binding"
	"github.com/Patrick762/pdf-letter/dsl"
)

// Build 根据 DSL AST 生成对应类型的文档配置。所有赋值都经过 setter，
// 因此行数上限与 setter 调用时一致；字符串中的 ${path} 用 data 插值。
func Build(doc *dsl.Document, data any) (Config, error) {
	if doc == nil || doc.Block == nil {
		return nil, fmt.Errorf("%w: 文档为空", ErrPrecondition)
	}
	b := &builder{data: data}
	var (
		cfg Config
		err error
	)
	switch Kind(doc.Kind) {
	case KindLetter:
		letter := NewLetterConfig()
		cfg = letter
		err = b.each(doc.Block, func(a *dsl.Assignment) error { return b.applyLetter(letter, a) }, nil)
	case KindInvoice:
		invoice := NewInvoiceConfig()
		cfg = invoice
		err = b.each(doc.Block,
			func(a *dsl.Assignment) error { return b.applyInvoice(invoice, a) },
			func(s *dsl.Section) error { return b.invoiceLabels(invoice, s) })
	case KindDeliveryNote:
		note := NewDeliveryNoteConfig()
		cfg = note
		err = b.each(doc.Block,
			func(a *dsl.Assignment) error { return b.applyDeliveryNote(note, a) },
			func(s *dsl.Section) error { return b.deliveryNoteLabels(note, s) })
	default:
		return nil, fmt.Errorf("%w: %q（支持 letter、invoice、delivery-note）", ErrUnknownKind, doc.Kind)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

type builder struct {
	data any
}

func (b *builder) each(block *dsl.Block, assign func(*dsl.Assignment) error, section func(*dsl.Section) error) error {
	for _, st := range block.Statements {
		switch {
		case st.Assignment != nil:
			if err := assign(st.Assignment); err != nil {
				return err
			}
		case st.Section != nil:
			if section == nil {
				return fmt.Errorf("%w: 段落 %s（%s）", ErrUnknownField, st.Section.Name, st.Section.Pos)
			}
			if err := section(st.Section); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyHead 处理三种文档共用的字段；返回 false 表示该键不属于信头。
func (b *builder) applyHead(h *Head, a *dsl.Assignment) (bool, error) {
	var err error
	switch a.Key {
	case "return-text":
		h.ReturnText, err = b.str(a)
	case "receiver":
		var lines []string
		if lines, err = b.lines(a); err == nil {
			err = h.setReceiver(lines)
		}
	case "sender":
		var lines []string
		if lines, err = b.lines(a); err == nil {
			err = h.setSender(lines)
		}
	case "logo":
		h.Logo, err = b.str(a)
	case "subject":
		h.Subject, err = b.str(a)
	case "footer":
		var lines []string
		if lines, err = b.lines(a); err == nil {
			err = h.setFooter(lines)
		}
	case "show-borders":
		h.ShowBorders, err = b.boolean(a)
	default:
		return false, nil
	}
	return true, err
}

func (b *builder) applyLetter(cfg *LetterConfig, a *dsl.Assignment) error {
	if ok, err := b.applyHead(&cfg.Head, a); ok {
		return err
	}
	if a.Key != "content" {
		return unknownField(KindLetter, a)
	}
	lines, err := b.lines(a)
	if err != nil {
		return err
	}
	_, err = cfg.SetContent(lines...)
	return err
}

func (b *builder) applyInvoice(cfg *InvoiceConfig, a *dsl.Assignment) error {
	if ok, err := b.applyHead(&cfg.Head, a); ok {
		return err
	}
	switch a.Key {
	case "content":
		lines, err := b.lines(a)
		if err != nil {
			return err
		}
		_, err = cfg.SetContent(lines...)
		return err
	case "currency":
		s, err := b.str(a)
		if err != nil {
			return err
		}
		cfg.SetCurrency(s)
	case "decimal-symbol":
		s, err := b.str(a)
		if err != nil {
			return err
		}
		cfg.SetDecimalSymbol(s)
	case "tax-percentage":
		d, err := b.number(a.Key, a.Value)
		if err != nil {
			return err
		}
		cfg.SetTaxPercentage(d)
	case "tax":
		d, err := b.number(a.Key, a.Value)
		if err != nil {
			return err
		}
		cfg.SetTax(d)
	case "omit-header-rule":
		v, err := b.boolean(a)
		if err != nil {
			return err
		}
		cfg.SetOmitHeaderRule(v)
	case "products":
		products, err := b.invoiceProducts(a)
		if err != nil {
			return err
		}
		_, err = cfg.SetProducts(products...)
		return err
	default:
		return unknownField(KindInvoice, a)
	}
	return nil
}

func (b *builder) applyDeliveryNote(cfg *DeliveryNoteConfig, a *dsl.Assignment) error {
	if ok, err := b.applyHead(&cfg.Head, a); ok {
		return err
	}
	switch a.Key {
	case "content":
		lines, err := b.lines(a)
		if err != nil {
			return err
		}
		_, err = cfg.SetContent(lines...)
		return err
	case "products":
		items, err := b.objects(a)
		if err != nil {
			return err
		}
		products := make([]DeliveryNoteProduct, 0, len(items))
		for i, obj := range items {
			name, amount, err := b.productBase(a.Key, i, obj, "name", "amount")
			if err != nil {
				return err
			}
			products = append(products, DeliveryNoteProduct{Name: name, Amount: amount})
		}
		_, err = cfg.SetProducts(products...)
		return err
	default:
		return unknownField(KindDeliveryNote, a)
	}
}

func (b *builder) invoiceProducts(a *dsl.Assignment) ([]InvoiceProduct, error) {
	items, err := b.objects(a)
	if err != nil {
		return nil, err
	}
	products := make([]InvoiceProduct, 0, len(items))
	for i, obj := range items {
		name, amount, err := b.productBase(a.Key, i, obj, "name", "amount", "price")
		if err != nil {
			return nil, err
		}
		p := InvoiceProduct{Name: name, Amount: amount}
		if v, ok := obj.Lookup("price"); ok {
			if p.Price, err = b.number(fmt.Sprintf("%s[%d].price", a.Key, i), v); err != nil {
				return nil, err
			}
		}
		products = append(products, p)
	}
	return products, nil
}

// productBase 读取商品的 name 与 amount（缺省为 1），并拒绝 allowed 之外的键。
func (b *builder) productBase(key string, i int, obj *dsl.InlineObject, allowed ...string) (string, int, error) {
	for _, e := range obj.Entries {
		if !slices.Contains(allowed, e.Key) {
			return "", 0, fmt.Errorf("%w: %s[%d].%s（%s）", ErrUnknownField, key, i, e.Key, e.Pos)
		}
	}
	var name string
	if v, ok := obj.Lookup("name"); ok {
		if v.String == nil {
			return "", 0, fieldType(fmt.Sprintf("%s[%d].name", key, i), "string", v)
		}
		name = binding.Interpolate(string(*v.String), b.data)
	}
	amount := 1
	if v, ok := obj.Lookup("amount"); ok {
		d, err := b.number(fmt.Sprintf("%s[%d].amount", key, i), v)
		if err != nil {
			return "", 0, err
		}
		if !d.IsInteger() {
			return "", 0, fmt.Errorf("%w: %s[%d].amount 必须为整数，实际 %s", ErrFieldType, key, i, d)
		}
		amount = int(d.IntPart())
	}
	return name, amount, nil
}

func (b *builder) invoiceLabels(cfg *InvoiceConfig, s *dsl.Section) error {
	if s.Name != "labels" {
		return fmt.Errorf("%w: 段落 %s（%s）", ErrUnknownField, s.Name, s.Pos)
	}
	labels := cfg.Labels
	targets := map[string]*string{
		"amount":       &labels.Amount,
		"description":  &labels.Description,
		"single-price": &labels.SinglePrice,
		"line-sum":     &labels.LineSum,
		"sum":          &labels.Sum,
		"tax":          &labels.Tax,
		"gross":        &labels.Gross,
	}
	if err := b.fillLabels(s, targets); err != nil {
		return err
	}
	cfg.SetLabels(labels)
	return nil
}

func (b *builder) deliveryNoteLabels(cfg *DeliveryNoteConfig, s *dsl.Section) error {
	if s.Name != "labels" {
		return fmt.Errorf("%w: 段落 %s（%s）", ErrUnknownField, s.Name, s.Pos)
	}
	labels := cfg.Labels
	targets := map[string]*string{
		"amount":      &labels.Amount,
		"description": &labels.Description,
	}
	if err := b.fillLabels(s, targets); err != nil {
		return err
	}
	cfg.SetLabels(labels)
	return nil
}

func (b *builder) fillLabels(s *dsl.Section, targets map[string]*string) error {
	return b.each(s.Block, func(a *dsl.Assignment) error {
		dst, ok := targets[a.Key]
		if !ok {
			return fmt.Errorf("%w: labels.%s（%s）", ErrUnknownField, a.Key, a.Pos)
		}
		v, err := b.str(a)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}, nil)
}

func (b *builder) str(a *dsl.Assignment) (string, error) {
	if a.Value.String == nil {
		return "", fieldType(a.Key, "string", a.Value)
	}
	return binding.Interpolate(string(*a.Value.String), b.data), nil
}

// lines 接受字符串数组，单个字符串视为一行。
func (b *builder) lines(a *dsl.Assignment) ([]string, error) {
	v := a.Value
	if v.String != nil {
		return []string{binding.Interpolate(string(*v.String), b.data)}, nil
	}
	if v.Array == nil {
		return nil, fieldType(a.Key, "string array", v)
	}
	out := make([]string, 0, len(v.Array.Values))
	for i, item := range v.Array.Values {
		if item.String == nil {
			return nil, fieldType(fmt.Sprintf("%s[%d]", a.Key, i), "string", item)
		}
		out = append(out, string(*item.String))
	}
	return binding.InterpolateAll(out, b.data), nil
}

func (b *builder) boolean(a *dsl.Assignment) (bool, error) {
	if a.Value.Bool == nil {
		return false, fieldType(a.Key, "bool", a.Value)
	}
	return bool(*a.Value.Bool), nil
}

// number 接受数字字面量，或插值后可解析为数字的字符串，例如 "${invoice.tax}"。
func (b *builder) number(field string, v *dsl.Value) (decimal.Decimal, error) {
	var raw string
	switch {
	case v.Number != nil:
		raw = *v.Number
	case v.String != nil:
		raw = strings.TrimSpace(binding.Interpolate(string(*v.String), b.data))
	default:
		return decimal.Zero, fieldType(field, "number", v)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s 无法解析为数字 %q", ErrFieldType, field, raw)
	}
	return d, nil
}

func (b *builder) objects(a *dsl.Assignment) ([]*dsl.InlineObject, error) {
	if a.Value.Array == nil {
		return nil, fieldType(a.Key, "object array", a.Value)
	}
	out := make([]*dsl.InlineObject, 0, len(a.Value.Array.Values))
	for i, item := range a.Value.Array.Values {
		if item.Object == nil {
			return nil, fieldType(a.Key+"["+strconv.Itoa(i)+"]", "object", item)
		}
		out = append(out, item.Object)
	}
	return out, nil
}

func unknownField(kind Kind, a *dsl.Assignment) error {
	return fmt.Errorf("%w: %s 不支持字段 %s（%s）", ErrUnknownField, kind, a.Key, a.Pos)
}

func fieldType(field, want string, got *dsl.Value) error {
	return fmt.Errorf("%w: %s 需要 %s，实际为 %s", ErrFieldType, field, want, got.Kind())
}
