package layout

import (
	"errors"
	"testing"

	"github.com/Patrick762/pdf-letter/dsl"
)

func buildString(t *testing.T, src string, data any) (Config, error) {
	t.Helper()
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return Build(doc, data)
}

func TestBuildInvoice(t *testing.T) {
	src := `
invoice {
  return-text: "Muster GmbH | Hauptstr. 1"
  receiver: ["${customer.name}", "Nebenweg 2"]
  subject: "Rechnung Nr. ${invoice.number}"
  currency: "EUR"
  decimal-symbol: "."
  tax-percentage: 7
  tax: "${invoice.tax}"
  omit-header-rule: true
  products: [
    { name: "Produkt 1", price: 6.36 }
    { name: "Versand", price: 1.86, amount: 2 }
  ]
  footer: "Bankverbindung"
  labels { tax: "USt.", single-price: "Preis" }
}`
	data := map[string]any{
		"customer": map[string]any{"name": "Max Mustermann"},
		"invoice":  map[string]any{"number": "2024-001", "tax": "0.58"},
	}
	cfg, err := buildString(t, src, data)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	inv, ok := cfg.(*InvoiceConfig)
	if !ok {
		t.Fatalf("expected *InvoiceConfig, got %T", cfg)
	}
	if inv.Receiver[0] != "Max Mustermann" || inv.Subject != "Rechnung Nr. 2024-001" {
		t.Fatalf("interpolation failed: %+v", inv.Head)
	}
	if inv.Currency != "EUR" || inv.DecimalSymbol != "." || inv.TaxPercentage.String() != "7" || !inv.OmitHeaderRule {
		t.Fatalf("unexpected invoice fields: %+v", inv)
	}
	if !inv.Tax.Valid || inv.Tax.Decimal.String() != "0.58" {
		t.Fatalf("expected tax 0.58, got %+v", inv.Tax)
	}
	if len(inv.Products) != 2 || inv.Products[0].Amount != 1 || inv.Products[1].Amount != 2 || inv.Products[1].Price.String() != "1.86" {
		t.Fatalf("unexpected products %+v", inv.Products)
	}
	if len(inv.Footer) != 1 || inv.Footer[0] != "Bankverbindung" {
		t.Fatalf("single string footer should become one line, got %v", inv.Footer)
	}
	if inv.Labels.Tax != "USt." || inv.Labels.SinglePrice != "Preis" || inv.Labels.Amount != "Anzahl" {
		t.Fatalf("labels should merge with defaults, got %+v", inv.Labels)
	}
}

func TestBuildLetterAndDeliveryNote(t *testing.T) {
	cfg, err := buildString(t, `letter { subject: "Hallo"; content: ["a", "b"]; show-borders: true }`, nil)
	if err != nil {
		t.Fatalf("build letter failed: %v", err)
	}
	letter := cfg.(*LetterConfig)
	if letter.Subject != "Hallo" || len(letter.Content) != 2 || !letter.ShowBorders {
		t.Fatalf("unexpected letter %+v", letter)
	}

	cfg, err = buildString(t, `delivery-note {
  products: [{ name: "Kiste", amount: 4 }]
  labels { amount: "Menge" }
}`, nil)
	if err != nil {
		t.Fatalf("build delivery note failed: %v", err)
	}
	note := cfg.(*DeliveryNoteConfig)
	if len(note.Products) != 1 || note.Products[0].Amount != 4 || note.Labels.Amount != "Menge" || note.Labels.Description != "Beschreibung" {
		t.Fatalf("unexpected delivery note %+v", note)
	}
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want error
	}{
		{"unknown kind", `memo { subject: "x" }`, ErrUnknownKind},
		{"unknown field", `letter { currency: "€" }`, ErrUnknownField},
		{"unknown label", `invoice { labels { foo: "x" } }`, ErrUnknownField},
		{"section in letter", `letter { labels { amount: "x" } }`, ErrUnknownField},
		{"unknown product key", `invoice { products: [{ name: "a", price: 1, color: "rot" }] }`, ErrUnknownField},
		{"price on delivery note", `delivery-note { products: [{ name: "a", price: 1 }] }`, ErrUnknownField},
		{"wrong type", `letter { subject: 3 }`, ErrFieldType},
		{"wrong line type", `letter { receiver: ["a", 1] }`, ErrFieldType},
		{"fractional amount", `invoice { products: [{ name: "a", price: 1, amount: 1.5 }] }`, ErrFieldType},
		{"bad number", `invoice { tax: "viel" }`, ErrFieldType},
		{"too many receivers", `letter { receiver: ["1","2","3","4","5","6","7"] }`, ErrValidation},
		{"zero amount", `invoice { products: [{ name: "a", price: 1, amount: 0 }] }`, ErrValidation},
	}
	for _, tc := range cases {
		_, err := buildString(t, tc.src, nil)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if _, err := Build(nil, nil); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("nil document: expected ErrPrecondition, got %v", err)
	}
}
