package dsl_test

import (
	"strings"
	"testing"

	"github.com/Patrick762/pdf-letter/dsl"
)

const sampleDSL = `
// Rechnung mit Steuerzeile
invoice {
  return-text: "Muster GmbH · Hauptstr. 1 · 12345 Stadt"
  receiver: [
    "${customer.name}"
    "Nebenweg 2"
  ]
  sender: ["Muster GmbH", "Hauptstr. 1"]
  subject: "Rechnung Nr. ${invoice.number}"
  show-borders: false
  tax-percentage: 7
  tax: 0.58
  products: [
    { name: "Produkt 1", price: 6.36 }
    { name: "Produkt 2", price: 1.86, amount: 2 }
  ]

  labels {
    amount: "Menge"
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Kind != "invoice" {
		t.Fatalf("expected kind invoice, got %s", doc.Kind)
	}
	stmts := doc.Block.Statements
	if len(stmts) != 9 {
		t.Fatalf("expected 9 statements, got %d", len(stmts))
	}

	ret := stmts[0].Assignment
	if ret == nil || ret.Key != "return-text" {
		t.Fatalf("expected return-text assignment, got %+v", stmts[0])
	}
	if got := string(*ret.Value.String); !strings.HasPrefix(got, "Muster GmbH") {
		t.Fatalf("unexpected return text %q", got)
	}

	receiver := stmts[1].Assignment
	if receiver == nil || receiver.Value.Array == nil || len(receiver.Value.Array.Values) != 2 {
		t.Fatalf("expected receiver array with 2 lines, got %+v", stmts[1])
	}
	if got := string(*receiver.Value.Array.Values[0].String); got != "${customer.name}" {
		t.Fatalf("interpolation must be kept verbatim, got %s", got)
	}

	sender := stmts[2].Assignment
	if sender == nil || len(sender.Value.Array.Values) != 2 {
		t.Fatalf("expected comma separated sender array, got %+v", stmts[2])
	}

	borders := stmts[4].Assignment
	if borders == nil || borders.Value.Bool == nil || bool(*borders.Value.Bool) {
		t.Fatalf("expected show-borders false, got %+v", stmts[4])
	}

	tax := stmts[6].Assignment
	if tax == nil || tax.Value.Number == nil || *tax.Value.Number != "0.58" {
		t.Fatalf("expected tax number literal, got %+v", stmts[6])
	}

	products := stmts[7].Assignment
	if products == nil || products.Value.Array == nil || len(products.Value.Array.Values) != 2 {
		t.Fatalf("expected 2 products, got %+v", stmts[7])
	}
	second := products.Value.Array.Values[1].Object
	if second == nil {
		t.Fatalf("product should be inline object")
	}
	if v, ok := second.Lookup("amount"); !ok || v.Number == nil || *v.Number != "2" {
		t.Fatalf("expected amount 2, got %+v", v)
	}
	if _, ok := second.Lookup("missing"); ok {
		t.Fatalf("lookup of unknown key should fail")
	}

	labels := stmts[8].Section
	if labels == nil || labels.Name != "labels" {
		t.Fatalf("expected labels section, got %+v", stmts[8])
	}
	if len(labels.Block.Statements) != 1 || labels.Block.Statements[0].Assignment.Key != "amount" {
		t.Fatalf("unexpected labels body: %+v", labels.Block.Statements)
	}
}

func TestParseValueKinds(t *testing.T) {
	doc, err := dsl.ParseString(`letter { a: "x"; b: -1.5; c: true; d: []; e: {} }`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := []string{"string", "number", "bool", "array", "object"}
	if len(doc.Block.Statements) != len(want) {
		t.Fatalf("expected %d statements, got %d", len(want), len(doc.Block.Statements))
	}
	for i, st := range doc.Block.Statements {
		if got := st.Assignment.Value.Kind(); got != want[i] {
			t.Fatalf("statement %d: expected %s, got %s", i, want[i], got)
		}
	}
	var nilValue *dsl.Value
	if nilValue.Kind() != "null" {
		t.Fatalf("nil value should report null")
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := dsl.ParseFile("brief.letter", strings.NewReader("letter {\n  subject \"x\"\n}"))
	if err == nil {
		t.Fatalf("expected parse error for missing colon")
	}
	if !strings.Contains(err.Error(), "brief.letter:2") {
		t.Fatalf("error should carry file position, got %v", err)
	}
}
