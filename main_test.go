package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Patrick762/pdf-letter/internal/config"
	"github.com/Patrick762/pdf-letter/layout"
)

const invoiceSrc = `
invoice {
  return-text: "Muster GmbH | Hauptstr. 1 | 12345 Stadt"
  receiver: ["${customer.name}", "Nebenweg 2", "12345 Stadt"]
  sender: ["Muster GmbH", "Hauptstr. 1"]
  subject: "Rechnung Nr. ${invoice.number}"
  tax-percentage: 7
  tax: 0.58
  products: [
    { name: "Produkt 1", price: 6.36 }
    { name: "Versandkosten", price: 1.86 }
  ]
  footer: ["Muster GmbH", "IBAN DE00 0000 0000 0000"]
}
`

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRealMainInvoice(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "rechnung.letter", invoiceSrc)
	dataFile := writeInput(t, dir, "data.yaml", "customer:\n  name: Max Mustermann\ninvoice:\n  number: R-2024-1\n")
	out := filepath.Join(dir, "out", "rechnung.pdf")
	debug := filepath.Join(dir, "debug", "layout.json")

	var stdout, stderr bytes.Buffer
	code := realMain([]string{"pdf-letter", "-i", in, "-o", out, "--data-file", dataFile, "--debug", debug, "--env-file", ""}, &stdout, &stderr)
	if code != ExitSuccess {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	pdf, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("pdf missing: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
	if !strings.Contains(stdout.String(), out) {
		t.Fatalf("stdout should name the output, got %q", stdout.String())
	}

	raw, err := os.ReadFile(debug)
	if err != nil {
		t.Fatalf("debug JSON missing: %v", err)
	}
	var res layout.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		t.Fatalf("invalid debug JSON: %v", err)
	}
	found := map[string]bool{}
	for _, op := range res.Ops {
		if op.Kind == layout.OpText {
			found[op.Text.Content] = true
		}
	}
	for _, want := range []string{"Max Mustermann", "Rechnung Nr. R-2024-1", "8,22 €", "8,80 €"} {
		if !found[want] {
			t.Fatalf("debug output misses %q", want)
		}
	}
}

func TestRealMainExitCodes(t *testing.T) {
	dir := t.TempDir()
	unknown := writeInput(t, dir, "a.letter", `letter { colour: "rot" }`)
	broken := writeInput(t, dir, "b.letter", `letter { subject "x" }`)
	empty := writeInput(t, dir, "c.letter", `invoice { subject: "leer" }`)
	logo := writeInput(t, dir, "d.letter", `letter { logo: "fehlt.png" }`)

	cases := []struct {
		name string
		args []string
		want int
	}{
		{"help", []string{"--help"}, ExitSuccess},
		{"missing input flag", []string{}, ExitUsage},
		{"unknown flag", []string{"--nope"}, ExitUsage},
		{"input not found", []string{"-i", filepath.Join(dir, "fehlt.letter")}, ExitIO},
		{"unknown field", []string{"-i", unknown}, ExitUsage},
		{"parse error", []string{"-i", broken}, ExitUsage},
		{"no products", []string{"-i", empty}, ExitUsage},
		{"missing logo", []string{"-i", logo}, ExitIO},
		{"bad data", []string{"-i", unknown, "--data", "{"}, ExitUsage},
		{"bad log level", []string{"-i", unknown, "--log-level", "laut"}, ExitUsage},
		{"missing config", []string{"-i", unknown, "-c", filepath.Join(dir, "fehlt.yaml")}, ExitUsage},
	}
	for _, tc := range cases {
		args := append([]string{"pdf-letter", "--env-file", "", "-o", filepath.Join(dir, tc.name+".pdf")}, tc.args...)
		var stdout, stderr bytes.Buffer
		if got := realMain(args, &stdout, &stderr); got != tc.want {
			t.Fatalf("%s: expected exit %d, got %d (%s)", tc.name, tc.want, got, stderr.String())
		}
	}
}

func TestExitCodeFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{errors.New("boom"), ExitGeneral},
		{fmt.Errorf("wrap: %w", os.ErrNotExist), ExitIO},
		{fmt.Errorf("wrap: %w", layout.ErrBackend), ExitIO},
		{fmt.Errorf("wrap: %w", layout.ErrValidation), ExitUsage},
		{fmt.Errorf("wrap: %w", layout.ErrFooterOverlap), ExitUsage},
		{fmt.Errorf("wrap: %w", config.ErrConfigInvalid), ExitUsage},
		{&layout.ValidationError{Field: "receiver", Rule: "max", Limit: 6, Got: 7}, ExitUsage},
	}
	for _, tc := range cases {
		if got := exitCodeFor(tc.err); got != tc.want {
			t.Fatalf("exitCodeFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestLoadSettingsPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeInput(t, dir, "letter.yaml", "lang: fr\nfont: builtin:gobold\n")
	t.Setenv(config.EnvLang, "en")
	settings, err := loadSettings(&cliFlags{config: cfgPath, font: "builtin:gomono"})
	if err != nil {
		t.Fatalf("loadSettings failed: %v", err)
	}
	if settings.Lang != "en" {
		t.Fatalf("environment should override the file, got %s", settings.Lang)
	}
	if settings.Font != "builtin:gomono" {
		t.Fatalf("flag should override the file, got %s", settings.Font)
	}
}

func TestExampleInputs(t *testing.T) {
	out := t.TempDir()
	for _, name := range []string{"letter", "invoice", "delivery-note"} {
		in := filepath.Join("examples", name+".letter")
		args := []string{"pdf-letter", "--env-file", "", "-i", in, "--data-file", filepath.Join("examples", "data.yaml"), "-o", filepath.Join(out, name+".pdf")}
		var stdout, stderr bytes.Buffer
		if code := realMain(args, &stdout, &stderr); code != ExitSuccess {
			t.Fatalf("%s: expected exit 0, got %d: %s", name, code, stderr.String())
		}
	}
}
