package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logg, err := New("debug", "json", &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if logg.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", logg.GetLevel())
	}
	logg.Debug("hallo")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}
	if entry["msg"] != "hallo" {
		t.Fatalf("unexpected entry %v", entry)
	}

	if _, err := New("laut", "text", &buf); err == nil {
		t.Fatalf("invalid level should fail")
	}
	if _, err := New("info", "xml", &buf); err == nil {
		t.Fatalf("invalid format should fail")
	}
	logg, err = New("", "", &buf)
	if err != nil || logg.GetLevel() != logrus.InfoLevel {
		t.Fatalf("defaults should be info/text, got %v %v", logg, err)
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logg, _ := New("error", "text", &buf)
	LogError(logg, "main", "run", "渲染", map[string]string{"in": "brief.letter"}, errors.New("kaputt"))
	out := buf.String()
	for _, want := range []string{"module=main", "funcName=run", "kaputt", "data="} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}

	buf.Reset()
	LogError(logg, "main", "run", "渲染", nil, errors.New("kaputt"))
	if strings.Contains(buf.String(), "data=") {
		t.Fatalf("nil data should not be logged: %q", buf.String())
	}
}
