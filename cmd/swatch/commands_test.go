package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/swatch/internal/state"
)

func sampleExport() state.Export {
	s := state.Initial()
	s = state.Reduce(s, state.Action{Payload: state.UpdateQuantity{Quantity: 48}})
	s = state.Reduce(s, state.Action{Payload: state.SaveQuote{Quote: state.Quote{ID: "q-1", Name: "Softball"}}})
	return state.Export{State: s, Timestamp: time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)}
}

func TestEncodeDecodeExport(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			data, err := encodeExport(sampleExport(), format)
			if err != nil {
				t.Fatalf("encodeExport returned error: %v", err)
			}
			exp, err := decodeExport(data)
			if err != nil {
				t.Fatalf("decodeExport returned error: %v", err)
			}
			if exp.State.Selections.Quantity != 48 {
				t.Fatalf("quantity = %d, want 48", exp.State.Selections.Quantity)
			}
			if len(exp.State.Quotes.Saved) != 1 || exp.State.Quotes.Saved[0].Name != "Softball" {
				t.Fatalf("saved quotes = %+v", exp.State.Quotes.Saved)
			}
		})
	}

	if _, err := encodeExport(sampleExport(), "xml"); err == nil {
		t.Fatalf("encodeExport(xml) returned nil error")
	}
}

func TestWriteQuotes(t *testing.T) {
	var buf bytes.Buffer
	if err := writeQuotes(&buf, nil); err != nil {
		t.Fatalf("writeQuotes returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "No saved quotes") {
		t.Fatalf("output = %q", buf.String())
	}

	buf.Reset()
	quotes := []state.Quote{{
		ID:         "0f8c2a1e-aaaa-bbbb-cccc-000000000000",
		Name:       "Team shirts",
		Selections: state.Selections{Quantity: 36, EmbellishmentType: state.EmbellishmentScreenPrint},
		Pricing:    state.Pricing{TotalPrice: 312.5},
	}}
	if err := writeQuotes(&buf, quotes); err != nil {
		t.Fatalf("writeQuotes returned error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"0f8c2a1e", "Team shirts", "screenprint", "36", "$312.50"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestImportThenQuotesAndExport(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	data, err := encodeExport(sampleExport(), "yaml")
	if err != nil {
		t.Fatalf("encodeExport returned error: %v", err)
	}
	file := filepath.Join(t.TempDir(), "state.yaml")
	if err := os.WriteFile(file, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out := execute(t, "import", file)
	if !strings.Contains(out, "Imported 1 saved quotes") {
		t.Fatalf("import output = %q", out)
	}

	out = execute(t, "quotes")
	if !strings.Contains(out, "Softball") {
		t.Fatalf("quotes output = %q", out)
	}

	out = execute(t, "export", "--format", "json")
	if !strings.Contains(out, `"quantity": 48`) {
		t.Fatalf("export output missing quantity:\n%s", out)
	}

	out = execute(t, "logs", "--level", "info")
	if !strings.Contains(out, "swatch ready") {
		t.Fatalf("logs output = %q", out)
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("swatch %v: %v", args, err)
	}
	return buf.String()
}
