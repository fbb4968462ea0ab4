package utils

import (
	"testing"
	"time"
)

func TestSynthesizeReportName(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		callRef string
		serial  string
		want    string
	}{
		{"Aviso#1", "AB/12", "Aviso1_AB12_240501"},
		{"", "", "SinAviso_SinBastidor_240501"},
		{"", "XZ-9", "SinAviso_XZ-9_240501"},
		{"A 77", "", "A77_SinBastidor_240501"},
	}
	for _, tc := range cases {
		if got := SynthesizeReportName(tc.callRef, tc.serial, at); got != tc.want {
			t.Errorf("SynthesizeReportName(%q, %q) = %q, want %q", tc.callRef, tc.serial, got, tc.want)
		}
	}
}

func TestCleanToken(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Aviso#1", "Aviso1"},
		{"AB/12", "AB12"},
		{"ok-name_1", "ok-name_1"},
		{"  ", ""},
		{"a.b.c", "abc"},
	}
	for _, tc := range cases {
		if got := CleanToken(tc.in); got != tc.want {
			t.Errorf("CleanToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPDFFilename(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	if got := PDFFilename("Informe Mayo", "Aviso#1", "AB/12", at); got != "InformeMayo.pdf" {
		t.Errorf("stored name: got %q", got)
	}
	if got := PDFFilename("", "Aviso#1", "AB/12", at); got != "Aviso1_AB12_240501.pdf" {
		t.Errorf("synthesized name: got %q", got)
	}
	if got := PDFFilename("informe.pdf", "", "", at); got != "informe.pdf" {
		t.Errorf("existing extension: got %q", got)
	}
	if got := PDFFilename("###", "", "", at); got != "SinNombre.pdf" {
		t.Errorf("fallback name: got %q", got)
	}
}
