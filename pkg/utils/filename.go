package utils

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// CleanToken strips a report-name fragment down to letters, digits, hyphens
// and underscores. Used when synthesizing a report name from its call
// reference and machine serial.
func CleanToken(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// CleanFilename is the filename variant of CleanToken: dots survive so an
// extension stays intact. An empty result falls back to "SinNombre".
func CleanFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		return "SinNombre"
	}
	return cleaned
}

// SynthesizeReportName builds the default report name
// {callRef|SinAviso}_{serial|SinBastidor}_{YYMMDD}.
func SynthesizeReportName(callRef, serial string, at time.Time) string {
	if callRef == "" {
		callRef = "SinAviso"
	}
	if serial == "" {
		serial = "SinBastidor"
	}
	return fmt.Sprintf("%s_%s_%s", CleanToken(callRef), CleanToken(serial), at.Format("060102"))
}

// PDFFilename derives the export filename: the stored report name when
// present, otherwise the synthesized default, always ending in .pdf.
func PDFFilename(reportName, callRef, serial string, createdAt time.Time) string {
	if strings.TrimSpace(reportName) != "" {
		name := CleanFilename(reportName)
		if !strings.HasSuffix(name, ".pdf") {
			name += ".pdf"
		}
		return name
	}
	return SynthesizeReportName(callRef, serial, createdAt) + ".pdf"
}
