package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"roleradar/internal/models"
)

func emptyExtraction(e Extraction) bool {
	return e.CompanyName == "" && e.JobTitle == "" && e.RoleType == "" &&
		e.Industry == "" && e.Location == "" && len(e.Keywords) == 0
}

func TestParseExtraction_FencedJSON(t *testing.T) {
	raw := "```json\n{\"company_name\": \"TechCorp\", \"job_title\": \"CISO\", \"role_type\": \"Security\", \"keywords\": [\"cissp\", \"\", 7]}\n```"
	got, err := parseExtraction(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.CompanyName != "TechCorp" || got.JobTitle != "CISO" {
		t.Fatalf("got=%+v", got)
	}
	if got.RoleType != "security" {
		t.Fatalf("role_type=%q want lowercased", got.RoleType)
	}
	if len(got.Keywords) != 1 || got.Keywords[0] != "cissp" {
		t.Fatalf("keywords=%v want [cissp]", got.Keywords)
	}
}

func TestParseExtraction_NullFields(t *testing.T) {
	got, err := parseExtraction(`{"company_name": null, "job_title": null}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.CompanyName != "" || got.JobTitle != "" {
		t.Fatalf("got=%+v want zero values", got)
	}
}

func TestParseExtraction_RepairsAlmostJSON(t *testing.T) {
	// Trailing comma and single quotes, the usual model sins.
	raw := "{'company_name': 'TechCorp', 'job_title': 'Security Engineer',}"
	got, err := parseExtraction(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.CompanyName != "TechCorp" {
		t.Fatalf("got=%+v", got)
	}
}

func TestParseSignalDetection(t *testing.T) {
	got, err := parseSignalDetection(`{"has_signal": true, "signal_type": "Funding", "confidence": 0.8, "description": "series B"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.HasSignal || got.SignalType != models.SignalFunding || got.Confidence != 0.8 {
		t.Fatalf("got=%+v", got)
	}
}

func TestParseSignalDetection_NoneType(t *testing.T) {
	got, err := parseSignalDetection(`{"has_signal": true, "signal_type": "none", "confidence": 0.9}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.HasSignal || got.SignalType != "" {
		t.Fatalf("got=%+v want no signal", got)
	}
}

func TestParseSignalDetection_UnknownType(t *testing.T) {
	got, err := parseSignalDetection(`{"has_signal": true, "signal_type": "ipo_rumor", "confidence": 0.9}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.HasSignal {
		t.Fatalf("got=%+v want has_signal=false for unknown type", got)
	}
}

func TestParseSignalDetection_CoercedFields(t *testing.T) {
	got, err := parseSignalDetection(`{"has_signal": "yes", "signal_type": "breach", "confidence": "1.7"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.HasSignal {
		t.Fatalf("has_signal=%v want true", got.HasSignal)
	}
	if got.Confidence != 1 {
		t.Fatalf("confidence=%v want clamped to 1", got.Confidence)
	}
}

type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestAnalyzer_DegradesToNeutralOnFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	a := &GeminiAnalyzer{generator: gen, logger: zap.NewNop(), timeout: 50 * time.Millisecond, maxRetries: 1}

	ext := a.ExtractEntities(context.Background(), "some text")
	if !emptyExtraction(ext) {
		t.Fatalf("extraction=%+v want zero value", ext)
	}
	det := a.DetectHiringSignal(context.Background(), "some text", "TechCorp")
	if det != (SignalDetection{}) {
		t.Fatalf("detection=%+v want zero value", det)
	}
	if gen.calls < 2 {
		t.Fatalf("calls=%d want retries", gen.calls)
	}
}

func TestAnalyzer_NotConfiguredIsNeutral(t *testing.T) {
	a := &GeminiAnalyzer{logger: zap.NewNop()}
	if ext := a.ExtractEntities(context.Background(), "text"); !emptyExtraction(ext) {
		t.Fatalf("extraction=%+v want zero value", ext)
	}
	if got := a.Summarize(context.Background(), []string{"a", "b"}); got == "" {
		t.Fatalf("summary fallback is empty")
	}
}

func TestAnalyzer_ParsesGeneratorOutput(t *testing.T) {
	gen := &fakeGenerator{response: `{"company_name": "TechCorp", "job_title": "CISO"}`}
	a := &GeminiAnalyzer{generator: gen, logger: zap.NewNop(), timeout: 50 * time.Millisecond, maxRetries: 1}
	ext := a.ExtractEntities(context.Background(), "text")
	if ext.CompanyName != "TechCorp" {
		t.Fatalf("got=%+v", ext)
	}
}
