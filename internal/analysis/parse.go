package analysis

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"roleradar/internal/models"
)

// extractJSON strips markdown fences the model tends to wrap JSON in.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// decodeJSON unmarshals model output into out, repairing almost-JSON
// (trailing commas, single quotes, bare values) before giving up.
func decodeJSON(raw string, out any) error {
	cleaned := extractJSON(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}
	repaired, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(repaired), out)
}

// extractionPayload tolerates null and mistyped fields in model output.
type extractionPayload struct {
	CompanyName *string `json:"company_name"`
	JobTitle    *string `json:"job_title"`
	RoleType    *string `json:"role_type"`
	Industry    *string `json:"industry"`
	Location    *string `json:"location"`
	Keywords    []any   `json:"keywords"`
}

func parseExtraction(raw string) (Extraction, error) {
	var payload extractionPayload
	if err := decodeJSON(raw, &payload); err != nil {
		return Extraction{}, err
	}
	out := Extraction{
		CompanyName: deref(payload.CompanyName),
		JobTitle:    deref(payload.JobTitle),
		RoleType:    strings.ToLower(deref(payload.RoleType)),
		Industry:    deref(payload.Industry),
		Location:    deref(payload.Location),
	}
	for _, kw := range payload.Keywords {
		if s, ok := kw.(string); ok && strings.TrimSpace(s) != "" {
			out.Keywords = append(out.Keywords, strings.TrimSpace(s))
		}
	}
	return out, nil
}

type signalPayload struct {
	HasSignal   any     `json:"has_signal"`
	SignalType  *string `json:"signal_type"`
	Confidence  any     `json:"confidence"`
	Description *string `json:"description"`
}

func parseSignalDetection(raw string) (SignalDetection, error) {
	var payload signalPayload
	if err := decodeJSON(raw, &payload); err != nil {
		return SignalDetection{}, err
	}
	out := SignalDetection{
		HasSignal:   coerceBool(payload.HasSignal),
		SignalType:  strings.ToLower(strings.TrimSpace(deref(payload.SignalType))),
		Confidence:  coerceFloat(payload.Confidence),
		Description: deref(payload.Description),
	}
	if out.SignalType == "none" {
		out.SignalType = ""
		out.HasSignal = false
	}
	if out.HasSignal && !models.KnownSignalType(out.SignalType) {
		out.HasSignal = false
	}
	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	}
	return false
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		var f float64
		if err := json.Unmarshal([]byte(strings.TrimSpace(val)), &f); err == nil {
			return f
		}
	}
	return 0
}
