package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, SurveyIDKey, "survey-9")
	log.WithContext(ctx).Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["request_id"] != "req-1" || entry["survey_id"] != "survey-9" {
		t.Fatalf("missing context fields: %v", entry)
	}
}

func TestDevelopmentUsesTextHandler(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("development", &buf)
	log.HeatLossEvaluated("s1", 3, 72, "PROVISIONAL", 1.5)

	out := buf.String()
	if !strings.Contains(out, "msg=heatloss_evaluated") || !strings.Contains(out, "confidence=72") {
		t.Fatalf("unexpected text output %q", out)
	}
}

func TestDebugSuppressedOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("production", &buf).Debug("noise")
	if buf.Len() != 0 {
		t.Fatalf("expected no debug output, got %q", buf.String())
	}
}
