package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestMaskFieldRedactsSensitiveValues(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{}))

	listenAddr := "10.0.4.12:26656"
	logger.Warn("refusing to rebind listener",
		MaskField("listen", listenAddr),
		slog.String("reason", "already bound"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log payload: %v", err)
	}

	if IsAllowlisted("listen") {
		t.Fatalf("listen should not be allowlisted for logging: %v", RedactionAllowlist())
	}

	if bytes.Contains(buf.Bytes(), []byte(listenAddr)) {
		t.Fatalf("log output leaked sensitive listen address: %s", buf.Bytes())
	}

	value, ok := entry["listen"].(string)
	if !ok {
		t.Fatalf("expected string listen attribute, got %T", entry["listen"])
	}
	if value != RedactedValue {
		t.Fatalf("expected redacted listen address, got %q", value)
	}
}

func TestMaskValueLeavesEmptyUnchanged(t *testing.T) {
	if MaskValue("") != "" {
		t.Fatalf("expected empty value to stay empty")
	}
	if MaskValue("secret") != RedactedValue {
		t.Fatalf("expected non-empty value to be redacted")
	}
}
