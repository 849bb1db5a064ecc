// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLoggerJSONForNonTerminal(t *testing.T) {
	var buffer bytes.Buffer
	logger := NewLogger(&buffer)

	logger.Info("bring-up", "interface", "wlan0")

	var record map[string]any
	if err := json.Unmarshal(buffer.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buffer.String())
	}
	if record["msg"] != "bring-up" {
		t.Errorf("msg = %q, want %q", record["msg"], "bring-up")
	}
	if record["interface"] != "wlan0" {
		t.Errorf("interface = %q, want %q", record["interface"], "wlan0")
	}
}

func TestNewLoggerSuppressesDebug(t *testing.T) {
	var buffer bytes.Buffer
	logger := NewLogger(&buffer)

	logger.Debug("not for the field log")
	if buffer.Len() != 0 {
		t.Errorf("debug record was written: %s", buffer.String())
	}
}
