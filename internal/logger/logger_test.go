package logger

import "testing"

func TestDefaultLoggerIsUsable(t *testing.T) {
	if Log == nil {
		t.Fatal("Log should never be nil")
	}
	Log.Info("no-op logger accepts entries")
}

func TestSetLevel(t *testing.T) {
	if err := SetLevel("debug"); err != nil {
		t.Errorf("SetLevel(debug) failed: %v", err)
	}
	if err := SetLevel("loud"); err == nil {
		t.Error("SetLevel should reject unknown level names")
	}
	_ = SetLevel("info")
}
