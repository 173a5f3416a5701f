package logger

import (
	"testing"

	"github.com/jjenkins/courtwatch/internal/config"
)

func TestNew(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "debug", Format: "console"}); err != nil {
		t.Errorf("New(console) error = %v", err)
	}
	if _, err := New(config.LogConfig{Level: "info", Format: "json"}); err != nil {
		t.Errorf("New(json) error = %v", err)
	}
	if _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Error("New() accepted an unknown level")
	}
}
