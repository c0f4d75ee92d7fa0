package util

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("MK_STR", "  value ")
	t.Setenv("MK_BOOL", "true")
	t.Setenv("MK_BAD_BOOL", "maybe")
	t.Setenv("MK_INT", "4")
	t.Setenv("MK_ZERO", "0")
	t.Setenv("MK_DUR", "90s")
	t.Setenv("MK_ALIAS", "legacy")

	if got := Env("MK_STR", "def"); got != "value" {
		t.Errorf("Env = %q", got)
	}
	if got := Env("MK_UNSET", "def"); got != "def" {
		t.Errorf("Env default = %q", got)
	}
	if !BoolEnv("MK_BOOL", false) || !BoolEnv("MK_BAD_BOOL", true) {
		t.Error("BoolEnv mismatch")
	}
	if IntEnv("MK_INT", 1) != 4 || IntEnv("MK_ZERO", 1) != 1 {
		t.Error("IntEnv mismatch")
	}
	if DurationEnv("MK_DUR", time.Second) != 90*time.Second {
		t.Error("DurationEnv mismatch")
	}
	if got := FirstEnv("MK_UNSET", "MK_ALIAS"); got != "legacy" {
		t.Errorf("FirstEnv = %q", got)
	}
}

func TestNewJobID(t *testing.T) {
	a, b := NewJobID(), NewJobID()
	if a == b {
		t.Fatal("ids must differ")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("not a uuid: %v", err)
	}
}
