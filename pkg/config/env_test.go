package config

import (
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	const key = "PALPITEIRO_TEST_VALUE"

	t.Setenv(key, "")
	if got := envOrDefault(key, "x"); got != "x" {
		t.Errorf("envOrDefault(empty) = %q", got)
	}
	if got := intEnvOrDefault(key, 3); got != 3 {
		t.Errorf("intEnvOrDefault(empty) = %d", got)
	}

	t.Setenv(key, " 0 ")
	if got := intEnvOrDefault(key, 3); got != 0 {
		t.Errorf("intEnvOrDefault(0) = %d, zero is a valid value", got)
	}
	if got := floatEnvOrDefault(key, 1.5); got != 0 {
		t.Errorf("floatEnvOrDefault(0) = %g", got)
	}

	t.Setenv(key, "-4")
	if got := intEnvOrDefault(key, 3); got != 3 {
		t.Errorf("intEnvOrDefault(-4) = %d, want fallback", got)
	}

	t.Setenv(key, "soon")
	if got := durationEnvOrDefault(key, time.Second); got != time.Second {
		t.Errorf("durationEnvOrDefault(invalid) = %s", got)
	}
	t.Setenv(key, "0s")
	if got := durationEnvOrDefault(key, time.Second); got != time.Second {
		t.Errorf("durationEnvOrDefault(0s) = %s, want fallback", got)
	}
	t.Setenv(key, "2m")
	if got := durationEnvOrDefault(key, time.Second); got != 2*time.Minute {
		t.Errorf("durationEnvOrDefault(2m) = %s", got)
	}
}
