package config

import (
	"testing"
	"time"
)

func TestEnvHelpersFallBackToDefaults(t *testing.T) {
	if got := getEnvString("USSD_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("getEnvString = %q, want fallback", got)
	}
	if got := getEnvInt("USSD_TEST_UNSET", 7); got != 7 {
		t.Errorf("getEnvInt = %d, want 7", got)
	}
	if got := getEnvBool("USSD_TEST_UNSET", true); !got {
		t.Error("getEnvBool should fall back to true")
	}
	if got := getEnvDuration("USSD_TEST_UNSET", time.Minute); got != time.Minute {
		t.Errorf("getEnvDuration = %s, want 1m", got)
	}
}

func TestEnvHelpersReadOverrides(t *testing.T) {
	t.Setenv("USSD_TEST_STR", "custom")
	t.Setenv("USSD_TEST_INT", "42")
	t.Setenv("USSD_TEST_BOOL", "false")
	t.Setenv("USSD_TEST_DUR", "90s")

	if got := getEnvString("USSD_TEST_STR", "fallback"); got != "custom" {
		t.Errorf("getEnvString = %q, want custom", got)
	}
	if got := getEnvInt("USSD_TEST_INT", 7); got != 42 {
		t.Errorf("getEnvInt = %d, want 42", got)
	}
	if got := getEnvBool("USSD_TEST_BOOL", true); got {
		t.Error("getEnvBool should read the override")
	}
	if got := getEnvDuration("USSD_TEST_DUR", time.Minute); got != 90*time.Second {
		t.Errorf("getEnvDuration = %s, want 90s", got)
	}
}

func TestEnvHelpersIgnoreMalformedValues(t *testing.T) {
	t.Setenv("USSD_TEST_INT", "not-a-number")
	t.Setenv("USSD_TEST_BOOL", "definitely")
	t.Setenv("USSD_TEST_DUR", "soon")

	if got := getEnvInt("USSD_TEST_INT", 7); got != 7 {
		t.Errorf("getEnvInt = %d, want fallback 7", got)
	}
	if got := getEnvBool("USSD_TEST_BOOL", true); !got {
		t.Error("getEnvBool should keep the fallback on a parse failure")
	}
	if got := getEnvDuration("USSD_TEST_DUR", time.Minute); got != time.Minute {
		t.Errorf("getEnvDuration = %s, want fallback 1m", got)
	}
}

func TestDefaultsPopulatedAtInit(t *testing.T) {
	if SessionStoreDriver == "" {
		t.Error("session store driver must have a value after init")
	}
	if Port == "" {
		t.Error("port must have a value after init")
	}
	if MaxScreenHops <= 0 {
		t.Error("screen hop limit must be positive after init")
	}
}
