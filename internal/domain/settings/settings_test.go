package settings

import "testing"

func TestSettingsValidate(t *testing.T) {
	good := Settings{
		MinScoreThreshold:       70,
		MinUtilizationThreshold: 60,
		ConsecutiveLowPeriods:   3,
		DefaultGracePeriodDays:  30,
		MinImprovementPercent:   15,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := good
	bad.MinScoreThreshold = 101
	if err := bad.Validate(); err == nil {
		t.Fatal("expected threshold range error")
	}

	bad = good
	bad.ConsecutiveLowPeriods = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected consecutive periods error")
	}

	bad = good
	bad.DefaultGracePeriodDays = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected grace period error")
	}
}
