package config

import "testing"

func TestRigConfigPath(t *testing.T) {
	t.Setenv("FOOTIK_CONFIG", "")
	if got := RigConfigPath("rig.yaml"); got != "rig.yaml" {
		t.Errorf("RigConfigPath() = %q, want rig.yaml", got)
	}

	t.Setenv("FOOTIK_CONFIG", "/etc/footik/rig.yaml")
	if got := RigConfigPath("rig.yaml"); got != "/etc/footik/rig.yaml" {
		t.Errorf("RigConfigPath() = %q, want env override", got)
	}
}

func TestDashboardPort(t *testing.T) {
	t.Setenv("FOOTIK_PORT", "")
	if got := DashboardPort(); got != DefaultDashboardPort {
		t.Errorf("DashboardPort() = %q, want %q", got, DefaultDashboardPort)
	}

	t.Setenv("FOOTIK_PORT", "9000")
	if got := DashboardPort(); got != "9000" {
		t.Errorf("DashboardPort() = %q, want 9000", got)
	}
}

func TestBridgePort(t *testing.T) {
	tests := []struct {
		env  string
		want int
	}{
		{"", 8091},
		{"9100", 9100},
		{"not-a-port", 8091},
		{"-1", 8091},
	}

	for _, tt := range tests {
		t.Setenv("PORT", tt.env)
		if got := BridgePort(8091); got != tt.want {
			t.Errorf("BridgePort() with PORT=%q = %d, want %d", tt.env, got, tt.want)
		}
	}
}

func TestLogLevel(t *testing.T) {
	t.Setenv("FOOTIK_LOG_LEVEL", "")
	if got := LogLevel(); got != "info" {
		t.Errorf("LogLevel() = %q, want info", got)
	}
	t.Setenv("FOOTIK_LOG_LEVEL", "debug")
	if got := LogLevel(); got != "debug" {
		t.Errorf("LogLevel() = %q, want debug", got)
	}
}
