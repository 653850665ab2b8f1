package internal

import "testing"

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want LogLevel
	}{
		{"ERROR", LogLevelError},
		{"warn", LogLevelWarn},
		{" Debug ", LogLevelDebug},
		{"TRACE", LogLevelTrace},
		{"INFO", LogLevelInfo},
		{"", LogLevelInfo},
		{"VERBOSE", LogLevelInfo}, // unknown values keep the default
	}
	for _, tc := range cases {
		if got := ParseLogLevel(tc.in); got != tc.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLogLevelString(t *testing.T) {
	if LogLevelWarn.String() != "WARN" || LogLevelError.String() != "ERROR" {
		t.Error("level tags must match their log-line spelling")
	}
	if NewLogger(LogLevelDebug).GetLevel() != LogLevelDebug {
		t.Error("NewLogger must keep the requested level")
	}
}
