package version

import (
	"runtime"
	"testing"
)

func TestString(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, BuildDate = v, c, d }(Version, Commit, BuildDate)

	tests := []struct {
		name                  string
		version, commit, date string
		want                  string
	}{
		{name: "unstamped", version: "dev", want: "qrshield dev (" + runtime.Version() + ")"},
		{
			name:    "release",
			version: "1.2.0",
			commit:  "0123456789abcdef",
			date:    "2024-05-01",
			want:    "qrshield 1.2.0 (0123456789ab, built 2024-05-01, " + runtime.Version() + ")",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, BuildDate = tt.version, tt.commit, tt.date
			if got := String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
