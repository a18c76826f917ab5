package filesystem

import (
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{in: "~/.qrshield/config.yaml", want: filepath.Join(home, ".qrshield", "config.yaml")},
		{in: "/etc/qrshield.yaml", want: "/etc/qrshield.yaml"},
		{in: "rules/../blacklist.yaml", want: "blacklist.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ExpandPath(tt.in); got != tt.want {
				t.Fatalf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAppPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if got, want := AppPath("blacklist.yaml"), filepath.Join(home, ".qrshield", "blacklist.yaml"); got != want {
		t.Fatalf("AppPath = %q, want %q", got, want)
	}
}
