package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.2.3", "1.2.3"},
		{"1.2.3-rc.1+build.7", "1.2.3-rc.1+build.7"},
		{`a<b>c:d"e/f\g|h?i*j`, "a-b-c-d-e-f-g-h-i-j"},
		{"tab\there", "tab-here"},
		{"del\x7f", "del-"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestArchiveName(t *testing.T) {
	assert.Equal(t, "App.1.2.3.upack", ArchiveName("App", "1.2.3", "upack"))
	assert.Equal(t, "My-App.1.0.0.zip", ArchiveName("My/App", "1.0.0", ".zip"))
}
