package utils

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", "***"},
		{"abcd", "****"},
		{"abcde", "*****"},
		{"abcdefg", "*******"},
		{"hunter22", "****er22"},
		{"pässwort€€€€", "********€€€€"},
		{"clé-ñ", "*****"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskSecret(tt.in), tt.in)
	}
}

func TestMaskSecret_KeepsValidUTF8(t *testing.T) {
	masked := MaskSecret("mot-de-passe-é")
	assert.True(t, utf8.ValidString(masked))
	assert.Equal(t, "**********se-é", masked)
}

func TestMaskValue(t *testing.T) {
	in := map[string]any{
		"password": "hunter22",
		"port":     float64(5432),
		"hosts":    []any{"db-primary"},
		"labels":   map[string]string{"env": "production"},
		"unset":    nil,
	}
	want := map[string]any{
		"password": "****er22",
		"port":     "****",
		"hosts":    []any{"******mary"},
		"labels":   map[string]any{"env": "******tion"},
		"unset":    nil,
	}
	assert.Equal(t, want, MaskValue(in))
}
