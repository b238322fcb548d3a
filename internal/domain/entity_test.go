package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidLEI(t *testing.T) {
	tests := []struct {
		lei  string
		want bool
	}{
		{"529900T8BM49AURSDO55", true},
		{"213800WAVVOPS85N2205", true},
		{"aBc123xyz789AbC123xY", true}, // case-sensitive but both cases allowed
		{"", false},
		{"too-short", false},
		{"529900T8BM49AURSDO5", false},   // 19 chars
		{"529900T8BM49AURSDO555", false}, // 21 chars
		{"529900T8BM49AURSDO5!", false},  // non-alphanumeric
		{"529900T8BM49 URSDO55", false},  // embedded space
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidLEI(tt.lei), "lei %q", tt.lei)
	}
}

func TestEntityIsEmpty(t *testing.T) {
	assert.True(t, Entity{}.IsEmpty())
	assert.False(t, Entity{LegalName: "British Fund PLC"}.IsEmpty())
	assert.False(t, Entity{BIC: "BFPLGB2LXXX"}.IsEmpty())
	assert.False(t, Entity{Country: "GB"}.IsEmpty())
}
