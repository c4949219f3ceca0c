package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var facilities = []string{
	"Swimming Pool", "Club house / Community Center", "Security Personnel",
	"Power Back-up", "High Ceiling Height", "Shopping Centre",
	"Internet/wi-fi connectivity", "Centrally Air Conditioned",
}

func TestMatchFacility(t *testing.T) {
	tests := []struct {
		name   string
		term   string
		want   string
		wantOK bool
	}{
		{"exact", "Swimming Pool", "Swimming Pool", true},
		{"case and punctuation", "power backup", "Power Back-up", true},
		{"alias", "POOL", "Swimming Pool", true},
		{"alias wifi", "Wi-Fi", "Internet/wi-fi connectivity", true},
		{"unique substring", "ceiling", "High Ceiling Height", true},
		{"ambiguous substring", "centr", "", false},
		{"too short for substring", "hig", "", false},
		{"no match", "helipad", "", false},
		{"empty", "  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchFacility(tt.term, facilities)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchFacility_AliasOutsideOptions(t *testing.T) {
	_, ok := MatchFacility("mall", []string{"Swimming Pool"})
	assert.False(t, ok)
}

func TestFormatINR(t *testing.T) {
	assert.Equal(t, "₹ 4,523,000.00", FormatINR(4523000))
	assert.Equal(t, "₹ 999.50", FormatINR(999.5))
	assert.Equal(t, "₹ 3,030,000.00", FormatLakhs(30.30))
	assert.Equal(t, "₹ 0.00", FormatLakhs(0))
}

func TestFormatR2(t *testing.T) {
	assert.Equal(t, "0.8425", FormatR2(0.8425))
	assert.Equal(t, "0.7733", FormatR2(0.77328))
}
