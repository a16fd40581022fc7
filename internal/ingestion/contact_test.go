package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseContact(t *testing.T) {
	tests := []struct {
		name string
		text string
		want struct{ name, email, phone, experience string }
	}{
		{
			name: "full header",
			text: "RESUME\nMaria Garcia\nmaria.garcia@mail.io\n555.867.5309\nSenior engineer, 7+ years of Java and 3 years of Go",
			want: struct{ name, email, phone, experience string }{"Maria Garcia", "maria.garcia@mail.io", "555.867.5309", "7 years"},
		},
		{
			name: "title line is skipped when lowercase words appear",
			text: "Curriculum Vitae\nsoftware engineer at acme\nMichael O'Brien\n1 year experience",
			want: struct{ name, email, phone, experience string }{"Michael O'Brien", "", "", "1 year"},
		},
		{
			name: "nothing found",
			text: "python sql aws",
			want: struct{ name, email, phone, experience string }{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseContact(tt.text)
			assert.Equal(t, tt.want.name, got.Name)
			assert.Equal(t, tt.want.email, got.Email)
			assert.Equal(t, tt.want.phone, got.Phone)
			assert.Equal(t, tt.want.experience, got.Experience)
		})
	}
}

func TestLooksLikeName(t *testing.T) {
	assert.True(t, looksLikeName("Ada Lovelace"))
	assert.True(t, looksLikeName("Jean-Luc Picard"))
	assert.False(t, looksLikeName("Ada"))
	assert.False(t, looksLikeName("Ada Lovelace 2024"))
	assert.False(t, looksLikeName("ada lovelace"))
	assert.False(t, looksLikeName("Contact: Ada Lovelace"))
}
