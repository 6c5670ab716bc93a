package gatt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPropertyNames(t *testing.T) {
	tests := []struct {
		name     string
		props    Property
		expected string
	}{
		{
			name:     "single property",
			props:    PropRead,
			expected: "read",
		},
		{
			name:     "read write notify",
			props:    PropRead | PropWrite | PropNotify,
			expected: "read|write|notify",
		},
		{
			name:     "write without response",
			props:    PropWriteNR,
			expected: "write-without-response",
		},
		{
			name:     "none",
			props:    0,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.props.String())
		})
	}
}

func TestPropertyHas(t *testing.T) {
	p := PropRead | PropNotify
	assert.True(t, p.Has(PropRead))
	assert.True(t, p.Has(PropNotify))
	assert.True(t, p.Has(PropRead|PropNotify))
	assert.False(t, p.Has(PropWrite))
	assert.False(t, p.Has(PropRead|PropWrite))
}

func TestParseProperty(t *testing.T) {
	assert.Equal(t, PropRead, ParseProperty("read"))
	assert.Equal(t, PropNotify, ParseProperty(" Notify "))
	assert.Equal(t, PropWriteNR, ParseProperty("write-without-response"))
	assert.Equal(t, Property(0), ParseProperty("bogus"))
}
