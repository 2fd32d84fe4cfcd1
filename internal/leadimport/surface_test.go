package leadimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSurface(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"150,5 m²", 150.5, true},
		{"150.5", 150.5, true},
		{"120", 120, true},
		{"environ 90m2", 902, true},
		{",5", 0.5, true},
		{"1.234,5", 1.234, true},
		{"abc", 0, false},
		{"", 0, false},
		{"m²", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSurface(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}
