package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color string

const (
	colorRed  color = "red"
	colorBlue color = "blue"
)

func TestEnum_Normalize(t *testing.T) {
	e := NewEnum("color", map[string]color{"red": colorRed, "Blue": colorBlue, "azure": colorBlue}, colorRed)

	tests := []struct {
		in   string
		want color
	}{
		{"red", colorRed},
		{"  BLUE ", colorBlue},
		{"azure", colorBlue},
		{"green", colorRed},
		{"", colorRed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.Normalize(tt.in), tt.in)
	}
	assert.Equal(t, []string{"azure", "blue", "red"}, e.Keys())
}

func TestEnum_Parse(t *testing.T) {
	e := NewEnum("color", map[string]color{"red": colorRed, "blue": colorBlue}, colorRed)

	v, err := e.Parse(" Blue")
	require.NoError(t, err)
	assert.Equal(t, colorBlue, v)

	v, err = e.Parse("")
	require.NoError(t, err)
	assert.Equal(t, colorRed, v)

	_, err = e.Parse("green")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid color "green"`)
}
