package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTitle(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		want  string
		valid bool
	}{
		{"plain", "Launch Event", "Launch Event", true},
		{"trimmed", "  Launch Event \n", "Launch Event", true},
		{"single char", "x", "x", true},
		{"exactly 200", strings.Repeat("a", 200), strings.Repeat("a", 200), true},
		{"200 multibyte", strings.Repeat("海", 200), strings.Repeat("海", 200), true},
		{"201", strings.Repeat("a", 201), "", false},
		{"200 after trim", "  " + strings.Repeat("b", 200) + "  ", strings.Repeat("b", 200), true},
		{"empty", "", "", false},
		{"blank", " \t\n ", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateTitle(tc.in)
			if !tc.valid {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidateMessage(t *testing.T) {
	got, err := ValidateMessage("  modern tech conference poster ")
	require.NoError(t, err)
	assert.Equal(t, "modern tech conference poster", got)

	_, err = ValidateMessage(strings.Repeat("m", 5000))
	assert.NoError(t, err)

	_, err = ValidateMessage(strings.Repeat("m", 5001))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ValidateMessage("   ")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "message", vErr.Field)
}
