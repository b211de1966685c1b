package input_test

import (
	"strings"
	"testing"

	"github.com/aretw0/disconnected/internal/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize_SizeLimit(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"Under Limit", input.DefaultMaxSize - 1, false},
		{"Exact Limit", input.DefaultMaxSize, false},
		{"Over Limit", input.DefaultMaxSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := input.Sanitize(strings.Repeat("a", tt.size))
			if tt.wantErr {
				assert.ErrorIs(t, err, input.ErrTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitize_ControlChars(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Normal Text", "ls -la", "ls -la"},
		{"Trimmed", "  pwd \n", "pwd"},
		{"Tabs And Breaks", "cat\tnotes.txt\r\nrm x", "cat notes.txt  rm x"},
		{"ANSI Code", "\x1b[31mhack\x1b[0m", "[31mhack[0m"},
		{"Null Byte", "ss\x00h", "ssh"},
		{"Bell", "help\x07", "help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := input.Sanitize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitize_InvalidUTF8(t *testing.T) {
	_, err := input.Sanitize("cd \xff")
	assert.ErrorIs(t, err, input.ErrInvalidUTF8)
}

func TestSanitize_EnvOverride(t *testing.T) {
	t.Setenv(input.EnvMaxSize, "10")

	_, err := input.Sanitize("12345678901")
	assert.ErrorIs(t, err, input.ErrTooLarge)

	_, err = input.Sanitize("12345")
	assert.NoError(t, err)
}
