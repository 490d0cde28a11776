package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError(t *testing.T) {
	cause := errors.New("no JSON files found in one or both inputs")
	tests := []struct {
		name    string
		err     error
		code    int
		message string
		cause   error
	}{
		{"verdict only", exitWith(1), 1, "exit status 1", nil},
		{"unreachable validator", exitWith(2), 2, "exit status 2", nil},
		{"fatal error", fatal("Cannot compare schemas", cause), 1, "Cannot compare schemas: " + cause.Error(), cause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("command: %w", tt.err)
			var exitErr *ExitError
			require.ErrorAs(t, wrapped, &exitErr)
			assert.Equal(t, tt.code, exitErr.Code)
			assert.Equal(t, tt.message, exitErr.Error())
			if tt.cause != nil {
				assert.ErrorIs(t, wrapped, tt.cause)
			} else {
				assert.NoError(t, exitErr.Unwrap())
			}
		})
	}
}
