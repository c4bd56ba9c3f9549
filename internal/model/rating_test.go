package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafetyRating_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    SafetyRating
		wantErr bool
	}{
		{name: "safe", input: `"Safe"`, want: Safe},
		{name: "caution", input: `"Caution"`, want: Caution},
		{name: "warning", input: `"Warning"`, want: Warning},
		{name: "lower case is not coerced", input: `"safe"`, wantErr: true},
		{name: "unknown value", input: `"Dangerous"`, wantErr: true},
		{name: "empty", input: `""`, wantErr: true},
		{name: "number", input: `1`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r SafetyRating
			err := json.Unmarshal([]byte(tt.input), &r)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, SafetyRating(""), r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, r)
		})
	}
}

func TestSafetyRatingValues(t *testing.T) {
	assert.Equal(t, []string{"Safe", "Caution", "Warning"}, SafetyRatingValues())
}
