package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmaren/chronodeck/config"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		tick    int
		wantErr bool
	}{
		{"default", config.DefaultTickSeconds, false},
		{"upper bound", config.MaxTickSeconds, false},
		{"zero", 0, true},
		{"negative", -5, true},
		{"too large", config.MaxTickSeconds + 1, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := config.Settings{TickSeconds: tc.tick}
			err := s.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
