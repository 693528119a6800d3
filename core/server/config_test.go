package server_test

import (
	"testing"

	"cal-sync/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_IsValidSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		want     bool
	}{
		{"Empty", "", true},
		{"FiveFields", "*/15 * * * *", true},
		{"Descriptor", "@hourly", true},
		{"Every", "@every 10m", true},
		{"SixFields", "0 */15 * * * *", false},
		{"Garbage", "soon", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{Schedule: tt.schedule}
			assert.Equal(t, tt.want, c.IsValidSchedule())
		})
	}
}
