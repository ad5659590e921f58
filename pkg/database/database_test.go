package database

import (
	"testing"

	"talent_assessment_backend/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestShouldMigrate(t *testing.T) {
	tests := []struct {
		name         string
		mode         string
		forceMigrate bool
		want         bool
	}{
		{"debug模式默认迁移", "debug", false, true},
		{"release模式默认跳过", "release", false, false},
		{"release模式下-migrate强制迁移", "release", true, true},
		{"debug模式下-migrate仍迁移", "debug", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{ForceMigrate: tt.forceMigrate}
			cfg.Server.Mode = tt.mode
			assert.Equal(t, tt.want, shouldMigrate(cfg))
		})
	}
}
