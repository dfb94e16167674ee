package config_test

import (
	"testing"

	"guesthouse/config"
	"guesthouse/shared/constant"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		access  string
		refresh string
		wantErr string
	}{
		{name: "development tolerates missing secrets", env: constant.ServerEnvDevelopment},
		{name: "production with secrets", env: constant.ServerEnvProduction, access: "a", refresh: "r"},
		{name: "production without secrets", env: constant.ServerEnvProduction, wantErr: "missing required settings: JWT_ACCESS_SECRET, JWT_REFRESH_SECRET"},
		{name: "production with shared secret", env: constant.ServerEnvProduction, access: "same", refresh: "same", wantErr: "JWT access and refresh secrets must differ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Server.Env = tt.env
			cfg.JWT.AccessSecret = tt.access
			cfg.JWT.RefreshSecret = tt.refresh

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
