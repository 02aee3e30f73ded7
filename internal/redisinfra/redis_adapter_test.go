package redisinfra

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantErr   bool
		wantField string
	}{
		{
			name:    "default config is valid",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:      "missing addr",
			config:    Config{DB: 0, PingTimeout: time.Second},
			wantErr:   true,
			wantField: "Addr",
		},
		{
			name:      "negative db",
			config:    Config{Addr: "localhost:6379", DB: -1},
			wantErr:   true,
			wantField: "DB",
		},
		{
			name:      "negative ping timeout",
			config:    Config{Addr: "localhost:6379", PingTimeout: -time.Second},
			wantErr:   true,
			wantField: "PingTimeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected an error, got nil")
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error type = %T, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Validate() error field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestNewClient_RejectsInvalidConfigBeforeDialing(t *testing.T) {
	// An invalid config must fail fast without a network round trip.
	_, err := NewClient(Config{})
	if err == nil {
		t.Fatal("NewClient() expected a config error, got nil")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("NewClient() error type = %T, want *ConfigError", err)
	}
}
