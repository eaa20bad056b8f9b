package google

import (
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "complete", cfg: Config{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost:3000/auth/google/callback"}},
		{name: "missing id", cfg: Config{ClientSecret: "secret"}, wantErr: true},
		{name: "missing secret", cfg: Config{ClientID: "id"}, wantErr: true},
		{name: "empty", cfg: Config{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthCodeURL(t *testing.T) {
	cfg := Config{
		ClientID:     "client-id",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:3000/auth/google/callback",
	}

	url := cfg.AuthCodeURL()

	for _, want := range []string{
		"client_id=client-id",
		"access_type=offline",
		"prompt=consent",
		"calendar",
	} {
		if !strings.Contains(url, want) {
			t.Errorf("auth URL missing %q: %s", want, url)
		}
	}
}
