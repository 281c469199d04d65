/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "testing"

func validConfig() *Config {
	return &Config{
		kimchiDir:    "images/kimchi",
		notKimchiDir: "images/not-kimchi",
		messageRate:  10,
		port:         8080,
		sampleSize:   40,
		scoreStore:   "json",
		secret:       defaultSecret,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "sqlite", modify: func(c *Config) { c.scoreStore = "sqlite" }},
		{name: "tls pair", modify: func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }},
		{name: "cert without key", modify: func(c *Config) { c.tlsCert = "cert.pem" }, wantErr: true},
		{name: "port zero", modify: func(c *Config) { c.port = 0 }, wantErr: true},
		{name: "port too large", modify: func(c *Config) { c.port = 70000 }, wantErr: true},
		{name: "no sample", modify: func(c *Config) { c.sampleSize = 0 }, wantErr: true},
		{name: "no rate", modify: func(c *Config) { c.messageRate = 0 }, wantErr: true},
		{name: "unknown store", modify: func(c *Config) { c.scoreStore = "redis" }, wantErr: true},
		{name: "blank secret", modify: func(c *Config) { c.secret = "  " }, wantErr: true},
		{name: "no image dir", modify: func(c *Config) { c.kimchiDir = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			if err := cfg.validate(); (err != nil) != tt.wantErr {
				t.Fatalf("validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("SESSION_SECRET", "from-env")
	t.Setenv("KIMCHI_SAMPLE_SIZE", "12")

	cfg := &Config{}
	cmd := newCmd(cfg)
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatal(err)
	}

	if cfg.port != 9191 || cfg.secret != "from-env" || cfg.sampleSize != 12 {
		t.Fatalf("port %d, secret %q, sample %d", cfg.port, cfg.secret, cfg.sampleSize)
	}
	if cfg.insecureSecret() {
		t.Fatal("secret from the environment reported as insecure")
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SESSION_SECRET", "")

	cfg := &Config{}
	newCmd(cfg)

	if cfg.bind != "0.0.0.0" || cfg.port != 8080 || cfg.sampleSize != 40 || !cfg.insecureSecret() {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.scheme() != "http" {
		t.Fatalf("scheme = %s", cfg.scheme())
	}
}
