package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.MaxConcurrentJobs != 5 {
		t.Errorf("expected default 5 concurrent jobs, got %d", cfg.MaxConcurrentJobs)
	}
	if cfg.PipelineTimeout != 15*time.Minute {
		t.Errorf("expected default 15m pipeline timeout, got %v", cfg.PipelineTimeout)
	}
	if cfg.MaxTopicLength != 200 {
		t.Errorf("expected default max topic length 200, got %d", cfg.MaxTopicLength)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("MAX_CONCURRENT_JOBS", "12")
	t.Setenv("PIPELINE_TIMEOUT", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9999" || cfg.MaxConcurrentJobs != 12 || cfg.PipelineTimeout != 30*time.Minute {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORS origins not parsed: %v", cfg.CORSOrigins)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"MAX_CONCURRENT_JOBS": "zero",
		"PIPELINE_TIMEOUT":    "soon",
		"MAX_TOPIC_LENGTH":    "-1",
		"RATE_LIMIT_PER_HOUR": "lots",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", key, val)
			}
		})
	}
}
