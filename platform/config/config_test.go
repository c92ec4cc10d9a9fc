package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/heatsurvey")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.PhysicsTimeout != 10*time.Second {
		t.Fatalf("expected 10s physics timeout, got %v", cfg.PhysicsTimeout)
	}
	if cfg.HeatLossCacheTTL != 24*time.Hour {
		t.Fatalf("expected 24h cache ttl, got %v", cfg.HeatLossCacheTTL)
	}
	if cfg.SnapshotRetention != 180*24*time.Hour {
		t.Fatalf("expected 180 days retention, got %v", cfg.SnapshotRetention)
	}
	if cfg.IsPhysicsEnabled() || cfg.IsRedisEnabled() || cfg.IsEventStreamEnabled() {
		t.Fatal("optional collaborators should be disabled without URLs")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestLoadRejectsWildcardWithCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ORIGINS", "https://app.example.com, *")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for wildcard origin with credentials")
	}
}

func TestLoadPhysicsURLTrimmed(t *testing.T) {
	setRequired(t)
	t.Setenv("PHYSICS_API_URL", "https://physics.example.com/")
	t.Setenv("PHYSICS_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.GetPhysicsAPIURL() != "https://physics.example.com" {
		t.Fatalf("unexpected url %q", cfg.GetPhysicsAPIURL())
	}
	if !cfg.IsPhysicsEnabled() || cfg.GetPhysicsTimeout() != 3*time.Second {
		t.Fatal("physics should be enabled with a 3s timeout")
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a, ,b ,c")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected split %v", got)
	}
}

func TestLoadEventStream(t *testing.T) {
	setRequired(t)
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.IsEventStreamEnabled() {
		t.Fatal("expected event stream enabled with brokers set")
	}
	if len(cfg.GetKafkaBrokers()) != 2 || cfg.GetHeatLossEventsTopic() != "heatloss.events" {
		t.Fatalf("unexpected stream config %v %q", cfg.GetKafkaBrokers(), cfg.GetHeatLossEventsTopic())
	}
}
