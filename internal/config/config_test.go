package config

import "testing"

func TestLoadConfigRequiresSupabaseVars(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without Supabase credentials")
	}
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://demo.supabase.co")
	t.Setenv("SUPABASE_KEY", "anon-key")
	t.Setenv("GROQ_API_KEY", "gsk_demo")
	t.Setenv("SESSION_FILE", "/tmp/session.json")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SupabaseURL != "https://demo.supabase.co" || cfg.SupabaseKey != "anon-key" {
		t.Fatalf("unexpected supabase config: %+v", cfg)
	}
	if cfg.GroqAPIKey != "gsk_demo" || cfg.SessionFile != "/tmp/session.json" {
		t.Fatalf("unexpected optional config: %+v", cfg)
	}
}
