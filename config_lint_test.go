package goGuard

import (
	"reflect"
	"testing"
	"time"
)

func TestLintPresetsClean(t *testing.T) {
	for _, cfg := range []Config{CollegeAdmissionConfig(), GroceryConfig(), LibraryConfig(), BudgetConfig()} {
		if ws := cfg.Lint(); len(ws) != 0 {
			t.Fatalf("expected no warnings for %s preset, got %v", cfg.Session.KeyPrefix, ws.Codes())
		}
	}
}

func TestLintReportsRiskySettings(t *testing.T) {
	cfg := GroceryConfig()
	cfg.Normalize.AllowDemoFallback = true
	cfg.Session.RejectExpiredTokens = false
	cfg.Session.ExpiryLeeway = 2 * time.Minute
	cfg.Transport.RetryGETWithoutAuthOn500 = true
	cfg.Transport.PublicPaths = nil

	want := []string{
		"demo_fallback_enabled",
		"expiry_check_disabled",
		"leeway_large",
		"retry_without_auth",
		"no_public_paths",
	}
	if got := cfg.Lint().Codes(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLintOpenCatalog(t *testing.T) {
	cfg := BudgetConfig()
	cfg.Roles.Permissions = nil
	cfg.Roles.DefaultRole = ""

	ws := cfg.Lint()
	want := []string{"permission_catalog_empty", "no_default_role"}
	if got := ws.Codes(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for _, w := range ws {
		if w.Severity != LintInfo {
			t.Fatalf("%s: expected info severity", w.Code)
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("lint findings must not fail validation: %v", err)
	}
}
