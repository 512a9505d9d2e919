package permission

import (
	"errors"
	"testing"
)

func groceryCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog("ADMIN", "SELLER", "CUSTOMER", "DELIVERY_PARTNER")
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	if err := c.RegisterAlias("MANAGER", "SELLER"); err != nil {
		t.Fatalf("alias: %v", err)
	}
	if err := c.RegisterAlias("staff", "SELLER"); err != nil {
		t.Fatalf("alias: %v", err)
	}
	if err := c.SetDefaultRole("CUSTOMER"); err != nil {
		t.Fatalf("default role: %v", err)
	}
	c.Freeze()
	return c
}

func TestCatalogResolveAliasesAndDefault(t *testing.T) {
	c := groceryCatalog(t)

	cases := map[string]Role{
		"manager":          "SELLER",
		"Staff":            "SELLER",
		"admin":            "ADMIN",
		"ROLE_ADMIN":       "ADMIN",
		"delivery-partner": "DELIVERY_PARTNER",
		"delivery partner": "DELIVERY_PARTNER",
		"wizard":           "CUSTOMER",
		"":                 "CUSTOMER",
	}
	for raw, want := range cases {
		got, ok := c.Resolve(raw)
		if !ok || got != want {
			t.Errorf("Resolve(%q) = %q,%v want %q", raw, got, ok, want)
		}
	}
}

func TestCatalogLookupRejectsUnknown(t *testing.T) {
	c := groceryCatalog(t)
	if _, ok := c.Lookup("wizard"); ok {
		t.Fatal("unknown role must not resolve through Lookup")
	}
}

func TestCatalogFrozen(t *testing.T) {
	c := groceryCatalog(t)
	if err := c.RegisterRole("AUDITOR"); !errors.Is(err, ErrCatalogFrozen) {
		t.Fatalf("expected ErrCatalogFrozen, got %v", err)
	}
	if err := c.RegisterPermission("X"); !errors.Is(err, ErrCatalogFrozen) {
		t.Fatalf("expected ErrCatalogFrozen, got %v", err)
	}
}

func TestCatalogRejectsAliasShadowingRole(t *testing.T) {
	c, err := NewCatalog("ADMIN", "SELLER")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.RegisterAlias("admin", "SELLER"); err == nil {
		t.Fatal("expected alias clash error")
	}
	if err := c.RegisterAlias("boss", "OWNER"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestCatalogKnownPermission(t *testing.T) {
	open, _ := NewCatalog("ADMIN")
	if !open.KnownPermission("ANYTHING") {
		t.Fatal("catalog without permissions must accept any key")
	}

	closed, _ := NewCatalog("ADMIN")
	_ = closed.RegisterPermission("STUDENT_VIEW")
	if !closed.KnownPermission("STUDENT_VIEW") || closed.KnownPermission("OTHER") {
		t.Fatal("closed catalog membership mismatch")
	}
}

func TestTableValidateAndPermissions(t *testing.T) {
	c := groceryCatalog(t)
	table := Table{"SELLER": {"PRODUCT_EDIT"}}
	if err := table.Validate(c); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !table.Permissions("SELLER").Has("PRODUCT_EDIT") {
		t.Fatal("expected seller default permission")
	}
	if table.Permissions("ADMIN").Len() != 0 {
		t.Fatal("roles without entries must get an empty set")
	}
	if err := (Table{"WIZARD": nil}).Validate(c); err == nil {
		t.Fatal("expected unknown role error")
	}
}

func TestRolePredicates(t *testing.T) {
	if !HasRole("ADMIN", "ADMIN") || HasRole("ADMIN", "STUDENT") || HasRole("", "") {
		t.Fatal("HasRole mismatch")
	}
	if !HasAnyRole("SELLER", []Role{"ADMIN", "SELLER"}) || HasAnyRole("SELLER", nil) || HasAnyRole("", []Role{""}) {
		t.Fatal("HasAnyRole mismatch")
	}
}
