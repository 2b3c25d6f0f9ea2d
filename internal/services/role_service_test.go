package services

import (
	"testing"

	"serve-cafe/internal/models"
)

func TestExpandPermissions(t *testing.T) {
	// full wildcard expands to the complete capability set
	all, err := ExpandPermissions([]string{"*"})
	if err != nil {
		t.Fatalf("ExpandPermissions failed: %v", err)
	}
	if len(all) != len(Capabilities) {
		t.Errorf("expected %d capabilities, got %d", len(Capabilities), len(all))
	}

	// prefix wildcard
	menu, err := ExpandPermissions([]string{"menu.*"})
	if err != nil {
		t.Fatalf("ExpandPermissions failed: %v", err)
	}
	if len(menu) != 2 {
		t.Errorf("expected menu.view and menu.manage, got %v", menu)
	}

	// exact grants pass through, duplicates collapse
	exact, err := ExpandPermissions([]string{"users.view", "users.view", "ledger.settle"})
	if err != nil {
		t.Fatalf("ExpandPermissions failed: %v", err)
	}
	if len(exact) != 2 {
		t.Errorf("expected 2 permissions, got %v", exact)
	}

	// unknown tags and dead patterns are rejected
	if _, err := ExpandPermissions([]string{"nonsense.tag"}); !IsValidation(err) {
		t.Errorf("expected validation error for unknown tag, got %v", err)
	}
	if _, err := ExpandPermissions([]string{"nonsense.*"}); !IsValidation(err) {
		t.Errorf("expected validation error for dead pattern, got %v", err)
	}
}

func TestRolePermissionCheck(t *testing.T) {
	db := setupTestDB(t)
	service := NewRoleService(db)

	user := createUser(t, db, "manager", "paid", nil)

	role, err := service.CreateRole("Branch Manager", models.UserTypeBranchOffice, []string{"menu.*", "users.view"})
	if err != nil {
		t.Fatalf("CreateRole failed: %v", err)
	}
	if err := service.AssignRole(user.ID, role.ID); err != nil {
		t.Fatalf("AssignRole failed: %v", err)
	}

	ok, err := service.HasPermission(user.ID, "menu.manage")
	if err != nil {
		t.Fatalf("HasPermission failed: %v", err)
	}
	if !ok {
		t.Error("expected menu.manage to be granted via menu.*")
	}

	ok, err = service.HasPermission(user.ID, "roles.manage")
	if err != nil {
		t.Fatalf("HasPermission failed: %v", err)
	}
	if ok {
		t.Error("roles.manage must not be granted")
	}

	// stored permissions are fully expanded, no patterns remain
	var stored models.Role
	if err := db.First(&stored, role.ID).Error; err != nil {
		t.Fatalf("failed to reload role: %v", err)
	}
	for _, perm := range stored.Permissions {
		if perm == "menu.*" || perm == "*" {
			t.Errorf("wildcard %q stored unexpanded", perm)
		}
	}

	// bad user type is rejected
	if _, err := service.CreateRole("Bad", "warehouse", []string{"*"}); !IsValidation(err) {
		t.Errorf("expected validation error for bad user type, got %v", err)
	}
}
