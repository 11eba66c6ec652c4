package identity

import "testing"

func TestRolePermissionsSubset(t *testing.T) {
	allowed := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		allowed[perm] = struct{}{}
	}

	for role, perms := range RolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			if _, ok := allowed[perm]; !ok {
				t.Fatalf("role %s has unknown permission %s", role, perm)
			}
		}
	}
}

func TestDefaultPermissionsUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		if _, ok := seen[perm]; ok {
			t.Fatalf("duplicate permission %s", perm)
		}
		seen[perm] = struct{}{}
	}
}

func TestAdminHoldsEveryPermission(t *testing.T) {
	for _, perm := range DefaultPermissions {
		if !RoleHasPermission(RoleAdmin, perm) {
			t.Fatalf("admin missing permission %s", perm)
		}
	}
}

func TestEmployeeCannotWithdrawWarnings(t *testing.T) {
	if RoleHasPermission(RoleEmployee, PermWarningsWithdraw) {
		t.Fatal("employee must not hold warnings.withdraw")
	}
	if RoleHasPermission(RoleManager, PermWarningsWithdraw) {
		t.Fatal("manager must not hold warnings.withdraw")
	}
}

func TestInactiveStatuses(t *testing.T) {
	if !Inactive(StatusSuspended) || !Inactive(StatusTerminated) {
		t.Fatal("suspended and terminated must be inactive")
	}
	if Inactive(StatusActive) || Inactive(StatusOnboarding) {
		t.Fatal("active and onboarding must not be inactive")
	}
}
