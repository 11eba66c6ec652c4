package reports

import (
	"testing"

	"peopleops/internal/domain/identity"
)

func TestScopeForRoles(t *testing.T) {
	admin := ScopeFor(identity.ResolvedPrincipal{ID: "a", Role: identity.RoleAdmin})
	if !admin.All {
		t.Fatal("admin scope must cover everything")
	}
	hr := ScopeFor(identity.ResolvedPrincipal{ID: "h", Role: identity.RoleHR})
	if !hr.All {
		t.Fatal("hr scope must cover everything")
	}
	mgr := ScopeFor(identity.ResolvedPrincipal{ID: "m", Role: identity.RoleManager})
	if mgr.All || mgr.ManagerID != "m" || mgr.PrincipalID != "" {
		t.Fatalf("unexpected manager scope: %+v", mgr)
	}
	emp := ScopeFor(identity.ResolvedPrincipal{ID: "e", Role: identity.RoleEmployee})
	if emp.All || emp.PrincipalID != "e" || emp.ManagerID != "" {
		t.Fatalf("unexpected employee scope: %+v", emp)
	}
}
