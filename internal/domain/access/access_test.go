package access

import (
	"testing"

	"peopleops/internal/domain/identity"
)

func principal(id, role string) identity.ResolvedPrincipal {
	return identity.ResolvedPrincipal{
		ID:          id,
		Role:        role,
		Permissions: identity.RolePermissions[role],
		Status:      identity.StatusActive,
	}
}

func TestAdminOverrideIsTotal(t *testing.T) {
	admin := principal("a1", identity.RoleAdmin)
	res := &Resource{Type: "employee", SubjectID: "someone-else", SubjectManagerID: "another"}

	for action := range rules {
		d := Decide(admin, action, res)
		if !d.Allowed {
			t.Fatalf("admin denied action %s: %s", action, d.Reason)
		}
		if d := Decide(admin, action, nil); !d.Allowed {
			t.Fatalf("admin denied action %s without resource: %s", action, d.Reason)
		}
	}
}

func TestInactivePrincipalDeniedEverything(t *testing.T) {
	suspended := principal("a1", identity.RoleAdmin)
	suspended.Status = identity.StatusSuspended

	d := Decide(suspended, ActionEmployeeView, nil)
	if d.Allowed || d.Reason != ReasonAccountInactive {
		t.Fatalf("expected account_inactive denial, got %+v", d)
	}
}

func TestOwnershipAllowsSelfScopedOnly(t *testing.T) {
	emp := principal("e1", identity.RoleEmployee)
	own := &Resource{Type: "employee", SubjectID: "e1"}

	if d := Decide(emp, ActionEmployeeView, own); !d.Allowed {
		t.Fatalf("owner denied view: %s", d.Reason)
	}
	if d := Decide(emp, ActionEmployeeUpdate, own); !d.Allowed {
		t.Fatalf("owner denied self update: %s", d.Reason)
	}
	if d := Decide(emp, ActionEmployeeTerminate, own); d.Allowed {
		t.Fatal("ownership must never grant terminate")
	}
	if d := Decide(emp, ActionEmployeeSetStatus, own); d.Allowed {
		t.Fatal("ownership must never grant status change")
	}
}

func TestManagerRelationshipScope(t *testing.T) {
	mgr := principal("m1", identity.RoleManager)
	report := &Resource{Type: "warning", SubjectID: "e1", SubjectManagerID: "m1"}
	stranger := &Resource{Type: "warning", SubjectID: "e2", SubjectManagerID: "m2"}

	if d := Decide(mgr, ActionWarningIssue, report); !d.Allowed {
		t.Fatalf("manager denied issue for own report: %s", d.Reason)
	}
	if d := Decide(mgr, ActionWarningResolve, report); !d.Allowed {
		t.Fatalf("manager denied resolve for own report: %s", d.Reason)
	}
	if d := Decide(mgr, ActionWarningResolve, stranger); d.Allowed {
		t.Fatal("manager allowed resolve outside relationship")
	}
	if d := Decide(mgr, ActionWarningWithdraw, report); d.Allowed {
		t.Fatal("withdraw must stay with elevated roles")
	}
}

func TestRelationshipRequiresManagerRole(t *testing.T) {
	// A plain employee who happens to be listed as someone's manager in a
	// stale snapshot still has no manager-scope access.
	emp := principal("m1", identity.RoleEmployee)
	res := &Resource{Type: "warning", SubjectID: "e1", SubjectManagerID: "m1"}
	if d := Decide(emp, ActionWarningIssue, res); d.Allowed {
		t.Fatal("relationship rule must require the manager role")
	}
}

func TestHRElevatedScope(t *testing.T) {
	hr := principal("h1", identity.RoleHR)
	res := &Resource{Type: "employee", SubjectID: "e1", SubjectManagerID: "m1"}

	for _, action := range []Action{
		ActionEmployeeView, ActionEmployeeUpdate, ActionEmployeeSetStatus,
		ActionEmployeeTerminate, ActionWarningWithdraw, ActionProjectReassignManager,
	} {
		if d := Decide(hr, action, res); !d.Allowed {
			t.Fatalf("hr denied %s: %s", action, d.Reason)
		}
	}
}

func TestSelfAssessmentIsSubjectOnly(t *testing.T) {
	res := &Resource{Type: "appraisal", SubjectID: "e1", SubjectManagerID: "m1"}

	if d := Decide(principal("e1", identity.RoleEmployee), ActionAppraisalSelfAssess, res); !d.Allowed {
		t.Fatalf("subject denied self-assessment: %s", d.Reason)
	}
	if d := Decide(principal("h1", identity.RoleHR), ActionAppraisalSelfAssess, res); d.Allowed {
		t.Fatal("hr must not submit someone else's self-assessment")
	}
	if d := Decide(principal("m1", identity.RoleManager), ActionAppraisalSelfAssess, res); d.Allowed {
		t.Fatal("manager must not submit someone else's self-assessment")
	}
}

func TestDocumentShareLevels(t *testing.T) {
	res := &Resource{
		Type:      "document",
		SubjectID: "uploader",
		Shares: []Share{
			{PrincipalID: "viewer", Level: ShareView},
			{PrincipalID: "editor", Level: ShareEdit},
		},
	}

	if d := Decide(principal("viewer", identity.RoleEmployee), ActionDocumentView, res); !d.Allowed {
		t.Fatalf("view share denied view: %s", d.Reason)
	}
	if d := Decide(principal("viewer", identity.RoleEmployee), ActionDocumentEdit, res); d.Allowed {
		t.Fatal("view share must not grant edit")
	}
	if d := Decide(principal("editor", identity.RoleEmployee), ActionDocumentEdit, res); !d.Allowed {
		t.Fatalf("edit share denied edit: %s", d.Reason)
	}
	if d := Decide(principal("editor", identity.RoleEmployee), ActionDocumentComment, res); !d.Allowed {
		t.Fatalf("edit share denied comment: %s", d.Reason)
	}
	if d := Decide(principal("other", identity.RoleEmployee), ActionDocumentView, res); d.Allowed {
		t.Fatal("unshared principal allowed view")
	}

	res.Public = true
	if d := Decide(principal("other", identity.RoleEmployee), ActionDocumentView, res); !d.Allowed {
		t.Fatalf("public document denied view: %s", d.Reason)
	}
	if d := Decide(principal("other", identity.RoleEmployee), ActionDocumentEdit, res); d.Allowed {
		t.Fatal("public must only grant view")
	}
}

func TestUploaderCannotDeleteOwnDocument(t *testing.T) {
	res := &Resource{Type: "document", SubjectID: "uploader"}
	if d := Decide(principal("uploader", identity.RoleEmployee), ActionDocumentDelete, res); d.Allowed {
		t.Fatal("delete is elevated-only")
	}
}

func TestTeamMembershipGrantsNothing(t *testing.T) {
	// A manager listed as a team member of someone else's project gets no
	// project-admin rights from membership alone.
	mgr := principal("m2", identity.RoleManager)
	res := &Resource{Type: "project", SubjectID: "m1", SubjectManagerID: ""}

	if d := Decide(mgr, ActionProjectManageTeam, res); d.Allowed {
		t.Fatal("team membership must not grant manage_team")
	}
	if d := Decide(mgr, ActionProjectReassignManager, res); d.Allowed {
		t.Fatal("team membership must not grant reassign_manager")
	}
}

func TestDefaultDenyReason(t *testing.T) {
	d := Decide(principal("e1", identity.RoleEmployee), ActionWarningIssue, &Resource{SubjectID: "e2"})
	if d.Allowed {
		t.Fatal("expected denial")
	}
	if d.Reason != ReasonInsufficientRole {
		t.Fatalf("expected insufficient_role, got %s", d.Reason)
	}
}

func TestUnknownAction(t *testing.T) {
	d := Decide(principal("e1", identity.RoleEmployee), Action("nope"), nil)
	if d.Allowed || d.Reason != ReasonUnknownAction {
		t.Fatalf("expected unknown_action denial, got %+v", d)
	}
}

func TestShareLevelParsing(t *testing.T) {
	cases := map[string]ShareLevel{"view": ShareView, "comment": ShareComment, "edit": ShareEdit}
	for raw, want := range cases {
		got, ok := ParseShareLevel(raw)
		if !ok || got != want {
			t.Fatalf("parse %q: got %v ok=%v", raw, got, ok)
		}
		if got.String() != raw {
			t.Fatalf("round trip %q: got %q", raw, got.String())
		}
	}
	if _, ok := ParseShareLevel("owner"); ok {
		t.Fatal("unexpected parse success for owner")
	}
}
