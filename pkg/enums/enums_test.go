package enums

import "testing"

func TestRoleValidity(t *testing.T) {
	for _, role := range Roles() {
		if !role.IsValid() {
			t.Fatalf("role %s should be valid", role)
		}
		parsed, err := ParseRole(role.String())
		if err != nil {
			t.Fatalf("parse role %s: %v", role, err)
		}
		if parsed != role {
			t.Fatalf("parsed %s, expected %s", parsed, role)
		}
	}
	if Role("manager").IsValid() {
		t.Fatalf("manager is not a recognized role")
	}
	if _, err := ParseRole("root"); err == nil {
		t.Fatalf("expected error parsing unknown role")
	}
}

func TestAccountStatusValidity(t *testing.T) {
	for _, status := range validAccountStatuses {
		if !status.IsValid() {
			t.Fatalf("status %s should be valid", status)
		}
	}
	if AccountStatus("disabled").IsValid() {
		t.Fatalf("disabled is not a recognized status")
	}
	if _, err := ParseAccountStatus("frozen"); err == nil {
		t.Fatalf("expected error parsing unknown status")
	}
}

func TestSecurityQuestionDescriptions(t *testing.T) {
	for _, q := range validSecurityQuestions {
		if q.Description() == "Unknown security question" {
			t.Fatalf("question %s is missing a description", q)
		}
	}
	if SecurityQuestion("favorite_color").Description() != "Unknown security question" {
		t.Fatalf("unknown question should report the fallback description")
	}
	if _, err := ParseSecurityQuestion("favorite_color"); err == nil {
		t.Fatalf("expected error parsing unknown question")
	}
}
