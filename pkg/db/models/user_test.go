package models

import (
	"testing"
	"time"

	"github.com/oaklinebank/oakline-backend/pkg/enums"
)

func TestFullNameWithoutMiddleNameKeepsDoubleSpace(t *testing.T) {
	user := &User{FirstName: "John", LastName: "Doe"}
	if got := user.FullName(); got != "John  Doe" {
		t.Fatalf("expected %q, got %q", "John  Doe", got)
	}
}

func TestFullNameWithMiddleName(t *testing.T) {
	middle := "Michael"
	user := &User{FirstName: "John", MiddleName: &middle, LastName: "Doe"}
	if got := user.FullName(); got != "John Michael Doe" {
		t.Fatalf("expected %q, got %q", "John Michael Doe", got)
	}
}

func TestFullNameReflectsCurrentFields(t *testing.T) {
	user := &User{FirstName: "John", LastName: "Doe"}
	_ = user.FullName()
	user.FirstName = "Jane"
	if got := user.FullName(); got != "Jane  Doe" {
		t.Fatalf("derived name should not be cached, got %q", got)
	}
}

func TestHasRole(t *testing.T) {
	user := &User{Role: enums.RoleAdmin}
	if !user.HasRole(enums.RoleAdmin) {
		t.Fatal("expected admin role check to pass")
	}
	for _, role := range enums.Roles() {
		if role == enums.RoleAdmin {
			continue
		}
		if user.HasRole(role) {
			t.Fatalf("admin account should not report role %s", role)
		}
	}
}

func TestIsDeletedFollowsTimestamp(t *testing.T) {
	user := &User{}
	if user.IsDeleted() {
		t.Fatal("fresh account should not be deleted")
	}
	now := time.Now().UTC()
	user.DeletedAt = &now
	if !user.IsDeleted() {
		t.Fatal("account with deleted_at set should report deleted")
	}
	user.DeletedAt = nil
	if user.IsDeleted() {
		t.Fatal("restored account should not report deleted")
	}
}
