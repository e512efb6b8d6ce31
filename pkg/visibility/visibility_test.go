package visibility

import (
	"testing"

	"github.com/google/uuid"

	"github.com/itbpos/restaurant-backend/pkg/auth"
	"github.com/itbpos/restaurant-backend/pkg/enums"
	"github.com/itbpos/restaurant-backend/pkg/errors"
)

func TestScopeForClaims(t *testing.T) {
	branchA := uuid.New()
	branchB := uuid.New()

	t.Run("manager sees all branches", func(t *testing.T) {
		scope := ScopeForClaims(&auth.AccessTokenClaims{Role: enums.StaffRoleManager})
		if !scope.All {
			t.Fatal("expected all-branch scope")
		}
		if !scope.Allows(branchA) || !scope.Allows(branchB) {
			t.Fatal("manager scope should allow any branch")
		}
	})

	t.Run("waiter limited to grants", func(t *testing.T) {
		scope := ScopeForClaims(&auth.AccessTokenClaims{
			Role:      enums.StaffRoleWaiter,
			BranchIDs: []uuid.UUID{branchA},
		})
		if scope.All {
			t.Fatal("waiter should not get all-branch scope")
		}
		if !scope.Allows(branchA) {
			t.Fatal("granted branch should be allowed")
		}
		if scope.Allows(branchB) {
			t.Fatal("ungranted branch should be denied")
		}
	})

	t.Run("zero grants warns and matches nothing", func(t *testing.T) {
		scope := ScopeForClaims(&auth.AccessTokenClaims{Role: enums.StaffRoleKitchen})
		if !scope.Warned {
			t.Fatal("expected warned scope")
		}
		if !scope.MatchNone() {
			t.Fatal("expected match-none scope")
		}
		if scope.Allows(branchA) {
			t.Fatal("empty scope should allow nothing")
		}
	})

	t.Run("nil claims warn", func(t *testing.T) {
		scope := ScopeForClaims(nil)
		if !scope.Warned || !scope.MatchNone() {
			t.Fatal("nil claims should produce a warned empty scope")
		}
	})
}

func TestEnsureBranchAccess(t *testing.T) {
	branchA := uuid.New()

	t.Run("missing branch id", func(t *testing.T) {
		err := EnsureBranchAccess(BranchScope{All: true}, uuid.Nil)
		if err == nil || errors.As(err).Code() != errors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("denied branch", func(t *testing.T) {
		err := EnsureBranchAccess(BranchScope{BranchIDs: []uuid.UUID{uuid.New()}}, branchA)
		if err == nil || errors.As(err).Code() != errors.CodeForbidden {
			t.Fatalf("expected forbidden error, got %v", err)
		}
	})

	t.Run("allowed branch", func(t *testing.T) {
		if err := EnsureBranchAccess(BranchScope{BranchIDs: []uuid.UUID{branchA}}, branchA); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
