package visibility

import (
	"github.com/google/uuid"

	"github.com/itbpos/restaurant-backend/pkg/auth"
	"github.com/itbpos/restaurant-backend/pkg/enums"
	pkgerrors "github.com/itbpos/restaurant-backend/pkg/errors"
)

// BranchScope describes which branches a staff member's queries may touch.
type BranchScope struct {
	All       bool
	BranchIDs []uuid.UUID
	// Warned is set when the user holds no branch grants at all; queries
	// carrying such a scope must match nothing rather than everything.
	Warned bool
}

// ScopeForClaims derives the branch scope from the access token claims.
// Managers see every branch; other roles see only their granted branches.
func ScopeForClaims(claims *auth.AccessTokenClaims) BranchScope {
	if claims == nil {
		return BranchScope{Warned: true}
	}
	if claims.Role == enums.StaffRoleManager {
		return BranchScope{All: true}
	}
	if len(claims.BranchIDs) == 0 {
		return BranchScope{Warned: true}
	}
	ids := make([]uuid.UUID, len(claims.BranchIDs))
	copy(ids, claims.BranchIDs)
	return BranchScope{BranchIDs: ids}
}

// Allows reports whether the scope grants access to the branch.
func (s BranchScope) Allows(branchID uuid.UUID) bool {
	if s.All {
		return true
	}
	for _, id := range s.BranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}

// MatchNone reports whether queries under this scope must return empty results.
func (s BranchScope) MatchNone() bool {
	return !s.All && len(s.BranchIDs) == 0
}

// EnsureBranchAccess returns a forbidden error when the scope excludes the branch.
func EnsureBranchAccess(scope BranchScope, branchID uuid.UUID) error {
	if branchID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "branch id is required")
	}
	if !scope.Allows(branchID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "branch not authorized for this user")
	}
	return nil
}
