package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/itbpos/restaurant-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	User      string
	Role      enums.StaffRole
	BranchIDs []uuid.UUID
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to staff terminals.
type AccessTokenClaims struct {
	User      string          `json:"user"`
	Role      enums.StaffRole `json:"role"`
	BranchIDs []uuid.UUID     `json:"branch_ids,omitempty"`
	jwt.RegisteredClaims
}

// HasBranch reports whether the token grants access to the branch.
func (c *AccessTokenClaims) HasBranch(branchID uuid.UUID) bool {
	for _, id := range c.BranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}
