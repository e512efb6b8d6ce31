package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/itbpos/restaurant-backend/pkg/enums"
)

// SignInInput provisions a terminal session. The staff directory lives in the
// host POS system; TerminalKey proves the caller is a provisioned terminal.
type SignInInput struct {
	TerminalKey string          `json:"terminalKey" validate:"required"`
	User        string          `json:"user" validate:"required"`
	Role        enums.StaffRole `json:"role" validate:"required"`
	BranchIDs   []uuid.UUID     `json:"branchIds,omitempty"`
}

// RefreshInput rotates a refresh session. The access token may be expired.
type RefreshInput struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenPair is returned by sign-in and refresh.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}
