package services

import "errors"

// Sentinel errors for conditions callers need to tell apart when choosing a
// user-facing message. Compare with errors.Is.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidInviteCode   = errors.New("invalid invite code")
	ErrSelfInvite          = errors.New("cannot accept your own invite")
	ErrAlreadyInvited      = errors.New("user already has an inviter")
	ErrInviteWindowExpired = errors.New("registration too old to accept an invite")
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskInactive        = errors.New("task is not active")
	ErrTaskAlreadyClaimed  = errors.New("task already claimed")
	ErrTaskOnCooldown      = errors.New("task is on cooldown")
)
