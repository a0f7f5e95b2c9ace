package auth

import "github.com/oaklinebank/oakline-backend/internal/accounts"

// LoginRequest carries the credential pair for password authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the authenticated account profile. Session issuance
// is out of scope; callers layer their own transport security on top.
type LoginResponse struct {
	User *accounts.UserDTO `json:"user"`
}

// OTPRequest asks for a fresh one-time passcode to be mailed out.
type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// OTPVerifyRequest redeems a previously issued passcode.
type OTPVerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// OTPVerifyResponse reports the account state after redemption.
type OTPVerifyResponse struct {
	User *accounts.UserDTO `json:"user"`
}
