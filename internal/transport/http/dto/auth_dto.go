package dto

import authsvc "github.com/AlonsoPV/baileApp-sub007/internal/services/auth"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type MeResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuthTokensResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresInSec int64      `json:"expires_in_sec"`
	Me           MeResponse `json:"me"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

func AuthTokensFromResult(result authsvc.AuthResult, expiresInSec int64) AuthTokensResponse {
	return AuthTokensResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresInSec: expiresInSec,
		Me: MeResponse{
			ID:    result.Me.ID,
			Email: result.Me.Email,
			Role:  result.Me.Role,
		},
	}
}
