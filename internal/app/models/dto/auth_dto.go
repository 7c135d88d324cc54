package dto

import (
	"github.com/google/uuid"
	"github.com/yigit/mobility/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane.doe@edu.ece.fr"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a student self-registration
type RegisterRequest struct {
	Email    string     `json:"email" binding:"required,email" example:"jane.doe@edu.ece.fr"`
	Password string     `json:"password" binding:"required,min=8"`
	FullName string     `json:"fullName" binding:"required,max=150" example:"Jane Doe"`
	MajorID  *uuid.UUID `json:"majorId"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"3600"`
}

// ProfileResponse is the public view of a profile
type ProfileResponse struct {
	ID       uuid.UUID       `json:"id"`
	Email    string          `json:"email" example:"jane.doe@edu.ece.fr"`
	FullName string          `json:"fullName" example:"Jane Doe"`
	Role     models.RoleType `json:"role" example:"student"`
	MajorID  *uuid.UUID      `json:"majorId,omitempty"`
}

// NewProfileResponse converts a profile, dropping its password hash
func NewProfileResponse(p *models.Profile) *ProfileResponse {
	if p == nil {
		return nil
	}
	return &ProfileResponse{
		ID:       p.ID,
		Email:    p.Email,
		FullName: p.FullName,
		Role:     p.Role,
		MajorID:  p.MajorID,
	}
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse    `json:"token"`
	User  *ProfileResponse `json:"user"`
}
