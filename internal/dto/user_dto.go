package dto

import "time"

type SignupRequestDTO struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequestDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponseDTO never carries the password hash.
type UserResponseDTO struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Contact   string    `json:"contact"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponseDTO struct {
	User  UserResponseDTO `json:"user"`
	Token string          `json:"token"`
}

// UserUpdateDTO is bound from a multipart form; the image file is read separately.
type UserUpdateDTO struct {
	Name     string `form:"name"`
	Contact  string `form:"contact"`
	Password string `form:"password"`
}

type PasswordChangeDTO struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type ContactRequestDTO struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}
