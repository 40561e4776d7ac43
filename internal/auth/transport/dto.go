// Package transport defines the request and response shapes for the auth
// module.
package transport

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=10"`
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=staff admin"`
}

type UpdateMeRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=10"`
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=staff admin"`
}

type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}
