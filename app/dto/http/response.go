package http

import (
	"time"

	"github.com/vibast-solutions/ms-go-users/app/entity"
)

type RegisterResponse struct {
	ActivationToken string    `json:"activation_token"`
	ExpiresAt       time.Time `json:"expires_at"`
	Message         string    `json:"message"`
}

type ActivateResponse struct {
	User    *UserResponse `json:"user"`
	Message string        `json:"message"`
}

type LoginResponse struct {
	User         *UserResponse `json:"user"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int64         `json:"expires_in"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}

type UserResponse struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	PhoneNumber string          `json:"phone_number"`
	Address     *string         `json:"address,omitempty"`
	Avatar      *AvatarResponse `json:"avatar,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type AvatarResponse struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

type ListUsersResponse struct {
	Users []*UserResponse `json:"users"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewUserResponse strips the password hash and flattens optional columns.
func NewUserResponse(user *entity.User) *UserResponse {
	if user == nil {
		return nil
	}

	res := &UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
	if user.Address.Valid {
		address := user.Address.String
		res.Address = &address
	}
	if user.Avatar != nil {
		res.Avatar = &AvatarResponse{
			PublicID: user.Avatar.PublicID,
			URL:      user.Avatar.URL,
		}
	}
	return res
}

func NewListUsersResponse(users []*entity.User) *ListUsersResponse {
	res := &ListUsersResponse{Users: make([]*UserResponse, 0, len(users))}
	for _, user := range users {
		res.Users = append(res.Users, NewUserResponse(user))
	}
	return res
}
