package models

// CreateUserRequest is the payload of POST /api/auth/create-user
type CreateUserRequest struct {
	Email        string   `json:"email" validate:"required,email,max=255"`
	Password     string   `json:"password" validate:"required,min=6,max=72"`
	FullName     string   `json:"full_name" validate:"omitempty,max=100"`
	Role         UserRole `json:"role" validate:"required,user_role"`
	Program      string   `json:"program" validate:"omitempty,max=255"`
	OtherProgram string   `json:"other_program" validate:"omitempty,max=255"`
}

// UpdateRoleRequest is the payload of PUT /api/users/:id/role
type UpdateRoleRequest struct {
	Role UserRole `json:"role" validate:"required,user_role"`
}

// CreateUserResponse is the uniform result of the create-user endpoint
type CreateUserResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UserView decorates a user with presentation fields
type UserView struct {
	*User
	Initials   string `json:"initials"`
	BadgeClass string `json:"badge_class"`
	CreatedOn  string `json:"created_on"`
}

type UserListResponse struct {
	Users []*UserView `json:"users"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

type ArchivedUserListResponse struct {
	Users []*ArchivedUser `json:"users"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
