package services

import "github.com/SAP-F-2025/user-admin-service/internal/models"

// CreateUserResult is either CreateUserSuccess or CreateUserFailure
type CreateUserResult interface {
	isCreateUserResult()
}

// CreateUserSuccess holds the profile row written for the new account
type CreateUserSuccess struct {
	User *models.User
}

// CreateUserFailure holds the cause and the message shown to the operator
type CreateUserFailure struct {
	Err     error
	Message string
}

func (CreateUserSuccess) isCreateUserResult() {}
func (CreateUserFailure) isCreateUserResult() {}

func (f CreateUserFailure) Error() string {
	return f.Message
}

func (f CreateUserFailure) Unwrap() error {
	return f.Err
}
