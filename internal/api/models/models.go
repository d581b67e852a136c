package models

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

// User is the wire representation of a directory user.
type User struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// MessageResponse carries a human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateUserResponse is returned by POST /users.
type CreateUserResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// UserResponse is returned by GET /users/:id.
type UserResponse struct {
	User User `json:"user"`
}

// UserListResponse is returned by GET /users.
type UserListResponse struct {
	Users []User `json:"users"`
}
