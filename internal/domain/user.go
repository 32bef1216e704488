package domain

// User is a stored account, kept as a user:<name> entity.
type User struct {
	Username  string   `json:"username"`
	Role      UserRole `json:"role"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// CreateUserRequest creates a new account.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// UpdateUserRequest changes the password and/or role of an account.
// Empty fields are left untouched.
type UpdateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
}

// DeleteUserRequest removes an account.
type DeleteUserRequest struct {
	Username string `json:"username"`
}

// LoginRequest authenticates an account.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the authenticated identity.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
