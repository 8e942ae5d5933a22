package dto

// RegisterUserRequestBody defines a request body for the RegisterUser service.
type RegisterUserRequestBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ActivateUserRequestBody defines a request body for the ActivateUser service.
type ActivateUserRequestBody struct {
	TokenPlaintext string `json:"token"`
}
