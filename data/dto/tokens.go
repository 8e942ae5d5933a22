package dto

// CreateAuthenticationTokenRequestBody defines a request body for the
// CreateAuthenticationToken service.
type CreateAuthenticationTokenRequestBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateActivationTokenRequestBody defines a request body for the
// CreateActivationToken service.
type CreateActivationTokenRequestBody struct {
	Email string `json:"email"`
}
