package data

import (
	"time"

	"github.com/odese/athenaeum/internal/validator"
)

// Token scopes.
const (
	ScopeActivation     = "activation"
	ScopeAuthentication = "authentication"
)

// Token holds the data for an individual stateful token. This includes the
// plaintext and hashed versions of the token, the associated user ID, expiry
// time and scope.
type Token struct {
	Plaintext string    `json:"token"`
	Hash      []byte    `json:"-"`
	UserID    int64     `json:"-"`
	Expiry    time.Time `json:"expiry"`
	Scope     string    `json:"-"`
}

func ValidateTokenPlaintext(v *validator.Validator, tokenPlaintext string) {
	v.Check(tokenPlaintext != "", "token", "must be provided")
	v.Check(len(tokenPlaintext) == 26, "token", "must be 26 bytes long")
}
