package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserHasRole(t *testing.T) {
	user := &User{Roles: []string{RoleUser}}
	librarian := &User{Roles: []string{RoleUser, RoleLibrarian}}

	assert.False(t, user.HasRole(RoleLibrarian, RoleAdmin))
	assert.True(t, librarian.HasRole(RoleLibrarian, RoleAdmin))
	assert.True(t, user.HasRole(RoleUser))
	assert.False(t, AnonymousUser.HasRole(RoleUser))
}

func TestPasswordSetAndMatches(t *testing.T) {
	var p password
	err := p.Set("pa55word123")
	assert.NoError(t, err)

	match, err := p.Matches("pa55word123")
	assert.NoError(t, err)
	assert.True(t, match)

	match, err = p.Matches("wrong password")
	assert.NoError(t, err)
	assert.False(t, match)
}
