package data

// Role names granted to users. Every registered user holds RoleUser;
// RoleLibrarian and RoleAdmin are assigned administratively.
const (
	RoleUser      = "USER"
	RoleLibrarian = "LIBRARIAN"
	RoleAdmin     = "ADMIN"
)

// AllRoles lists every role the system knows about, in seed order.
var AllRoles = []string{RoleUser, RoleLibrarian, RoleAdmin}
