package domain

// Role is the closed set of account roles. Only RoleAdmin carries privilege.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole normalizes a stored or claimed role. Anything that is not exactly
// "admin" is unprivileged.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// IsAdmin reports whether the role grants administrative access.
func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleUser:
		return false
	default:
		return false
	}
}

// PasswordScheme tags how an account's stored password value is verified.
type PasswordScheme string

const (
	// PasswordSchemeScrypt stores "<hex hash>.<salt>".
	PasswordSchemeScrypt PasswordScheme = "scrypt"
	// PasswordSchemeLegacy predates salted hashes; the account is checked against
	// the configured legacy password and should be migrated.
	PasswordSchemeLegacy PasswordScheme = "legacy"
)

// User is a CMS account stored in the users collection.
type User struct {
	Meta
	Username       string         `json:"username"`
	Email          string         `json:"email,omitempty"`
	DisplayName    string         `json:"display_name,omitempty"`
	Password       string         `json:"password,omitempty"`
	PasswordScheme PasswordScheme `json:"password_scheme,omitempty"`
	Role           Role           `json:"role"`
}

// Sanitized returns a copy without the stored password verification value.
func (u User) Sanitized() User {
	u.Password = ""
	u.PasswordScheme = ""
	return u
}
