package user

// User is a read-only mirror of the auth service's user directory, kept
// here only to resolve actor ids to displayable identities.
type User struct {
	ID       int64
	Username string
}
