package ctxkey

const (
	// Id is the authenticated user id for the current request.
	// Set in: middleware/auth (session or bearer token).
	Id = "id"

	// Username is the authenticated username.
	Username = "username"

	// Role is the authenticated user role (common/admin/root).
	Role = "role"
)
