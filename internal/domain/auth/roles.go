package auth

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// UserContext is the authenticated caller attached to a request.
type UserContext struct {
	UserID string
	Email  string
	Role   string
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleViewer
}
