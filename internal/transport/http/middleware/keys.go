package middleware

// gin.Context keys shared with the action layer.
const (
	KeyUserID = "userId"
	KeyRole   = "role"
	KeyScope  = "scope"
	KeyClaims = "claims"
	KeyRID    = "rid"
)
