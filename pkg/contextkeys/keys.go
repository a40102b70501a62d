package contextkeys

type contextKey string

const (
	UserIDKey   contextKey = "userID"
	ClientIDKey contextKey = "clientID"
)
