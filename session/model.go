package session

// Identity is the authenticated user's record as returned by the auth
// gateway. Opaque beyond equality and display; it carries no behavior.
// JSON field names match the persisted layout.
type Identity struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Session is the locally held proof of authentication. Token is never
// parsed by the client; it is relayed to the server as-is.
type Session struct {
	User  Identity
	Token string
}
