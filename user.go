package blog

// Identity is the authenticated identity reported by /api/current-user/.
type Identity struct {
	Username string `json:"username"`
	Team     string `json:"team"`
}

// TokenPair is the response of POST /api/token/.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Team     string `json:"team,omitempty"`
}
