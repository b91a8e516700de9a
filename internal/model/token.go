package model

// TokenManager generates and validates access/refresh tokens. The two kinds
// are signed with distinct secrets so possession of one kind can never forge
// the other.
type TokenManager interface {
	GenerateAccessToken(userID, sessionID string) (string, error)
	GenerateRefreshToken(userID, sessionID string) (string, error)
	ParseAccessToken(token string) (TokenClaims, error)
	ParseRefreshToken(token string) (TokenClaims, error)
}

// TokenClaims is the payload embedded in both token kinds.
type TokenClaims struct {
	UserID    string
	SessionID string
}

// TokenPair is the result of every issuance and rotation.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
