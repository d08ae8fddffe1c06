package domain

type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderLocal  Provider = "local"
)

// AuthPayload is the claim set carried by access tokens.
type AuthPayload struct {
	Subject  string `json:"sub"`
	Username string `json:"username"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// Credentials is what a provider needs to authenticate a user.
type Credentials struct {
	UserName string
	Password string
	GoogleID string
	Email    string
}
