package ports

// Credentials are the two provider secrets.
type Credentials struct {
	TextAPIKey  string
	ImageAPIKey string
}

// SecretSource reads provider credentials; implementations consult the
// process environment on every call.
type SecretSource interface {
	Credentials() Credentials
}
