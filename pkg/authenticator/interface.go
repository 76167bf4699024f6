package authenticator

// TokenEngine signs and verifies tokens carrying a typed claim object.
type TokenEngine[T any] interface {
	Generate(sub string, obj T) (string, error)
	Verify(token string) (T, error)
}
