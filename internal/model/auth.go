package model

// AccessToken is the claim object carried inside api tokens.
type AccessToken struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsOperator bool   `json:"is_operator"`
}
