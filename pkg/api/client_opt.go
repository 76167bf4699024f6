package api

import "net/http"

type authOpt struct {
	value string
}

// OAuth2 sets a bearer-style Authorization header on the request.
func OAuth2(scheme, token string) *authOpt {
	return &authOpt{value: scheme + " " + token}
}

func (opt *authOpt) Do(client defaultClient, req *http.Request) {
	req.Header.Set("Authorization", opt.value)
}
