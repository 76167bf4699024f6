package middleware

import (
	"context"
	"strings"

	"github.com/questforge-lab/backend/pkg/authenticator"
	"github.com/questforge-lab/backend/pkg/errorx"
	"github.com/questforge-lab/backend/pkg/router"
	"github.com/questforge-lab/backend/pkg/xcontext"
)

// AuthVerifier resolves the caller identity from the Authorization header and
// puts the user id into the request context.
type AuthVerifier struct {
	useAccessToken  bool
	useTelegram     bool
	requireOperator bool
}

func NewAuthVerifier() *AuthVerifier {
	return &AuthVerifier{}
}

// WithAccessToken accepts our own signed access tokens with the Bearer
// scheme.
func (a *AuthVerifier) WithAccessToken() *AuthVerifier {
	a.useAccessToken = true
	return a
}

// WithTelegramInitData accepts signed telegram mini-app init data with the
// tma scheme.
func (a *AuthVerifier) WithTelegramInitData() *AuthVerifier {
	a.useTelegram = true
	return a
}

// WithOperatorRequired additionally requires the access token to carry the
// operator claim.
func (a *AuthVerifier) WithOperatorRequired() *AuthVerifier {
	a.requireOperator = true
	return a
}

func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		authorization := getAuthorization(ctx)
		if authorization == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		scheme, credentials, found := strings.Cut(authorization, " ")
		if !found {
			return nil, errorx.New(errorx.Unauthenticated, "Invalid authorization header")
		}

		switch {
		case a.useAccessToken && scheme == "Bearer":
			token, err := xcontext.TokenEngine(ctx).Verify(credentials)
			if err != nil {
				xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
				return nil, errorx.New(errorx.TokenExpired, "Invalid or expired access token")
			}

			if a.requireOperator && !token.IsOperator {
				return nil, errorx.New(errorx.PermissionDenied, "Only operators can call this API")
			}

			return xcontext.WithRequestUserID(ctx, token.ID), nil

		case a.useTelegram && scheme == "tma":
			botToken := xcontext.Configs(ctx).Telegram.BotToken
			userID, err := authenticator.VerifyTelegramInitData(credentials, botToken)
			if err != nil {
				xcontext.Logger(ctx).Debugf("Cannot verify telegram init data: %v", err)
				return nil, errorx.New(errorx.Unauthenticated, "Invalid telegram init data")
			}

			if a.requireOperator {
				return nil, errorx.New(errorx.PermissionDenied, "Only operators can call this API")
			}

			return xcontext.WithRequestUserID(ctx, userID), nil
		}

		return nil, errorx.New(errorx.Unauthenticated, "Unsupported authorization scheme")
	}
}

// getAuthorization reads the Authorization header, falling back to the token
// query parameter for websocket clients which cannot set headers.
func getAuthorization(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return ""
	}

	if authorization := req.Header.Get("Authorization"); authorization != "" {
		return authorization
	}

	if token := req.URL.Query().Get("token"); token != "" {
		return "Bearer " + token
	}

	return ""
}
