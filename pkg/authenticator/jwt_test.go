package authenticator_test

import (
	"testing"
	"time"

	"github.com/questforge-lab/backend/config"
	"github.com/questforge-lab/backend/pkg/authenticator"
	"github.com/stretchr/testify/require"
)

type claims struct {
	Name string `json:"name"`
}

func TestJWT(t *testing.T) {
	engine := authenticator.NewTokenEngine[claims](config.AuthConfigs{
		TokenSecret: "secret",
		AccessToken: config.TokenConfigs{Expiration: time.Minute},
	})

	token, err := engine.Generate("user1", claims{Name: "foo"})
	require.NoError(t, err)

	obj, err := engine.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "foo", obj.Name)
}

func TestJWTExpiration(t *testing.T) {
	engine := authenticator.NewTokenEngine[claims](config.AuthConfigs{
		TokenSecret: "secret",
		AccessToken: config.TokenConfigs{Expiration: -time.Minute},
	})

	token, err := engine.Generate("user1", claims{Name: "foo"})
	require.NoError(t, err)

	_, err = engine.Verify(token)
	require.Error(t, err)
}

func TestJWTWrongSecret(t *testing.T) {
	engine := authenticator.NewTokenEngine[claims](config.AuthConfigs{
		TokenSecret: "secret",
		AccessToken: config.TokenConfigs{Expiration: time.Minute},
	})

	other := authenticator.NewTokenEngine[claims](config.AuthConfigs{
		TokenSecret: "another-secret",
		AccessToken: config.TokenConfigs{Expiration: time.Minute},
	})

	token, err := engine.Generate("user1", claims{Name: "foo"})
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.Error(t, err)
}
