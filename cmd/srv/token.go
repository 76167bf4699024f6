package main

import (
	"fmt"

	"github.com/questforge-lab/backend/internal/model"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startToken(cctx *cli.Context) error {
	userID := cctx.String("user")

	token, err := xcontext.TokenEngine(s.ctx).Generate(userID, model.AccessToken{
		ID:         userID,
		Name:       userID,
		IsOperator: cctx.Bool("operator"),
	})
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
