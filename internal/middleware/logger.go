package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/questforge-lab/backend/pkg/errorx"
	"github.com/questforge-lab/backend/pkg/router"
	"github.com/questforge-lab/backend/pkg/xcontext"
)

func Logger(env string) router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		if req == nil {
			return
		}

		info := fmt.Sprintf("%s | %s", req.Method, req.URL.Path)
		if startTime := xcontext.StartTime(ctx); !startTime.IsZero() {
			info = fmt.Sprintf("%s | %v", info, time.Since(startTime))
		}

		if err := xcontext.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				xcontext.Logger(ctx).Warnf("%s | %d", info, errx.Code)
			} else {
				xcontext.Logger(ctx).Errorf("%s | %d", info, -1)
			}
		} else if env == "local" {
			xcontext.Logger(ctx).Infof(info)
		}
	}
}
