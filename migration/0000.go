package migration

import (
	"context"

	"github.com/questforge-lab/backend/internal/entity"
	"github.com/questforge-lab/backend/pkg/xcontext"
)

// migrate0000 creates the archive tables with the latest schema.
func migrate0000(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.Quest{},
		&entity.QuestCompletion{},
	)
}
