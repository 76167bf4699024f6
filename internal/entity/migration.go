package entity

import "time"

// Migration tracks the schema version of the archive database.
type Migration struct {
	Version   int `gorm:"primaryKey"`
	CreatedAt time.Time
}
