package db

import (
	"fmt"

	"github.com/junggyeol4444/aiu/db/models"
	"gorm.io/gorm"
)

func AutoMigrate(gdb *gorm.DB) error {
	if gdb == nil {
		return fmt.Errorf("nil gorm db")
	}
	return gdb.AutoMigrate(
		&models.BroadcastSession{},
		&models.TranscriptLine{},
	)
}
