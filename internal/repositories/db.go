package repositories

import (
	"fmt"
	"time"

	"github.com/rohits-web03/escapegame/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDatabase opens the postgres connection behind dsn. Slow queries and
// errors from gorm are reported through log.
func ConnectDatabase(dsn string, log logrus.FieldLogger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_URL is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Successfully connected to database")
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Party{},
		&models.Group{},
		&models.GroupMember{},
		&models.Challenge{},
		&models.ChallengeIllustration{},
		&models.ChallengeProgress{},
		&models.Message{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
