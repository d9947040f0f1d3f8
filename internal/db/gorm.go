package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hivemark/hivemark-back/internal/config"
)

// Role is the closed set of collaborator roles on a category. The empty
// value means "no role".
type Role string

const (
	RoleNone   Role = ""
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleReader Role = "reader"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleReader:
		return true
	}
	return false
}

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		GormForkedModel
		Username     string `gorm:"unique;not null"`
		Email        string `gorm:"unique;not null"`
		PasswordHash string `gorm:"not null"`
		Token        string `gorm:"not null"`

		Verified          bool `gorm:"not null;default:false"`
		VerificationToken *string
		ResetToken        *string `gorm:"unique"`
		ResetSentAt       *time.Time

		Bookmarks  []Bookmark `gorm:"constraint:OnDelete:CASCADE"`
		Categories []Category `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	}

	// Category ownership lives in OwnerID; the matching owner row in
	// category_collaborators is maintained by the same transactions that
	// create categories or transfer ownership, never written independently.
	Category struct {
		GormForkedModel
		Name       string  `gorm:"not null;uniqueIndex:uidx_name_owner_id"`
		OwnerID    uint64  `gorm:"not null;uniqueIndex:uidx_name_owner_id"`
		Owner      User    `gorm:"foreignKey:OwnerID"`
		IsPublic   bool    `gorm:"not null;default:false"`
		ShareToken *string `gorm:"unique"`

		Collaborators []CategoryCollaborator `gorm:"constraint:OnDelete:CASCADE"`
		Bookmarks     []Bookmark             `gorm:"constraint:OnDelete:CASCADE"`
	}

	CategoryCollaborator struct {
		UserID     uint64 `gorm:"primaryKey;autoIncrement:false"`
		CategoryID uint64 `gorm:"primaryKey;autoIncrement:false"`
		Role       Role   `gorm:"not null"`
	}

	Bookmark struct {
		GormForkedModel
		URL      string `gorm:"not null"`
		Body     *string
		ShortURL *string
		Visits   uint64 `gorm:"not null;default:0"`

		UserID     uint64 `gorm:"not null"`
		User       User
		CategoryID *uint64
		Category   *Category
	}
)

func NewGormClient(cfg *config.Config) (*gorm.DB, error) {
	newLogger := logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Info,
		Colorful:                  true,
		IgnoreRecordNotFoundError: false,
	})

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return errors.Wrap(err, "migrate user")
	}
	if err := db.AutoMigrate(&Category{}); err != nil {
		return errors.Wrap(err, "migrate category")
	}
	if err := db.AutoMigrate(&CategoryCollaborator{}); err != nil {
		return errors.Wrap(err, "migrate category collaborator")
	}
	if err := db.AutoMigrate(&Bookmark{}); err != nil {
		return errors.Wrap(err, "migrate bookmark")
	}
	return nil
}
