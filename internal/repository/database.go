// File: internal/repository/database.go
package repository

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/iyunix/go-gptchat/internal/domain"
	"github.com/iyunix/go-gptchat/internal/repository/chat"
	"github.com/iyunix/go-gptchat/internal/repository/customgpt"
	"github.com/iyunix/go-gptchat/internal/repository/message"
	"github.com/iyunix/go-gptchat/internal/repository/user"
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// DatabaseConfig selects Postgres when URL is set and SQLite at SQLitePath otherwise.
type DatabaseConfig struct {
	URL        string
	SQLitePath string
	LogQueries bool
}

// Open connects to the configured database and migrates every table.
func Open(cfg DatabaseConfig) (*gorm.DB, error) {
	dialector := sqlite.Open(cfg.SQLitePath)
	if cfg.URL != "" {
		dialector = postgres.Open(cfg.URL)
	}

	logLevel := gormlogger.Silent
	if cfg.LogQueries {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.URL == "" {
		// SQLite allows a single writer.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}, &domain.Chat{}, &domain.Message{}, &domain.CustomGPT{}); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// Repositories bundles the gorm-backed stores over one connection.
type Repositories struct {
	Users      user.UserRepository
	Chats      chat.ChatRepository
	Messages   message.MessageRepository
	CustomGPTs customgpt.CustomGPTRepository
}

func NewRepositories(db *gorm.DB, logger Logger) *Repositories {
	return &Repositories{
		Users:      user.NewGormUserRepository(db, logger),
		Chats:      chat.NewChatRepository(db, logger),
		Messages:   message.NewMessageRepository(db, logger),
		CustomGPTs: customgpt.NewCustomGPTRepository(db, logger),
	}
}
