package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDatabase opens the database named by DatabaseURI and performs automatic
// migrations. A DSN containing "@tcp(" selects the MySQL driver; anything else
// is treated as a SQLite file path.
func InitDatabase(modelDefs ...interface{}) *gorm.DB {
	if db != nil {
		return db
	}

	cfg := Get()

	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gormCfg := &gorm.Config{
		Logger:                                   gLogger,
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	var err error
	if strings.Contains(cfg.DatabaseURI, "@tcp(") {
		db, err = gorm.Open(mysql.Open(cfg.DatabaseURI), gormCfg)
	} else {
		if dir := filepath.Dir(cfg.DatabaseURI); dir != "" && dir != "." {
			if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
				log.Fatalf("failed to create database directory: %v", mkErr)
			}
		}
		db, err = gorm.Open(sqlite.Open(cfg.DatabaseURI), gormCfg)
	}
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("database ping failed: %v", err)
	}

	for _, model := range modelDefs {
		if err := db.AutoMigrate(model); err != nil {
			log.Printf("auto migration failed for %T: %v", model, err)
		}
	}

	return db
}

// SeedAdminPassword inserts the hashed default admin password when no
// admin_password settings row exists yet. Subsequent boots leave the stored
// value untouched.
func SeedAdminPassword(database *gorm.DB, plaintext string) error {
	type setting struct {
		Key   string `gorm:"primaryKey;column:key"`
		Value string `gorm:"column:value"`
	}

	var existing setting
	err := database.Table("settings").Where("key = ?", "admin_password").First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return database.Table("settings").Create(&setting{Key: "admin_password", Value: string(hash)}).Error
}

// toGormLogLevel maps application LogLevel to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "warn", "info", "":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}

// DB provides access to the initialized gorm DB instance.
func DB() *gorm.DB {
	if db == nil {
		log.Fatal("database not initialized, call InitDatabase first")
	}
	return db
}

// SetDB replaces the cached database handle. Intended for tests.
func SetDB(d *gorm.DB) {
	db = d
}
