package database

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"maint-logbook/internal/config"
	"maint-logbook/internal/models"

	"github.com/glebarez/sqlite"
	gomysql "github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const retryDelay = 2 * time.Second

// Dialector picks the gorm driver for the configured database.
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN), nil
	case config.DriverMySQL:
		mc, err := gomysql.ParseDSN(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		// date columns must come back as time.Time
		mc.ParseTime = true
		mc.Loc = time.UTC
		return mysql.Open(mc.FormatDSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// Open connects with retries; the database container may still be starting.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
	if cfg.LogQueries {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var db *gorm.DB
	for i := 1; i <= attempts; i++ {
		slog.Info("db.connect", "driver", cfg.Driver, "attempt", i, "max_attempts", attempts)

		db, err = gorm.Open(dialector, gormCfg)
		if err == nil {
			break
		}

		slog.Warn("db.connect.failed", "attempt", i, "err", err)
		if i < attempts {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to db after %d attempts: %w", attempts, err)
	}

	if cfg.Driver == config.DriverSQLite {
		// one connection: ":memory:" is per-connection and sqlite has a single writer anyway
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	slog.Info("db.connected", "driver", cfg.Driver)
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Equipment{},
		&models.EquipmentPart{},
		&models.EquipmentInspection{},
		&models.ConstructionProject{},
		&models.InspectionTemplate{},
		&models.InspectionTemplateItem{},
		&models.MeasurementField{},
		&models.ConstructionReport{},
		&models.InspectionResult{},
		&models.Measurement{},
		&models.DailyLog{},
		&models.DailyLogEntry{},
		&models.CirculationRoute{},
		&models.CirculationRouteMember{},
		&models.Circulation{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SeedAdmin creates the configured administrator unless an admin already exists.
func SeedAdmin(db *gorm.DB, admin config.AdminConfig) error {
	var count int64
	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if count > 0 {
		// админ уже есть, ничего не делаем
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		return errors.New("admin email and password are required")
	}

	user, err := CreateUser(db, email, admin.FullName, admin.Password, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}

	slog.Info("db.seed.admin", "email", user.Email, "id", user.ID)
	return nil
}

// CreateUser hashes the password and inserts the user row.
func CreateUser(db *gorm.DB, email, fullName, password string, role models.UserRole) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
