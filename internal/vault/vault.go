// Package vault is the storage collaborator: a SQLite database holding
// vendors, reference questionnaires and settings, gated behind a master
// password. There is no ambient global connection; Unlock returns an
// explicit Session handle and everything runs through it, so "locked" is
// simply the absence of a live Session.
package vault

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BriarPort/TILT/internal/auth"
)

const (
	dbFileName  = "tilt.db"
	keyFileName = ".tilt_key"

	// MinPasswordLength is enforced when the master password is first set
	// or changed.
	MinPasswordLength = 8
)

// ErrInvalidPassword is returned when the supplied master password does not
// match the stored hash. Callers map it to an authentication failure rather
// than an internal error.
var ErrInvalidPassword = errors.New("invalid password")

// ErrWeakPassword is returned when a new master password is shorter than
// MinPasswordLength.
var ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

// Config locates the vault on disk.
type Config struct {
	DataDir string
}

func (c Config) dbPath() string  { return filepath.Join(c.DataDir, dbFileName) }
func (c Config) keyPath() string { return filepath.Join(c.DataDir, keyFileName) }

// NeedsPassword reports whether this is a first-time setup: no password
// hash exists yet and the next Unlock will set one.
func NeedsPassword(cfg Config) bool {
	_, err := os.Stat(cfg.keyPath())
	return os.IsNotExist(err)
}

// Session is the handle to an unlocked vault. All repository operations
// hang off it; holding a Session is the capability to touch storage.
type Session struct {
	db     *gorm.DB
	cfg    Config
	logger *slog.Logger
}

// Unlock verifies the master password and opens the vault, migrating the
// schema and seeding reference data on first use. When no password has been
// set yet the supplied one becomes the master password (minimum 8
// characters).
func Unlock(cfg Config, password string, log *slog.Logger) (*Session, error) {
	if password == "" {
		return nil, fmt.Errorf("password required")
	}
	if log == nil {
		log = slog.Default()
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	stored, err := os.ReadFile(cfg.keyPath())
	switch {
	case err == nil:
		ok, verr := auth.VerifyPassword(password, strings.TrimSpace(string(stored)))
		if verr != nil {
			return nil, fmt.Errorf("verifying password: %w", verr)
		}
		if !ok {
			return nil, ErrInvalidPassword
		}

	case os.IsNotExist(err):
		// First unlock sets the master password.
		if len(password) < MinPasswordLength {
			return nil, ErrWeakPassword
		}
		hash, herr := auth.HashPassword(password)
		if herr != nil {
			return nil, fmt.Errorf("hashing password: %w", herr)
		}
		if werr := os.WriteFile(cfg.keyPath(), []byte(hash), 0o600); werr != nil {
			return nil, fmt.Errorf("storing password hash: %w", werr)
		}
		log.Info("master password set", "path", cfg.keyPath())

	default:
		return nil, fmt.Errorf("reading password hash: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.dbPath()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.AutoMigrate(&Vendor{}, &Question{}, &CloudCriterion{}, &Setting{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	s := &Session{db: db, cfg: cfg, logger: log}
	if err := s.seedDefaults(); err != nil {
		return nil, fmt.Errorf("seeding reference data: %w", err)
	}

	return s, nil
}

// ChangePassword re-verifies the current master password and stores a new
// hash. The session stays valid.
func (s *Session) ChangePassword(oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("both old and new passwords required")
	}
	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	stored, err := os.ReadFile(s.cfg.keyPath())
	if err != nil {
		return fmt.Errorf("reading password hash: %w", err)
	}
	ok, err := auth.VerifyPassword(oldPassword, strings.TrimSpace(string(stored)))
	if err != nil {
		return fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return ErrInvalidPassword
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing new password: %w", err)
	}
	if err := os.WriteFile(s.cfg.keyPath(), []byte(hash), 0o600); err != nil {
		return fmt.Errorf("storing new password hash: %w", err)
	}

	s.logger.Info("master password changed")
	return nil
}

// Close releases the underlying database connection.
func (s *Session) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("retrieving connection: %w", err)
	}
	return sqlDB.Close()
}
