// Package db owns the embedded per-workspace database. Exactly one Store is
// open per process at a time; workspace switching closes the old Store before
// a new one is created.
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"workdeck/apperr"
	"workdeck/logutils"
	"workdeck/models"

	_ "modernc.org/sqlite" // Use pure Go SQLite driver (no CGO required)
)

// Store wraps the single database connection of the active workspace.
type Store struct {
	orm  *gorm.DB
	sql  *sql.DB
	path string
}

// Open opens (or creates) the database file at dbPath, applies the schema and
// seeds the built-in directory types. Opening an existing database is
// idempotent: the schema apply is additive and seeding is insert-if-absent.
func Open(dbPath string) (*Store, error) {
	config := &gorm.Config{
		Logger:      logger.Default.LogMode(logger.Silent),
		PrepareStmt: true, // Cache prepared statements for better performance
	}

	// Open SQLite connection using modernc.org/sqlite (pure Go, no CGO).
	// DSN parameters for proper datetime handling and lock waiting.
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_time_format=sqlite"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %w", apperr.ErrPersistence, err)
	}

	orm, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, config)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: connect to database: %w", apperr.ErrPersistence, err)
	}

	// WAL mode with NORMAL sync is the fast-and-safe combination for a
	// single-process SQLite database.
	if err := orm.Exec("PRAGMA journal_mode = WAL;").Error; err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: enable WAL mode: %w", apperr.ErrPersistence, err)
	}
	if err := orm.Exec("PRAGMA synchronous = NORMAL;").Error; err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: set synchronous mode: %w", apperr.ErrPersistence, err)
	}

	// SQLite only supports one writer at a time; a pool of one also keeps
	// every statement serialized without a lock of our own.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := orm.AutoMigrate(
		&models.WorkspaceMeta{},
		&models.Project{},
		&models.GitRepository{},
		&models.DirectoryType{},
		&models.ProjectDirectory{},
	); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: migrate database: %w", apperr.ErrPersistence, err)
	}

	s := &Store{orm: orm, sql: sqlDB, path: dbPath}
	if err := s.seedDirectoryTypes(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	logutils.Log.WithField("path", dbPath).Debug("workspace database opened")
	return s, nil
}

// builtinDirectoryTypes are seeded once per workspace, keyed by kind.
var builtinDirectoryTypes = []models.DirectoryType{
	{Kind: models.DirKindCode, Name: "Code", Category: "code", SortOrder: 1},
	{Kind: models.DirKindDocs, Name: "Docs", Category: "docs", SortOrder: 2},
	{Kind: models.DirKindUIDesign, Name: "UI Design", Category: "ui_design", SortOrder: 3},
	{Kind: models.DirKindProjectPlanning, Name: "Project Planning", Category: "project_planning", SortOrder: 4},
}

func (s *Store) seedDirectoryTypes() error {
	now := time.Now()
	for _, seed := range builtinDirectoryTypes {
		seed.ID = uuid.NewString()
		seed.CreatedAt = now
		seed.UpdatedAt = now

		var row models.DirectoryType
		err := s.orm.Where("kind = ?", seed.Kind).Attrs(seed).FirstOrCreate(&row).Error
		if err != nil {
			return fmt.Errorf("%w: seed directory type %s: %w", apperr.ErrPersistence, seed.Kind, err)
		}
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close releases the underlying connection. The Store must not be used
// afterwards.
func (s *Store) Close() error {
	if err := s.sql.Close(); err != nil {
		return fmt.Errorf("%w: close database: %w", apperr.ErrPersistence, err)
	}
	return nil
}
