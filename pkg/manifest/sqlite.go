package manifest

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/logging"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// entryRecord is the persisted row.
type entryRecord struct {
	Path      string    `gorm:"primaryKey;column:path"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (entryRecord) TableName() string {
	return "manifest_entries"
}

// SQLStore is a Store backed by sqlite through GORM.
type SQLStore struct {
	db *gorm.DB
}

var _ Store = (*SQLStore)(nil)

// Open opens (creating if needed) the manifest database at path.
func Open(path string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStore, "failed to create manifest directory for %s", path)
	}
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	return openDSN(dsn)
}

// OpenMemory opens a private in-memory manifest, used by tests.
func OpenMemory() (*SQLStore, error) {
	return openDSN(":memory:")
}

func openDSN(dsn string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStore, "failed to open manifest database")
	}
	return New(db)
}

// New wraps an open GORM handle and migrates the schema.
func New(db *gorm.DB) (*SQLStore, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStore, "failed to access manifest database")
	}
	// sqlite allows a single writer; one connection also keeps :memory:
	// databases from splitting across connections.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&entryRecord{}); err != nil {
		return nil, errors.Wrap(err, errors.ErrStore, "failed to migrate manifest schema")
	}
	return &SQLStore{db: db}, nil
}

func validateKey(key Key, allowEmpty bool) error {
	if len(key) == 0 && !allowEmpty {
		return errors.New(errors.ErrInvalidInput, "manifest key is empty")
	}
	for _, seg := range key {
		if seg == "" || strings.Contains(seg, separator) {
			return errors.Newf(errors.ErrInvalidInput, "invalid manifest key segment %q", seg).
				WithDetail("key", key.String())
		}
	}
	return nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, key Key) (string, bool, error) {
	if err := validateKey(key, false); err != nil {
		return "", false, err
	}

	var rec entryRecord
	err := s.db.WithContext(ctx).Where("path = ?", key.path()).First(&rec).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrStore, "failed to read %s", key)
	}
	return rec.Value, true, nil
}

// Set implements Store.
func (s *SQLStore) Set(ctx context.Context, key Key, value string) error {
	if err := validateKey(key, false); err != nil {
		return err
	}

	rec := entryRecord{Path: key.path(), Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return errors.Wrapf(err, errors.ErrStore, "failed to write %s", key)
	}

	logger := logging.GetLogger("manifest")
	logger.Trace().Str("key", key.String()).Msg("Stored manifest entry")
	return nil
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, key Key) (bool, error) {
	if err := validateKey(key, false); err != nil {
		return false, err
	}

	res := s.db.WithContext(ctx).Where("path = ?", key.path()).Delete(&entryRecord{})
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, errors.ErrStore, "failed to delete %s", key)
	}
	return res.RowsAffected > 0, nil
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context, prefix Key) ([]Entry, error) {
	if err := validateKey(prefix, true); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Order("path")
	if len(prefix) > 0 {
		p := prefix.path()
		// children of p sort in [p+"\x1f", p+"\x20")
		q = q.Where("path >= ? AND path < ?", p+separator, p+"\x20")
	}

	var recs []entryRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, errors.Wrapf(err, errors.ErrStore, "failed to list %s", prefix)
	}

	entries := make([]Entry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, Entry{Key: parsePath(rec.Path), Value: rec.Value})
	}
	return entries, nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, errors.ErrStore, "failed to access manifest database")
	}
	if err := sqlDB.Close(); err != nil {
		return errors.Wrap(err, errors.ErrStore, "failed to close manifest database")
	}
	return nil
}
