// Package gallery stores saved expressions in a SQLite database.
package gallery

import (
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/zeebo/blake3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/soft_delete"

	"github.com/zephyrtronium/picasso"
)

// ErrNotFound is returned for a gallery entry that does not exist or has been
// deleted.
var ErrNotFound = errors.New("gallery: no such entry")

// Entry is a saved expression.
type Entry struct {
	ID    int64  `json:"id" gorm:"primarykey"`
	Title string `json:"title"`
	// Expr is the expression source as it was saved.
	Expr string `json:"expr"`
	// Hash identifies the parsed expression, so sources that differ only in
	// spacing or redundant brackets share it. At most one live entry has a
	// given hash.
	Hash      string `json:"hash" gorm:"index:idx_live_hash,unique,where:deleted = 0"`
	CreatedAt int64  `json:"created_at"`
	/* 0 false 1 true */
	Deleted soft_delete.DeletedAt `json:"-" gorm:"softDelete:flag;default:0"`
}

func (Entry) TableName() string {
	return "gallery_entry"
}

// Store is a gallery backed by a database. It is safe for concurrent use.
type Store struct {
	db *gorm.DB
	// saving serializes Save so that concurrent writers do not contend for
	// the database lock.
	saving sync.Mutex
	// Images, if not nil, allows saved expressions to sample images.
	Images picasso.ImageLoader
}

// Open opens or creates the gallery database at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// Save validates and stores an expression. If an equivalent expression is
// already saved, Save returns the existing entry instead. Invalid expressions
// are reported with the error from picasso.Parse.
func (s *Store) Save(title, expr string) (*Entry, error) {
	e, err := picasso.Parse(expr, picasso.WithImages(s.Images))
	if err != nil {
		return nil, err
	}
	ent := Entry{
		Title:     title,
		Expr:      expr,
		Hash:      Hash(e),
		CreatedAt: time.Now().Unix(),
	}
	s.saving.Lock()
	defer s.saving.Unlock()
	var found *Entry
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var old Entry
		err := tx.Where("`hash` = ?", ent.Hash).First(&old).Error
		if err == nil {
			found = &old
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&ent).Error
	})
	if err != nil {
		// Another process may have saved the same expression between our
		// lookup and insert. The unique index rejects the second row.
		var old Entry
		if s.db.Where("`hash` = ?", ent.Hash).First(&old).Error == nil {
			return &old, nil
		}
		return nil, err
	}
	if found != nil {
		return found, nil
	}
	return &ent, nil
}

// List returns up to limit entries, most recent first. A non-positive limit
// lists every entry.
func (s *Store) List(limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	var items []*Entry
	if err := s.db.Model(&Entry{}).Order("`id` desc").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns the entry with the given ID.
func (s *Store) Get(id int64) (*Entry, error) {
	var ent Entry
	if err := s.db.First(&ent, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ent, nil
}

// Delete removes the entry with the given ID from the gallery.
func (s *Store) Delete(id int64) error {
	r := s.db.Delete(&Entry{}, id)
	if r.Error != nil {
		return r.Error
	}
	if r.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Hash returns the gallery hash of a parsed expression.
func Hash(e *picasso.Expr) string {
	h := blake3.Sum256([]byte(e.String()))
	return hex.EncodeToString(h[:])
}
