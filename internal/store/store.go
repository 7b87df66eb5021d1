package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	greetingID     = 1
	notificationID = 1
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// Tx is the set of reads and writes available inside one unit of work.
type Tx interface {
	Greeting() (GreetingSettings, error)
	SaveGreeting(g *GreetingSettings) error

	Buttons() ([]MenuButton, error)
	ActiveButtons() ([]MenuButton, error)
	Button(id uint) (MenuButton, error)
	MaxButtonOrder() (int, bool, error)
	CreateButton(b *MenuButton) error
	SaveButton(b *MenuButton) error

	CreateSubmission(s *FormSubmission) error
	CountSubmissions() (int64, error)
	SubmissionsSince(since time.Time) ([]FormSubmission, error)

	NotificationSettings() (NotificationSettings, error)
	SaveNotificationSettings(n *NotificationSettings) error
}

// UnitOfWork opens a transaction, hands it to fn and commits when fn returns
// nil. Any error or panic rolls the transaction back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx Tx) error) error
}

type Store struct {
	db *gorm.DB
}

// Open connects to DATABASE_URL style DSNs: sqlite://path or postgres://...
func Open(dsn string) (*Store, error) {
	dialector, isSQLite, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.New(log.Default(), logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if isSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sql handle: %w", err)
		}
		// sqlite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}
	return &Store{db: db}, nil
}

// SupportedDSN reports whether Open understands the scheme of dsn.
func SupportedDSN(dsn string) bool {
	_, _, err := dialectorFor(dsn)
	return err == nil
}

func dialectorFor(dsn string) (gorm.Dialector, bool, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		// sqlite:///bot.db is relative, sqlite:////var/bot.db is absolute.
		path = strings.TrimPrefix(path, "/")
		if path == "" {
			return nil, false, fmt.Errorf("empty sqlite path in %q", dsn)
		}
		return sqlite.Open(sqlitePragmas(path)), true, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), false, nil
	default:
		return nil, false, fmt.Errorf("unsupported database url %q", dsn)
	}
}

func sqlitePragmas(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&GreetingSettings{},
		&MenuButton{},
		&FormSubmission{},
		&NotificationSettings{},
	)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Do(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&gormTx{db: db})
	})
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) Greeting() (GreetingSettings, error) {
	var g GreetingSettings
	err := t.db.Limit(1).Find(&g, greetingID).Error
	if err != nil {
		return GreetingSettings{}, fmt.Errorf("load greeting: %w", err)
	}
	g.ID = greetingID
	return g, nil
}

func (t *gormTx) SaveGreeting(g *GreetingSettings) error {
	g.ID = greetingID
	if err := t.db.Save(g).Error; err != nil {
		return fmt.Errorf("save greeting: %w", err)
	}
	return nil
}

func (t *gormTx) Buttons() ([]MenuButton, error) {
	var out []MenuButton
	if err := t.db.Order("sort_order, id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list buttons: %w", err)
	}
	return out, nil
}

func (t *gormTx) ActiveButtons() ([]MenuButton, error) {
	var out []MenuButton
	if err := t.db.Where("active = ?", true).Order("sort_order, id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list active buttons: %w", err)
	}
	return out, nil
}

func (t *gormTx) Button(id uint) (MenuButton, error) {
	var b MenuButton
	err := t.db.First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return MenuButton{}, fmt.Errorf("button %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return MenuButton{}, fmt.Errorf("load button %d: %w", id, err)
	}
	return b, nil
}

func (t *gormTx) MaxButtonOrder() (int, bool, error) {
	var top sql.NullInt64
	if err := t.db.Model(&MenuButton{}).Select("MAX(sort_order)").Row().Scan(&top); err != nil {
		return 0, false, fmt.Errorf("max button order: %w", err)
	}
	if !top.Valid {
		return 0, false, nil
	}
	return int(top.Int64), true, nil
}

func (t *gormTx) CreateButton(b *MenuButton) error {
	if err := t.db.Create(b).Error; err != nil {
		return fmt.Errorf("create button: %w", err)
	}
	return nil
}

func (t *gormTx) SaveButton(b *MenuButton) error {
	res := t.db.Model(b).Select("*").Omit("created_at").Updates(b)
	if res.Error != nil {
		return fmt.Errorf("save button %d: %w", b.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("button %d: %w", b.ID, ErrNotFound)
	}
	return nil
}

func (t *gormTx) CreateSubmission(s *FormSubmission) error {
	if err := t.db.Create(s).Error; err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

func (t *gormTx) CountSubmissions() (int64, error) {
	var n int64
	if err := t.db.Model(&FormSubmission{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}

func (t *gormTx) SubmissionsSince(since time.Time) ([]FormSubmission, error) {
	var out []FormSubmission
	if err := t.db.Where("created_at >= ?", since.UTC()).Order("created_at, id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return out, nil
}

func (t *gormTx) NotificationSettings() (NotificationSettings, error) {
	var n NotificationSettings
	if err := t.db.Limit(1).Find(&n, notificationID).Error; err != nil {
		return NotificationSettings{}, fmt.Errorf("load notification settings: %w", err)
	}
	n.ID = notificationID
	return n, nil
}

func (t *gormTx) SaveNotificationSettings(n *NotificationSettings) error {
	n.ID = notificationID
	if err := t.db.Save(n).Error; err != nil {
		return fmt.Errorf("save notification settings: %w", err)
	}
	return nil
}
