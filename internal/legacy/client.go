package legacy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrLegacyUnavailable reported when the CDE cannot be reached within the
// bounded timeout
var ErrLegacyUnavailable = errors.New("legacy system unavailable")

// Row one CDE inventory row, read-only contract
type Row struct {
	ItemNumber string    `gorm:"column:item_number"`
	Status     string    `gorm:"column:status"`
	Timestamp  time.Time `gorm:"column:updated_at"`
	LegacyID   string    `gorm:"column:cde_id"`
	ReservedBy string    `gorm:"column:reserved_by"`
}

// Source read-only access to the legacy warehouse system of record
type Source interface {
	FetchChangedSince(ctx context.Context, since time.Time) ([]Row, error)
	FetchByItemNumbers(ctx context.Context, numbers []string) ([]Row, error)
	Ping(ctx context.Context) error
}

// Client MySQL-backed CDE source. Every query runs under the configured
// timeout; the CDE is never written to.
type Client struct {
	db      *gorm.DB
	table   string
	timeout time.Duration
}

// NewClient opens the read-only CDE connection
func NewClient(cfg *config.LegacyConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("legacy access disabled")
	}
	if cfg.DSN == "" {
		return nil, errors.New("legacy dsn required")
	}
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open legacy connection failed: %w", err)
	}
	table := cfg.Table
	if table == "" {
		table = "cde_inventory"
	}
	return &Client{
		db:      db,
		table:   table,
		timeout: cfg.Timeout(),
	}, nil
}

// FetchChangedSince returns rows whose CDE timestamp falls inside the
// recent-change window
func (c *Client) FetchChangedSince(ctx context.Context, since time.Time) ([]Row, error) {
	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rows []Row
	err := c.db.WithContext(tctx).Table(c.table).
		Select("item_number", "status", "updated_at", "cde_id", "reserved_by").
		Where("updated_at >= ?", since).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLegacyUnavailable, err)
	}
	return rows, nil
}

// FetchByItemNumbers returns the current rows for an explicit set of item
// numbers (bounded lookup, not a scan)
func (c *Client) FetchByItemNumbers(ctx context.Context, numbers []string) ([]Row, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rows []Row
	err := c.db.WithContext(tctx).Table(c.table).
		Select("item_number", "status", "updated_at", "cde_id", "reserved_by").
		Where("item_number IN ?", numbers).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLegacyUnavailable, err)
	}
	return rows, nil
}

// Ping verifies connectivity within the bounded timeout
func (c *Client) Ping(ctx context.Context) error {
	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLegacyUnavailable, err)
	}
	if err := sqlDB.PingContext(tctx); err != nil {
		return fmt.Errorf("%w: %v", ErrLegacyUnavailable, err)
	}
	return nil
}
