// Package dbcheck probes the database an app-config document points at.
package dbcheck

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/jarch-dev/blueprint"
)

// ErrUnsupported is returned for database types the probe cannot reach.
var ErrUnsupported = errors.New("database type not supported by the probe")

// Target is the connection section of an app-config document.
type Target struct {
	Type     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// TargetFrom reads the database section of an app-config document.
func TargetFrom(d *blueprint.Document) (Target, error) {
	if d.Kind() != blueprint.AppConfigDoc {
		return Target{}, fmt.Errorf("dbcheck: need %s, got %s", blueprint.AppConfigDoc, d.Kind())
	}
	str := func(p string) string {
		v, _ := d.Get(p)
		s, _ := v.(string)
		return s
	}
	port, _ := d.Get("database.port")
	f, _ := port.(float64)
	return Target{
		Type:     str("database.type"),
		Host:     str("database.host"),
		Port:     int(f),
		Database: str("database.databaseName"),
		Username: str("database.username"),
		Password: str("database.password"),
	}, nil
}

// Address is host:port.
func (t Target) Address() string {
	return t.Host + ":" + strconv.Itoa(t.Port)
}

// PostgresDSN builds a key=value connection string.
func PostgresDSN(t Target) string {
	parts := []string{
		"host=" + quote(t.Host),
		"port=" + strconv.Itoa(t.Port),
		"dbname=" + quote(t.Database),
		"sslmode=disable",
	}
	if t.Username != "" {
		parts = append(parts, "user="+quote(t.Username))
	}
	if t.Password != "" {
		parts = append(parts, "password="+quote(t.Password))
	}
	return strings.Join(parts, " ")
}

func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
	return "'" + v + "'"
}

// MySQLDSN builds a go-sql-driver DSN.
func MySQLDSN(t Target, timeout time.Duration) string {
	cfg := mysql.NewConfig()
	cfg.User = t.Username
	cfg.Passwd = t.Password
	cfg.Net = "tcp"
	cfg.Addr = t.Address()
	cfg.DBName = t.Database
	cfg.Timeout = timeout
	return cfg.FormatDSN()
}

// Status is the outcome of a probe.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result reports one probe.
type Result struct {
	Target  Target
	Status  Status
	Latency time.Duration
	Err     error
}

// Prober opens and pings databases.
type Prober struct {
	Timeout time.Duration
	Logger  *slog.Logger
	// open is swapped in tests.
	open func(t Target, timeout time.Duration) (*sql.DB, error)
}

// NewProber returns a Prober with the given ping timeout.
func NewProber(timeout time.Duration, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Prober{Timeout: timeout, Logger: logger, open: open}
}

func open(t Target, timeout time.Duration) (*sql.DB, error) {
	switch t.Type {
	case "POSTGRESQL":
		cfg, err := pgx.ParseConfig(PostgresDSN(t))
		if err != nil {
			return nil, fmt.Errorf("postgres config: %w", err)
		}
		cfg.ConnectTimeout = timeout
		return stdlib.OpenDB(*cfg), nil
	case "MYSQL":
		return sql.Open("mysql", MySQLDSN(t, timeout))
	}
	return nil, fmt.Errorf("%s: %w", t.Type, ErrUnsupported)
}

// Probe connects to t and pings it. Unsupported types are skipped, not
// failed.
func (p *Prober) Probe(ctx context.Context, t Target) Result {
	res := Result{Target: t}
	db, err := p.open(t, p.Timeout)
	if errors.Is(err, ErrUnsupported) {
		res.Status, res.Err = StatusSkipped, err
		p.Logger.Debug("probe skipped", "type", t.Type)
		return res
	}
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res
	}
	defer func() { _ = db.Close() }()

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	start := time.Now()
	err = db.PingContext(ctx)
	res.Latency = time.Since(start)
	if err != nil {
		res.Status, res.Err = StatusFailed, fmt.Errorf("ping %s: %w", t.Address(), err)
		p.Logger.Info("probe failed", "type", t.Type, "addr", t.Address(), "error", err)
		return res
	}
	res.Status = StatusOK
	p.Logger.Info("probe ok", "type", t.Type, "addr", t.Address(), "latency", res.Latency)
	return res
}
