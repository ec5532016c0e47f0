// Package log provides the package-level zerolog logger used across toyblock.
// By default it discards everything. SetStd switches to a console writer and
// Init installs the run journal, a SQLite table holding one JSON line per event.
package log

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"toyblock/pkg/appdir"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

var (
	writesSinceStart atomic.Int64
	pkgLogger        = zerolog.Nop()
	journal          *journalWriter
	dbHandle         *sql.DB
	mu               sync.RWMutex
	// fixed width and UTC so journal times order correctly as text
	timeFieldFormat  = "2006-01-02T15:04:05.000000000Z07:00"

	ErrNotInitialized     = errors.New("log: journal not initialized, call log.Init() first")
	ErrAlreadyInitialized = errors.New("log: journal already initialized")
	ErrNoJournalPath      = errors.New("log: journal needs an explicit database file")
)

type journalWriter struct {
	db   *sql.DB
	stmt *sql.Stmt
	mu   sync.Mutex
}

func openJournal(dbPath string) (*journalWriter, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode=wal&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db %s: %w", dbPath, err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db %s: %w", dbPath, err)
	}

	_, err = db.Exec(`
    CREATE TABLE IF NOT EXISTS logs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        inserted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL,
        log_data TEXT NOT NULL
    );`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create logs table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_logs_json_time ON logs (json_extract(log_data, '$.time'));`)
	if err != nil {
		stdlog.Printf("Warning: failed to create JSON time index: %v\n", err)
	}

	stmt, err := db.Prepare(`INSERT INTO logs (log_data) VALUES (?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	return &journalWriter{db: db, stmt: stmt}, nil
}

func (w *journalWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err = w.stmt.Exec(string(p)); err != nil {
		stdlog.Printf("ERROR writing log to journal: %v\n", err)
		return 0, err
	}
	writesSinceStart.Add(1)
	return len(p), nil
}

func (w *journalWriter) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing statement: %w", err))
		}
		w.stmt = nil
	}
	if w.db != nil {
		if err := w.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing db: %w", err))
		}
		w.db = nil
	}
	return errors.Join(errs...)
}

// SetStd logs human readable lines to stderr.
func SetStd() {
	SetOutput(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// SetOutput points the logger at w. It is mostly useful in tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	pkgLogger = zerolog.New(w).With().Timestamp().Logger()
}

// Discard drops every event until the next SetOutput or Init.
func Discard() {
	mu.Lock()
	defer mu.Unlock()
	pkgLogger = zerolog.Nop()
}

func SetLevel(l zerolog.Level) {
	zerolog.SetGlobalLevel(l)
}

// Init opens the journal. Relative names are placed in the toyblock
// directory. When a console writer is active, events go to both.
func Init(dbFile string) error {
	if dbFile == "" {
		return ErrNoJournalPath
	}
	dbPath := appdir.Resolve(dbFile)
	if dbPath != dbFile {
		if err := appdir.Ensure(); err != nil {
			return fmt.Errorf("failed to create %s: %w", appdir.AppDir(), err)
		}
	}

	mu.Lock()
	defer mu.Unlock()

	if journal != nil {
		return ErrAlreadyInitialized
	}

	writer, err := openJournal(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create journal writer: %w", err)
	}
	journal = writer
	dbHandle = writer.db
	writesSinceStart.Store(0)

	zerolog.TimeFieldFormat = timeFieldFormat
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	var out io.Writer = journal
	if pkgLogger.GetLevel() != zerolog.Disabled {
		out = zerolog.MultiLevelWriter(journal, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	pkgLogger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// Close flushes a final event into the journal and releases it.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if journal == nil {
		return nil
	}

	w := journal
	journal = nil
	dbHandle = nil
	pkgLogger = zerolog.Nop()

	closing := zerolog.New(w).With().Timestamp().Logger()
	closing.Log().Msg("closing journal")

	if err := w.close(); err != nil {
		return fmt.Errorf("error closing journal: %w", err)
	}
	return nil
}

func logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return pkgLogger
}

func Debug() *zerolog.Event { l := logger(); return l.Debug() }
func Info() *zerolog.Event  { l := logger(); return l.Info() }
func Warn() *zerolog.Event  { l := logger(); return l.Warn() }
func Error() *zerolog.Event { l := logger(); return l.Error() }
func Fatal() *zerolog.Event { l := logger(); return l.Fatal() }

// Printf sends an info event. Arguments are handled in the manner of fmt.Printf.
func Printf(format string, v ...any) {
	l := logger()
	l.Info().CallerSkipFrame(1).Msgf(format, v...)
}

func Fatalf(format string, v ...any) {
	l := logger()
	l.Fatal().Msgf(format, v...)
}

// Entry is one journal row.
type Entry struct {
	ID         int64
	InsertedAt time.Time
	Data       string // raw JSON event
}

const DefaultLimit = 100

func getHandle() (*sql.DB, error) {
	mu.RLock()
	defer mu.RUnlock()
	if dbHandle == nil {
		return nil, ErrNotInitialized
	}
	return dbHandle, nil
}

func parseDBTimestamp(ts string) time.Time {
	formats := []string{
		time.DateTime,
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		var insertedAt string
		if err := rows.Scan(&e.ID, &insertedAt, &e.Data); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.InsertedAt = parseDBTimestamp(insertedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal rows: %w", err)
	}
	return entries, nil
}

// SinceStart returns the events written since Init.
func SinceStart() ([]Entry, error) {
	return LastN(int(writesSinceStart.Load()))
}

// LastN returns the newest n entries, oldest first.
func LastN(n int) ([]Entry, error) {
	handle, err := getHandle()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []Entry{}, nil
	}

	rows, err := handle.Query(`SELECT id, inserted_at, log_data FROM logs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query last %d entries: %w", n, err)
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Since returns entries whose event time is at or after start, in event
// order. A limit <= 0 means DefaultLimit.
func Since(start time.Time, limit int) ([]Entry, error) {
	handle, err := getHandle()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	from := start.UTC().Format(timeFieldFormat)
	rows, err := handle.Query(`
        SELECT id, inserted_at, log_data
        FROM logs
        WHERE json_extract(log_data, '$.time') >= ?
        ORDER BY json_extract(log_data, '$.time') ASC, id ASC
        LIMIT ?`, from, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries since %s: %w", from, err)
	}
	return scanEntries(rows)
}
