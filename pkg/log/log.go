// Package log provides a zerolog-based logger that persists JSON log lines to
// an SQLite database under the application directory, plus retrieval helpers
// backing the `csparve logs` subcommand.
package log

import (
	"database/sql"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"path"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"csparve-go/pkg/appdir"
)

var (
	pkgLogger = zerolog.Nop()
	writer    *sqliteWriter
	dbHandle  *sql.DB
	mu        sync.RWMutex

	// ErrNotInitialized is returned by retrieval functions before Init.
	ErrNotInitialized = errors.New("log: logger not initialized, call log.Init() first")
)

const timeFieldFormat = time.RFC3339Nano

// sqliteWriter is the io.Writer zerolog emits JSON lines into; each line
// becomes one row of the logs table.
type sqliteWriter struct {
	db   *sql.DB
	stmt *sql.Stmt
	mu   sync.Mutex
}

func newSQLiteWriter(dbPath string) (*sqliteWriter, *sql.DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode=wal&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("log: opening %s: %w", dbPath, err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("log: pinging %s: %w", dbPath, err)
	}

	const createTableSQL = `
    CREATE TABLE IF NOT EXISTS logs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        inserted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL,
        log_data TEXT NOT NULL
    );`
	if _, err = db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("log: creating logs table: %w", err)
	}
	if _, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_logs_json_time ON logs (json_extract(log_data, '$.time'));`); err != nil {
		stdlog.Printf("Warning: failed to create JSON time index: %v\n", err)
	}

	stmt, err := db.Prepare(`INSERT INTO logs (log_data) VALUES (?)`)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("log: preparing insert: %w", err)
	}
	return &sqliteWriter{db: db, stmt: stmt}, db, nil
}

func (w *sqliteWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err = w.stmt.Exec(string(p)); err != nil {
		stdlog.Printf("ERROR writing log to SQLite: %v\n", err)
		return 0, err
	}
	return len(p), nil
}

func (w *sqliteWriter) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var firstErr error
	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			firstErr = fmt.Errorf("log: closing statement: %w", err)
		}
		w.stmt = nil
	}
	if w.db != nil {
		if err := w.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("log: closing db: %w", err)
		}
		w.db = nil
	}
	return firstErr
}

// SetConsole switches the package logger to human-readable console output,
// bypassing the database.
func SetConsole() {
	mu.Lock()
	defer mu.Unlock()
	pkgLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// Init opens (creating if needed) the SQLite log database dbFile under the
// application directory and routes the package logger into it.
func Init(dbFile string) error {
	if dbFile == "" {
		return fmt.Errorf("log: Init needs an explicit dbFile")
	}
	mu.Lock()
	defer mu.Unlock()
	if writer != nil {
		return fmt.Errorf("log: logger already initialized")
	}

	w, db, err := newSQLiteWriter(path.Join(appdir.AppDir(), dbFile))
	if err != nil {
		return err
	}
	writer = w
	dbHandle = db

	zerolog.TimeFieldFormat = timeFieldFormat
	pkgLogger = zerolog.New(writer).With().Timestamp().Logger()
	return nil
}

// MustInit is Init for main functions: any failure is fatal.
func MustInit(app string) {
	if err := Init(fmt.Sprintf("%s.db", app)); err != nil {
		stdlog.Fatalf("FATAL: failed to initialize logger: %v\n", err)
	}
}

// Close flushes a shutdown marker and closes the database. The package logger
// reverts to a no-op.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if writer == nil {
		return nil
	}
	w := writer
	writer = nil
	dbHandle = nil
	pkgLogger = zerolog.Nop()

	closingLogger := zerolog.New(w).With().Timestamp().Logger()
	closingLogger.Log().Msg("Closing SQLite logger")
	if err := w.close(); err != nil {
		stdlog.Printf("Error closing SQLite logger: %v\n", err)
		return err
	}
	return nil
}

func Debug() *zerolog.Event { return pkgLogger.Debug() }
func Info() *zerolog.Event  { return pkgLogger.Info() }
func Warn() *zerolog.Event  { return pkgLogger.Warn() }
func Error() *zerolog.Event { return pkgLogger.Error() }
func Fatal() *zerolog.Event { return pkgLogger.Fatal() }
func Log() *zerolog.Event   { return pkgLogger.Log() }

// Printf sends an info-level event. Arguments are handled in the manner of
// fmt.Printf.
func Printf(format string, v ...interface{}) {
	pkgLogger.Info().CallerSkipFrame(1).Msgf(format, v...)
}

func Fatalf(format string, v ...any) {
	pkgLogger.Fatal().Msgf(format, v...)
}

// LogEntry is one retrieved row: the raw JSON line plus its insertion metadata.
type LogEntry struct {
	ID         int64
	InsertedAt time.Time
	LogData    string
}

// DefaultLimit bounds retrieval queries when the caller passes no limit.
const DefaultLimit = 100

func getHandle() (*sql.DB, error) {
	mu.RLock()
	defer mu.RUnlock()
	if dbHandle == nil {
		return nil, ErrNotInitialized
	}
	return dbHandle, nil
}

// parseDBTimestamp tries common SQLite timestamp formats.
func parseDBTimestamp(ts string) time.Time {
	formats := []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, ts); err == nil {
			return t
		}
	}
	stdlog.Printf("Warning: could not parse inserted_at timestamp %q", ts)
	return time.Time{}
}

func scanEntries(rows *sql.Rows) ([]LogEntry, error) {
	var logs []LogEntry
	for rows.Next() {
		var entry LogEntry
		var insertedAt string
		if err := rows.Scan(&entry.ID, &insertedAt, &entry.LogData); err != nil {
			return nil, fmt.Errorf("log: scanning entry: %w", err)
		}
		entry.InsertedAt = parseDBTimestamp(insertedAt)
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("log: iterating rows: %w", err)
	}
	return logs, nil
}

// GetLastNLogs retrieves the most recent n log entries in chronological order
// (oldest of the n first).
func GetLastNLogs(n int) ([]LogEntry, error) {
	handle, err := getHandle()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []LogEntry{}, nil
	}

	rows, err := handle.Query(`SELECT id, inserted_at, log_data FROM logs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("log: querying last %d logs: %w", n, err)
	}
	defer rows.Close()

	logs, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}

// GetLogsBetween retrieves entries whose event time (the JSON 'time' field)
// falls within [start, end], in chronological order. A limit <= 0 means
// DefaultLimit.
func GetLogsBetween(start, end time.Time, limit int) ([]LogEntry, error) {
	handle, err := getHandle()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	const query = `
        SELECT id, inserted_at, log_data
        FROM logs
        WHERE json_extract(log_data, '$.time') >= ? AND json_extract(log_data, '$.time') <= ?
        ORDER BY json_extract(log_data, '$.time') ASC, id ASC
        LIMIT ?`
	rows, err := handle.Query(query, start.Format(timeFieldFormat), end.Format(timeFieldFormat), limit)
	if err != nil {
		return nil, fmt.Errorf("log: querying logs between %s and %s: %w", start, end, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetLogsSince retrieves entries from start up to now; a convenience wrapper
// around GetLogsBetween.
func GetLogsSince(start time.Time, limit int) ([]LogEntry, error) {
	return GetLogsBetween(start, time.Now(), limit)
}
