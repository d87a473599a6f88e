package evaluate

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one recorded evaluation of an image under a strategy.
type Run struct {
	ImageKey       string    `json:"image_key"`
	Strategy       string    `json:"strategy"`
	ElapsedMS      int64     `json:"elapsed_ms"`
	HeapDeltaBytes int64     `json:"heap_delta_bytes"`
	Metrics        Metrics   `json:"metrics"`
	CreatedAt      time.Time `json:"created_at"`
}

// History persists evaluation runs to a SQLite database so accuracy and
// latency can be compared across strategies and code revisions.
type History struct {
	db *sql.DB
}

// OpenHistory opens or creates the run database at path, creating the
// schema if it does not exist.
func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		image_key TEXT NOT NULL,
		strategy TEXT NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		heap_delta_bytes INTEGER NOT NULL,
		true_positives INTEGER NOT NULL,
		false_positives INTEGER NOT NULL,
		false_negatives INTEGER NOT NULL,
		precision REAL NOT NULL,
		recall REAL NOT NULL,
		f1 REAL NOT NULL,
		accuracy REAL NOT NULL,
		created_at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_image_strategy ON runs(image_key, strategy)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history index: %w", err)
	}

	return &History{db: db}, nil
}

// Close releases the database connection.
func (h *History) Close() error {
	return h.db.Close()
}

// Record appends one run. CreatedAt defaults to now when unset.
func (h *History) Record(run Run) error {
	created := run.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := h.db.Exec(
		`INSERT INTO runs (image_key, strategy, elapsed_ms, heap_delta_bytes,
			true_positives, false_positives, false_negatives,
			precision, recall, f1, accuracy, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ImageKey, run.Strategy, run.ElapsedMS, run.HeapDeltaBytes,
		run.Metrics.TruePositives, run.Metrics.FalsePositives, run.Metrics.FalseNegatives,
		run.Metrics.Precision, run.Metrics.Recall, run.Metrics.F1, run.Metrics.Accuracy,
		created.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Recent returns the latest runs for an image/strategy pair, newest first.
// Empty strategy matches every strategy.
func (h *History) Recent(imageKey, strategy string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT image_key, strategy, elapsed_ms, heap_delta_bytes,
			true_positives, false_positives, false_negatives,
			precision, recall, f1, accuracy, created_at
		FROM runs WHERE image_key = ?`
	args := []interface{}{imageKey}
	if strategy != "" {
		query += ` AND strategy = ?`
		args = append(args, strategy)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ImageKey, &r.Strategy, &r.ElapsedMS, &r.HeapDeltaBytes,
			&r.Metrics.TruePositives, &r.Metrics.FalsePositives, &r.Metrics.FalseNegatives,
			&r.Metrics.Precision, &r.Metrics.Recall, &r.Metrics.F1, &r.Metrics.Accuracy,
			&created); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
