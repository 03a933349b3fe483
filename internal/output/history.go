package output

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
	_ "modernc.org/sqlite"

	"github.com/moamenhredeen/reqcheck/internal/models"
)

// RunRecord is one row of the runs table
type RunRecord struct {
	RunID       string
	SuiteName   string
	ExecuteTime string
	Total       int
	Pass        int
	Fail        int
	Canceled    bool
	Error       string
}

// HistoryStore is a SQLite-backed record of past runs
type HistoryStore struct {
	db   *sql.DB
	path string
}

// OpenHistory opens (creating if needed) the history database at path
func OpenHistory(path string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	h, err := NewHistoryStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	h.path = path
	return h, nil
}

// NewHistoryStore creates the history tables if they don't exist
func NewHistoryStore(db *sql.DB) (*HistoryStore, error) {
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id       TEXT    PRIMARY KEY,
			suite_name   TEXT    NOT NULL,
			execute_time TEXT    NOT NULL,
			total        INTEGER NOT NULL,
			pass         INTEGER NOT NULL,
			fail         INTEGER NOT NULL,
			canceled     INTEGER NOT NULL,
			error        TEXT    NOT NULL DEFAULT '',
			created_at   INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS case_results (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT    NOT NULL REFERENCES runs(run_id),
			case_id       TEXT    NOT NULL,
			name          TEXT    NOT NULL,
			method        TEXT    NOT NULL,
			url           TEXT    NOT NULL,
			result        TEXT    NOT NULL,
			status_code   INTEGER,
			elapsed_ms    INTEGER,
			error_type    TEXT    NOT NULL DEFAULT '',
			error_message TEXT    NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS assertion_results (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			case_row  INTEGER NOT NULL REFERENCES case_results(id),
			type      TEXT    NOT NULL,
			operator  TEXT    NOT NULL,
			result    TEXT    NOT NULL,
			expected  TEXT    NOT NULL,
			actual    TEXT    NOT NULL,
			message   TEXT    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_suite_created ON runs (suite_name, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("create history schema: %w", err)
		}
	}

	return &HistoryStore{db: db}, nil
}

// Export records env in one transaction and returns "<db>#<run_id>"
func (h *HistoryStore) Export(env models.ResultEnvelope) (string, error) {
	if env.RunID == "" {
		env.RunID = uuid.NewString()
	}
	if env.ExecuteTime == "" {
		env.ExecuteTime = time.Now().Format(models.ExecuteTimeLayout)
	}

	tx, err := h.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin history tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, suite_name, execute_time, total, pass, fail, canceled, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		env.RunID, env.SuiteName, env.ExecuteTime, env.Summary.Total, env.Summary.Pass, env.Summary.Fail,
		env.Canceled, env.Error, time.Now().UnixNano(),
	); err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	for _, c := range env.Cases {
		res, err := tx.Exec(
			`INSERT INTO case_results (run_id, case_id, name, method, url, result, status_code, elapsed_ms, error_type, error_message)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			env.RunID, c.CaseID, c.Name, c.Request.Method, c.Request.URL, string(c.Result),
			c.Response.StatusCode, c.Response.ElapsedMS, c.Response.ErrorType, c.Response.ErrorMessage,
		)
		if err != nil {
			return "", fmt.Errorf("record case %s: %w", c.CaseID, err)
		}
		caseRow, err := res.LastInsertId()
		if err != nil {
			return "", fmt.Errorf("record case %s: %w", c.CaseID, err)
		}

		for _, v := range c.AssertionResults {
			if _, err := tx.Exec(
				`INSERT INTO assertion_results (case_row, type, operator, result, expected, actual, message)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				caseRow, string(v.Type), v.Operator, string(v.Result), jsonText(v.Expected), jsonText(v.Actual), v.Message,
			); err != nil {
				return "", fmt.Errorf("record assertion for case %s: %w", c.CaseID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit history tx: %w", err)
	}
	return fmt.Sprintf("%s#%s", h.path, env.RunID), nil
}

// RecentRuns returns up to limit runs, most recent first. An empty
// suiteName matches every suite.
func (h *HistoryStore) RecentRuns(suiteName string, limit int) ([]RunRecord, error) {
	rows, err := h.db.Query(
		`SELECT run_id, suite_name, execute_time, total, pass, fail, canceled, error
		 FROM runs
		 WHERE ? = '' OR suite_name = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		suiteName, suiteName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.SuiteName, &r.ExecuteTime, &r.Total, &r.Pass, &r.Fail, &r.Canceled, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database
func (h *HistoryStore) Close() error {
	return h.db.Close()
}

func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
