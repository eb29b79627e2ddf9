package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"RSILab/internal/model"
)

// SQLiteRecorder persists sweeps and signals to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so report queries can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sweep_runs (
			run_id       TEXT PRIMARY KEY,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			start_date   TEXT NOT NULL,
			end_date     TEXT NOT NULL,
			horizon_days INTEGER NOT NULL,
			workers      INTEGER,
			trigger_type TEXT,
			duration_ms  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sweep_runs_symbol_ts ON sweep_runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS sweep_cells (
			run_id    TEXT NOT NULL REFERENCES sweep_runs(run_id),
			direction TEXT NOT NULL,
			lookback  INTEGER NOT NULL,
			threshold INTEGER NOT NULL,
			events    INTEGER NOT NULL,
			samples   INTEGER NOT NULL,
			average   REAL, -- NULL when no crossing occurred
			PRIMARY KEY (run_id, direction, lookback, threshold)
		)`,

		`CREATE TABLE IF NOT EXISTS signals (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			bar_date     TEXT NOT NULL,
			action       TEXT NOT NULL,
			price        REAL,
			rsi          REAL,
			prev_rsi     REAL,
			timeperiod   INTEGER,
			rsi_upper    REAL,
			rsi_lower    REAL,
			trigger_type TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSweep(run *SweepRun) (string, error) {
	if run == nil || run.Result == nil {
		return "", errors.New("record sweep: nil result")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	res := run.Result
	runID := uuid.NewString()

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO sweep_runs
		(run_id, timestamp, symbol, start_date, end_date, horizon_days, workers, trigger_type, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		runID, r.now().Unix(), res.Symbol,
		res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"), res.HorizonDays,
		run.Workers, string(run.TriggerType), run.Duration.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("insert sweep run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO sweep_cells
		(run_id, direction, lookback, threshold, events, samples, average)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return "", fmt.Errorf("prepare sweep cells: %w", err)
	}
	defer stmt.Close()

	for _, tbl := range []*model.SweepTable{res.Upper, res.Lower} {
		for _, c := range tbl.Cells() {
			var avg sql.NullFloat64
			if v, ok := c.Value(); ok {
				avg = sql.NullFloat64{Float64: v, Valid: true}
			}
			if _, err := stmt.Exec(runID, string(tbl.Direction()), c.Lookback, c.Threshold,
				c.Events, c.Samples, avg); err != nil {
				return "", fmt.Errorf("insert sweep cell: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

func (r *SQLiteRecorder) RecordSignal(sig *model.TradeSignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO signals
		(timestamp, symbol, bar_date, action, price, rsi, prev_rsi, timeperiod, rsi_upper, rsi_lower, trigger_type)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), sig.Symbol, sig.Time.Format("2006-01-02"), string(sig.Action),
		sig.Price, sig.RSI, sig.PrevRSI,
		sig.Params.TimePeriod, sig.Params.RSIUpper, sig.Params.RSILower,
		string(sig.TriggerType),
	)
	return err
}

func (r *SQLiteRecorder) LatestSweep(symbol string) (*RecordedSweep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		rec        RecordedSweep
		ts         int64
		start, end string
		res        model.SweepResult
	)
	err := r.db.QueryRow(`SELECT run_id, timestamp, symbol, start_date, end_date, horizon_days
		FROM sweep_runs WHERE symbol = ? ORDER BY timestamp DESC, rowid DESC LIMIT 1`, symbol).
		Scan(&rec.RunID, &ts, &res.Symbol, &start, &end, &res.HorizonDays)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query sweep run: %w", err)
	}
	rec.RecordedAt = time.Unix(ts, 0)
	if res.Start, err = time.Parse("2006-01-02", start); err != nil {
		return nil, fmt.Errorf("parse start_date: %w", err)
	}
	if res.End, err = time.Parse("2006-01-02", end); err != nil {
		return nil, fmt.Errorf("parse end_date: %w", err)
	}

	for _, dir := range []model.Direction{model.Upper, model.Lower} {
		tbl, err := r.loadTable(rec.RunID, dir)
		if err != nil {
			return nil, err
		}
		if dir == model.Upper {
			res.Upper = tbl
		} else {
			res.Lower = tbl
		}
	}
	rec.Result = &res
	return &rec, nil
}

func (r *SQLiteRecorder) loadTable(runID string, dir model.Direction) (*model.SweepTable, error) {
	rows, err := r.db.Query(`SELECT lookback, threshold, events, samples, average
		FROM sweep_cells WHERE run_id = ? AND direction = ?
		ORDER BY lookback, threshold`, runID, string(dir))
	if err != nil {
		return nil, fmt.Errorf("query sweep cells: %w", err)
	}
	defer rows.Close()

	var (
		cells                 []model.SweepCell
		lookbacks, thresholds []int
		seenLB                = map[int]bool{}
		seenTH                = map[int]bool{}
	)
	for rows.Next() {
		var (
			c   model.SweepCell
			avg sql.NullFloat64
		)
		if err := rows.Scan(&c.Lookback, &c.Threshold, &c.Events, &c.Samples, &avg); err != nil {
			return nil, fmt.Errorf("scan sweep cell: %w", err)
		}
		c.Average, c.Empty = avg.Float64, !avg.Valid
		cells = append(cells, c)
		if !seenLB[c.Lookback] {
			seenLB[c.Lookback] = true
			lookbacks = append(lookbacks, c.Lookback)
		}
		if !seenTH[c.Threshold] {
			seenTH[c.Threshold] = true
			thresholds = append(thresholds, c.Threshold)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sweep cells: %w", err)
	}
	return model.NewSweepTable(dir, lookbacks, thresholds, cells)
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
