package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
}

func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Create events table
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS events(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts REAL,
		level TEXT,
		code TEXT,
		msg TEXT,
		meta TEXT
	)`); err != nil {
		return nil, err
	}

	// Create requests table. Metadata only: request text and results are
	// never written here.
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS requests(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts REAL,
		req_id TEXT,
		worker_id TEXT,
		source TEXT,
		input_len INTEGER,
		dur_ms REAL,
		status TEXT,
		error TEXT
	)`); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

func (db *DB) Event(level, code, msg string, meta map[string]interface{}) {
	m := ""
	if meta != nil {
		b, _ := json.Marshal(meta)
		m = string(b)
	}
	_, _ = db.Exec(`INSERT INTO events(ts,level,code,msg,meta) VALUES(?,?,?,?,?)`,
		float64(time.Now().UnixNano())/1e9, level, code, msg, m)
}

func (db *DB) Req(start time.Time, reqID, workerID, source string, inputLen int, dur time.Duration, status, errStr string) {
	_, _ = db.Exec(`INSERT INTO requests(ts,req_id,worker_id,source,input_len,dur_ms,status,error) VALUES(?,?,?,?,?,?,?,?)`,
		float64(start.UnixNano())/1e9, reqID, workerID, source, inputLen, float64(dur.Milliseconds()), status, errStr)
}
