package sqlite

// Timestamps are stored as unix milliseconds.
const schema = `
CREATE TABLE IF NOT EXISTS experiments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT    NOT NULL UNIQUE,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id            TEXT    PRIMARY KEY,
	experiment_id TEXT    NOT NULL,
	status        TEXT    NOT NULL,
	start_time    INTEGER NOT NULL,
	end_time      INTEGER
);

CREATE INDEX IF NOT EXISTS runs_experiment_start ON runs (experiment_id, start_time);

CREATE TABLE IF NOT EXISTS params (
	run_id TEXT NOT NULL,
	key    TEXT NOT NULL,
	value  TEXT NOT NULL,
	PRIMARY KEY (run_id, key)
);

CREATE TABLE IF NOT EXISTS metrics (
	run_id    TEXT    NOT NULL,
	key       TEXT    NOT NULL,
	value     REAL    NOT NULL,
	timestamp INTEGER NOT NULL,
	PRIMARY KEY (run_id, key)
);

CREATE TABLE IF NOT EXISTS artifacts (
	run_id TEXT    NOT NULL,
	path   TEXT    NOT NULL,
	uri    TEXT    NOT NULL,
	size   INTEGER NOT NULL,
	PRIMARY KEY (run_id, path)
);
`
