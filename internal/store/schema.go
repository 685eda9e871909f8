package store

// schema is the full DDL, safe to run on every open.
const schema = `
CREATE TABLE IF NOT EXISTS items (
	id         TEXT PRIMARY KEY,
	topic      TEXT NOT NULL,
	type       TEXT NOT NULL DEFAULT '',
	difficulty REAL NOT NULL DEFAULT 5.0
);
CREATE INDEX IF NOT EXISTS idx_items_topic ON items(topic);

CREATE TABLE IF NOT EXISTS scheduling (
	user_id            TEXT    NOT NULL,
	item_id            TEXT    NOT NULL,
	level              TEXT    NOT NULL,
	interval_days      INTEGER NOT NULL,
	ease               REAL    NOT NULL,
	repetitions        INTEGER NOT NULL,
	lapses             INTEGER NOT NULL,
	consecutive_lapses INTEGER NOT NULL,
	step               INTEGER NOT NULL,
	due                TIMESTAMP NOT NULL,
	last_reviewed      TIMESTAMP,
	stability          REAL    NOT NULL,
	difficulty         REAL    NOT NULL,
	version            INTEGER NOT NULL,
	PRIMARY KEY (user_id, item_id)
);
CREATE INDEX IF NOT EXISTS idx_scheduling_user_due ON scheduling(user_id, due);

CREATE TABLE IF NOT EXISTS statistics (
	user_id         TEXT    NOT NULL,
	item_id         TEXT    NOT NULL,
	total_reviews   INTEGER NOT NULL,
	correct_count   INTEGER NOT NULL,
	streak          INTEGER NOT NULL,
	max_streak      INTEGER NOT NULL,
	avg_response_ms REAL    NOT NULL,
	retention_rate  REAL    NOT NULL,
	PRIMARY KEY (user_id, item_id)
);

CREATE TABLE IF NOT EXISTS difficulty_state (
	user_id                 TEXT NOT NULL,
	topic                   TEXT NOT NULL,
	current_difficulty      REAL NOT NULL,
	stability_score         REAL NOT NULL,
	confidence_interval     REAL NOT NULL,
	target_success_rate     REAL NOT NULL,
	current_success_rate    REAL NOT NULL,
	last_direction          INTEGER NOT NULL,
	manual_override_enabled INTEGER NOT NULL,
	manual_override_value   REAL NOT NULL,
	updated_at              TIMESTAMP NOT NULL,
	version                 INTEGER NOT NULL,
	PRIMARY KEY (user_id, topic)
);

CREATE TABLE IF NOT EXISTS difficulty_adjustments (
	id                  TEXT PRIMARY KEY,
	user_id             TEXT NOT NULL,
	topic               TEXT NOT NULL,
	previous_difficulty REAL NOT NULL,
	new_difficulty      REAL NOT NULL,
	reason              TEXT NOT NULL,
	success_rate        REAL NOT NULL,
	confidence          REAL NOT NULL,
	applied             INTEGER NOT NULL,
	created_at          TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_adjustments_user_topic
	ON difficulty_adjustments(user_id, topic, created_at);

CREATE TABLE IF NOT EXISTS reviews (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     TEXT    NOT NULL,
	item_id     TEXT    NOT NULL,
	topic       TEXT    NOT NULL,
	quality     INTEGER NOT NULL,
	correct     INTEGER NOT NULL,
	response_ms INTEGER NOT NULL,
	reviewed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reviews_user_topic ON reviews(user_id, topic, id);

CREATE TABLE IF NOT EXISTS forgetting_curves (
	user_id TEXT NOT NULL,
	item_id TEXT NOT NULL,
	curve   TEXT NOT NULL,
	PRIMARY KEY (user_id, item_id)
);

CREATE TABLE IF NOT EXISTS graph_edges (
	prereq    TEXT NOT NULL,
	dependent TEXT NOT NULL,
	min_level TEXT NOT NULL,
	mode      TEXT NOT NULL,
	PRIMARY KEY (prereq, dependent)
);

CREATE TABLE IF NOT EXISTS precomputed_queues (
	user_id  TEXT PRIMARY KEY,
	built_at TIMESTAMP NOT NULL,
	payload  TEXT NOT NULL
);
`
