package database

// migrationsSQL contains all database migrations.
// Migrations are applied in order by version number.
var migrationsSQL = map[int]string{
	1: migrationV1Schema,
	2: migrationV2APIKeys,
}

// migrationV1Schema creates the program tables.
//
// Notes:
//
//  1. content_items.curriculum_order is the global sequence position.
//     It is unique but may be sparse; lookups of "the next item" use
//     ORDER BY rather than arithmetic.
//
//  2. content_items.day is nullable. 0 marks intro/excursus content,
//     1..180 daily content, negative or NULL weekly review content.
//
//  3. users.curriculum_order is the authoritative progress pointer.
//     current_day is rewritten together with it on every progress write.
//
//  4. completed_days and the weekly day-set columns are JSON arrays of
//     integers, parsed once by DaySet.
const migrationV1Schema = `
CREATE TABLE IF NOT EXISTS content_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    curriculum_order INTEGER NOT NULL UNIQUE,
    day INTEGER,
    title TEXT NOT NULL,
    subtitle TEXT,
    body TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_content_items_day
    ON content_items(day);

CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL UNIQUE COLLATE NOCASE,
    name TEXT NOT NULL DEFAULT '',
    curriculum_order INTEGER NOT NULL DEFAULT 1,
    current_day INTEGER NOT NULL DEFAULT 1,
    completed_days TEXT NOT NULL DEFAULT '[]',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS weekly_reviews (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    week_number INTEGER NOT NULL CHECK (week_number >= 1),
    consolations TEXT NOT NULL DEFAULT '',
    desolations TEXT NOT NULL DEFAULT '',
    graces TEXT NOT NULL DEFAULT '',
    struggles TEXT NOT NULL DEFAULT '',
    resolutions TEXT NOT NULL DEFAULT '',
    next_week_plan TEXT NOT NULL DEFAULT '',
    prayer_days TEXT NOT NULL DEFAULT '[]',
    fasting_days TEXT NOT NULL DEFAULT '[]',
    exercise_days TEXT NOT NULL DEFAULT '[]',
    mass_days TEXT NOT NULL DEFAULT '[]',
    confession INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
    UNIQUE (user_id, week_number)
);

CREATE TABLE IF NOT EXISTS rules_of_life (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL UNIQUE,
    prayer TEXT NOT NULL DEFAULT '',
    fasting TEXT NOT NULL DEFAULT '',
    study TEXT NOT NULL DEFAULT '',
    service TEXT NOT NULL DEFAULT '',
    sacraments TEXT NOT NULL DEFAULT '',
    accountability TEXT NOT NULL DEFAULT '',
    other TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);
`

// migrationV2APIKeys adds per-user API keys. Only the SHA-256 hash of a
// key is stored; the plaintext is returned once at creation.
const migrationV2APIKeys = `
CREATE TABLE IF NOT EXISTS api_keys (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    key_prefix TEXT NOT NULL,
    key_hash TEXT NOT NULL UNIQUE,
    last_used_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_api_keys_user
    ON api_keys(user_id);
`
