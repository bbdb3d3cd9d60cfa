package session

// Schema defines the archived-session table. The store always runs
// against an in-memory database, so the schema is recreated per process.
const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    subject          TEXT NOT NULL DEFAULT '',
    sender           TEXT,
    summary          TEXT,
    state_at_archive TEXT NOT NULL,
    email_content    TEXT NOT NULL,
    extracted_info   TEXT,
    drafts           TEXT,
    archived_at      TEXT NOT NULL
);
`
