package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:pacewise.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/pacewise?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the progress and assessment tables when absent.
func EnsureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	default:
		return fmt.Errorf("unsupported driver: %s", driver)
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS module_next (
  course_instance_id TEXT NOT NULL,
  module_id TEXT NOT NULL,
  next_module_id TEXT,
  section_id TEXT,
  PRIMARY KEY (course_instance_id, module_id)
);

CREATE TABLE IF NOT EXISTS section_next (
  course_instance_id TEXT NOT NULL,
  section_id TEXT NOT NULL,
  next_section_id TEXT,
  section_item_id TEXT,
  PRIMARY KEY (course_instance_id, section_id)
);

CREATE TABLE IF NOT EXISTS section_item_next (
  course_instance_id TEXT NOT NULL,
  section_item_id TEXT NOT NULL,
  next_section_item_id TEXT,
  PRIMARY KEY (course_instance_id, section_item_id)
);

CREATE TABLE IF NOT EXISTS student_course_progress (
  course_instance_id TEXT NOT NULL,
  student_id TEXT NOT NULL,
  status TEXT NOT NULL,
  PRIMARY KEY (course_instance_id, student_id)
);

CREATE TABLE IF NOT EXISTS student_module_progress (
  course_instance_id TEXT NOT NULL,
  student_id TEXT NOT NULL,
  module_id TEXT NOT NULL,
  status TEXT NOT NULL,
  PRIMARY KEY (course_instance_id, student_id, module_id)
);

CREATE TABLE IF NOT EXISTS student_section_progress (
  course_instance_id TEXT NOT NULL,
  student_id TEXT NOT NULL,
  section_id TEXT NOT NULL,
  module_id TEXT NOT NULL,
  status TEXT NOT NULL,
  PRIMARY KEY (course_instance_id, student_id, section_id)
);

CREATE TABLE IF NOT EXISTS student_section_item_progress (
  course_instance_id TEXT NOT NULL,
  student_id TEXT NOT NULL,
  section_item_id TEXT NOT NULL,
  section_id TEXT NOT NULL,
  status TEXT NOT NULL,
  PRIMARY KEY (course_instance_id, student_id, section_item_id)
);

CREATE TABLE IF NOT EXISTS assessment_attempts (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  course_instance_id TEXT NOT NULL,
  assessment_id TEXT NOT NULL,
  status TEXT NOT NULL,
  answers_json TEXT NOT NULL,
  attempt_time INTEGER NOT NULL,
  submission_time INTEGER
);

CREATE TABLE IF NOT EXISTS student_assessment_progress (
  student_id TEXT NOT NULL,
  assessment_id TEXT NOT NULL,
  course_instance_id TEXT NOT NULL,
  status TEXT NOT NULL,
  PRIMARY KEY (student_id, assessment_id, course_instance_id)
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS module_next (
  course_instance_id TEXT NOT NULL,
  module_id TEXT NOT NULL,
  next_module_id TEXT,
  section_id TEXT,
  PRIMARY KEY (course_instance_id, module_id)
);

CREATE TABLE IF NOT EXISTS section_next (
  course_instance_id TEXT NOT NULL,
  section_id TEXT NOT NULL,
  next_section_id TEXT,
  section_item_id TEXT,
  PRIMARY KEY (course_instance_id, section_id)
);

CREATE TABLE IF NOT EXISTS section_item_next (
  course_instance_id TEXT NOT NULL,
  section_item_id TEXT NOT NULL,
  next_section_item_id TEXT,
  PRIMARY KEY (course_instance_id, section_item_id)
);

CREATE TABLE IF NOT EXISTS student_course_progress (
  course_instance_id TEXT NOT NULL,
  student_id TEXT NOT NULL,
  status TEXT NOT NULL,
  PRIMARY KEY (course_instance_id, student_id)
);

CREATE TABLE IF NOT EXISTS student_module_progress (
  course_instance_id TEXT NOT NULL,
  student_id TEXT NOT NULL,
  module_id TEXT NOT NULL,
  status TEXT NOT NULL,
  PRIMARY KEY (course_instance_id, student_id, module_id)
);

CREATE TABLE IF NOT EXISTS student_section_progress (
  course_instance_id TEXT NOT NULL,
  student_id TEXT NOT NULL,
  section_id TEXT NOT NULL,
  module_id TEXT NOT NULL,
  status TEXT NOT NULL,
  PRIMARY KEY (course_instance_id, student_id, section_id)
);

CREATE TABLE IF NOT EXISTS student_section_item_progress (
  course_instance_id TEXT NOT NULL,
  student_id TEXT NOT NULL,
  section_item_id TEXT NOT NULL,
  section_id TEXT NOT NULL,
  status TEXT NOT NULL,
  PRIMARY KEY (course_instance_id, student_id, section_item_id)
);

CREATE TABLE IF NOT EXISTS assessment_attempts (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  course_instance_id TEXT NOT NULL,
  assessment_id TEXT NOT NULL,
  status TEXT NOT NULL,
  answers_json TEXT NOT NULL,
  attempt_time BIGINT NOT NULL,
  submission_time BIGINT
);

CREATE TABLE IF NOT EXISTS student_assessment_progress (
  student_id TEXT NOT NULL,
  assessment_id TEXT NOT NULL,
  course_instance_id TEXT NOT NULL,
  status TEXT NOT NULL,
  PRIMARY KEY (student_id, assessment_id, course_instance_id)
);
`
