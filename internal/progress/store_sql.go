package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLStore implements Store over database/sql for the sqlite and postgres
// drivers. Inside a transaction, row reads on postgres take FOR UPDATE locks
// so two cascades for the same student serialize on the first shared row;
// sqlite has a single writer and needs no explicit lock.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) InTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	t := &sqlTx{tx: tx, driver: s.driver}
	if err := fn(t); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLStore) GetCourseProgress(ctx context.Context, courseInstanceID, studentID string) (Status, error) {
	return scanStatus(s.db.QueryRowContext(ctx,
		`SELECT status FROM student_course_progress WHERE course_instance_id=$1 AND student_id=$2`,
		courseInstanceID, studentID))
}

func (s *SQLStore) GetModuleProgress(ctx context.Context, courseInstanceID, studentID, moduleID string) (Status, error) {
	return scanStatus(s.db.QueryRowContext(ctx,
		`SELECT status FROM student_module_progress WHERE course_instance_id=$1 AND student_id=$2 AND module_id=$3`,
		courseInstanceID, studentID, moduleID))
}

func (s *SQLStore) GetSectionProgress(ctx context.Context, courseInstanceID, studentID, sectionID string) (Status, error) {
	return scanStatus(s.db.QueryRowContext(ctx,
		`SELECT status FROM student_section_progress WHERE course_instance_id=$1 AND student_id=$2 AND section_id=$3`,
		courseInstanceID, studentID, sectionID))
}

func (s *SQLStore) GetSectionItemProgress(ctx context.Context, courseInstanceID, studentID, itemID string) (Status, error) {
	return scanStatus(s.db.QueryRowContext(ctx,
		`SELECT status FROM student_section_item_progress WHERE course_instance_id=$1 AND student_id=$2 AND section_item_id=$3`,
		courseInstanceID, studentID, itemID))
}

func scanStatus(row *sql.Row) (Status, error) {
	var st Status
	if err := row.Scan(&st); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrProgressNotFound
		}
		return "", err
	}
	return st, nil
}

type sqlTx struct {
	tx     *sql.Tx
	driver string
}

func (t *sqlTx) forUpdate() string {
	if t.driver == "postgres" {
		return " FOR UPDATE"
	}
	return ""
}

func (t *sqlTx) CourseStatus(ctx context.Context, courseInstanceID, studentID string) (Status, error) {
	var st Status
	err := t.tx.QueryRowContext(ctx,
		`SELECT status FROM student_course_progress WHERE course_instance_id=$1 AND student_id=$2`+t.forUpdate(),
		courseInstanceID, studentID).Scan(&st)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrProgressNotFound
	}
	return st, err
}

func (t *sqlTx) SetCourseStatus(ctx context.Context, courseInstanceID, studentID string, st Status) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE student_course_progress SET status=$1 WHERE course_instance_id=$2 AND student_id=$3`,
		st, courseInstanceID, studentID)
	return err
}

func (t *sqlTx) ModuleStatus(ctx context.Context, courseInstanceID, studentID, moduleID string) (Status, error) {
	var st Status
	err := t.tx.QueryRowContext(ctx,
		`SELECT status FROM student_module_progress WHERE course_instance_id=$1 AND student_id=$2 AND module_id=$3`+t.forUpdate(),
		courseInstanceID, studentID, moduleID).Scan(&st)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrProgressNotFound
	}
	return st, err
}

func (t *sqlTx) SetModuleStatus(ctx context.Context, courseInstanceID, studentID, moduleID string, st Status) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE student_module_progress SET status=$1 WHERE course_instance_id=$2 AND student_id=$3 AND module_id=$4`,
		st, courseInstanceID, studentID, moduleID)
	return err
}

func (t *sqlTx) SectionRow(ctx context.Context, courseInstanceID, studentID, sectionID string) (SectionRow, error) {
	var row SectionRow
	err := t.tx.QueryRowContext(ctx,
		`SELECT status, module_id FROM student_section_progress WHERE course_instance_id=$1 AND student_id=$2 AND section_id=$3`+t.forUpdate(),
		courseInstanceID, studentID, sectionID).Scan(&row.Status, &row.ModuleID)
	if errors.Is(err, sql.ErrNoRows) {
		return SectionRow{}, ErrProgressNotFound
	}
	return row, err
}

func (t *sqlTx) SetSectionStatus(ctx context.Context, courseInstanceID, studentID, sectionID string, st Status) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE student_section_progress SET status=$1 WHERE course_instance_id=$2 AND student_id=$3 AND section_id=$4`,
		st, courseInstanceID, studentID, sectionID)
	return err
}

func (t *sqlTx) ItemRow(ctx context.Context, courseInstanceID, studentID, itemID string) (ItemRow, error) {
	var row ItemRow
	err := t.tx.QueryRowContext(ctx,
		`SELECT status, section_id FROM student_section_item_progress WHERE course_instance_id=$1 AND student_id=$2 AND section_item_id=$3`+t.forUpdate(),
		courseInstanceID, studentID, itemID).Scan(&row.Status, &row.SectionID)
	if errors.Is(err, sql.ErrNoRows) {
		return ItemRow{}, ErrProgressNotFound
	}
	return row, err
}

func (t *sqlTx) SetItemStatus(ctx context.Context, courseInstanceID, studentID, itemID string, st Status) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE student_section_item_progress SET status=$1 WHERE course_instance_id=$2 AND student_id=$3 AND section_item_id=$4`,
		st, courseInstanceID, studentID, itemID)
	return err
}

func (t *sqlTx) ModuleNext(ctx context.Context, courseInstanceID, moduleID string) (ModuleNext, error) {
	var n ModuleNext
	var next, sec sql.NullString
	err := t.tx.QueryRowContext(ctx,
		`SELECT module_id, next_module_id, section_id FROM module_next WHERE course_instance_id=$1 AND module_id=$2`,
		courseInstanceID, moduleID).Scan(&n.ModuleID, &next, &sec)
	if errors.Is(err, sql.ErrNoRows) {
		return ModuleNext{}, ErrProgressNotFound
	}
	n.NextModuleID, n.SectionID = next.String, sec.String
	return n, err
}

func (t *sqlTx) SectionNext(ctx context.Context, courseInstanceID, sectionID string) (SectionNext, error) {
	var n SectionNext
	var next, item sql.NullString
	err := t.tx.QueryRowContext(ctx,
		`SELECT section_id, next_section_id, section_item_id FROM section_next WHERE course_instance_id=$1 AND section_id=$2`,
		courseInstanceID, sectionID).Scan(&n.SectionID, &next, &item)
	if errors.Is(err, sql.ErrNoRows) {
		return SectionNext{}, ErrProgressNotFound
	}
	n.NextSectionID, n.SectionItemID = next.String, item.String
	return n, err
}

func (t *sqlTx) ItemNext(ctx context.Context, courseInstanceID, itemID string) (SectionItemNext, error) {
	var n SectionItemNext
	var next sql.NullString
	err := t.tx.QueryRowContext(ctx,
		`SELECT section_item_id, next_section_item_id FROM section_item_next WHERE course_instance_id=$1 AND section_item_id=$2`,
		courseInstanceID, itemID).Scan(&n.SectionItemID, &next)
	if errors.Is(err, sql.ErrNoRows) {
		return SectionItemNext{}, ErrProgressNotFound
	}
	n.NextSectionItemID = next.String
	return n, err
}

func (t *sqlTx) ItemPredecessor(ctx context.Context, courseInstanceID, itemID string) (string, bool, error) {
	var id string
	err := t.tx.QueryRowContext(ctx,
		`SELECT section_item_id FROM section_item_next WHERE course_instance_id=$1 AND next_section_item_id=$2`,
		courseInstanceID, itemID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (t *sqlTx) InsertModuleProgress(ctx context.Context, courseInstanceID, studentID, moduleID string, st Status) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO student_module_progress (course_instance_id,student_id,module_id,status) VALUES ($1,$2,$3,$4)`,
		courseInstanceID, studentID, moduleID, st)
	return err
}

func (t *sqlTx) InsertSectionProgress(ctx context.Context, courseInstanceID, studentID, sectionID, moduleID string, st Status) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO student_section_progress (course_instance_id,student_id,section_id,module_id,status) VALUES ($1,$2,$3,$4,$5)`,
		courseInstanceID, studentID, sectionID, moduleID, st)
	return err
}

func (t *sqlTx) InsertItemProgress(ctx context.Context, courseInstanceID, studentID, itemID, sectionID string, st Status) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO student_section_item_progress (course_instance_id,student_id,section_item_id,section_id,status) VALUES ($1,$2,$3,$4,$5)`,
		courseInstanceID, studentID, itemID, sectionID, st)
	return err
}

func (t *sqlTx) EnsureCourseProgress(ctx context.Context, courseInstanceID, studentID string, st Status) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO student_course_progress (course_instance_id,student_id,status) VALUES ($1,$2,$3)
		 ON CONFLICT (course_instance_id,student_id) DO NOTHING`,
		courseInstanceID, studentID, st)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PutIndex writes the next-pointer rows with duplicate-skip; the index is
// shared by every student and may be rebuilt harmlessly.
func (t *sqlTx) PutIndex(ctx context.Context, courseInstanceID string, idx Index) error {
	for _, m := range idx.Modules {
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO module_next (course_instance_id,module_id,next_module_id,section_id) VALUES ($1,$2,$3,$4)
			 ON CONFLICT (course_instance_id,module_id) DO NOTHING`,
			courseInstanceID, m.ModuleID, nullable(m.NextModuleID), nullable(m.SectionID))
		if err != nil {
			return err
		}
	}
	for _, s := range idx.Sections {
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO section_next (course_instance_id,section_id,next_section_id,section_item_id) VALUES ($1,$2,$3,$4)
			 ON CONFLICT (course_instance_id,section_id) DO NOTHING`,
			courseInstanceID, s.SectionID, nullable(s.NextSectionID), nullable(s.SectionItemID))
		if err != nil {
			return err
		}
	}
	for _, it := range idx.Items {
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO section_item_next (course_instance_id,section_item_id,next_section_item_id) VALUES ($1,$2,$3)
			 ON CONFLICT (course_instance_id,section_item_id) DO NOTHING`,
			courseInstanceID, it.SectionItemID, nullable(it.NextSectionItemID))
		if err != nil {
			return err
		}
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
