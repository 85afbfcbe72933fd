package progress

import "context"

// Tx is the transactional view of the progress store. Everything a single
// cascade or initialization chunk reads and writes goes through one Tx and
// commits or rolls back together.
type Tx interface {
	// Progress rows. Readers return ErrProgressNotFound when the student
	// has no row for the entity.
	CourseStatus(ctx context.Context, courseInstanceID, studentID string) (Status, error)
	SetCourseStatus(ctx context.Context, courseInstanceID, studentID string, st Status) error
	ModuleStatus(ctx context.Context, courseInstanceID, studentID, moduleID string) (Status, error)
	SetModuleStatus(ctx context.Context, courseInstanceID, studentID, moduleID string, st Status) error
	SectionRow(ctx context.Context, courseInstanceID, studentID, sectionID string) (SectionRow, error)
	SetSectionStatus(ctx context.Context, courseInstanceID, studentID, sectionID string, st Status) error
	ItemRow(ctx context.Context, courseInstanceID, studentID, itemID string) (ItemRow, error)
	SetItemStatus(ctx context.Context, courseInstanceID, studentID, itemID string, st Status) error

	// Next pointers, shared across students.
	ModuleNext(ctx context.Context, courseInstanceID, moduleID string) (ModuleNext, error)
	SectionNext(ctx context.Context, courseInstanceID, sectionID string) (SectionNext, error)
	ItemNext(ctx context.Context, courseInstanceID, itemID string) (SectionItemNext, error)
	// ItemPredecessor returns the id of the item whose next pointer is
	// itemID, or ok=false if itemID is the first item of its section.
	ItemPredecessor(ctx context.Context, courseInstanceID, itemID string) (id string, ok bool, err error)

	// Initialization writes. Progress inserts are plain inserts; index
	// inserts are duplicate-skip so a rebuild is harmless.
	InsertModuleProgress(ctx context.Context, courseInstanceID, studentID, moduleID string, st Status) error
	InsertSectionProgress(ctx context.Context, courseInstanceID, studentID, sectionID, moduleID string, st Status) error
	InsertItemProgress(ctx context.Context, courseInstanceID, studentID, itemID, sectionID string, st Status) error
	// EnsureCourseProgress creates the course row if absent and reports
	// whether a row was written.
	EnsureCourseProgress(ctx context.Context, courseInstanceID, studentID string, st Status) (created bool, err error)
	PutIndex(ctx context.Context, courseInstanceID string, idx Index) error
}

// Store opens transactions and serves the read-only status getters used by
// the progress endpoints.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error

	GetCourseProgress(ctx context.Context, courseInstanceID, studentID string) (Status, error)
	GetModuleProgress(ctx context.Context, courseInstanceID, studentID, moduleID string) (Status, error)
	GetSectionProgress(ctx context.Context, courseInstanceID, studentID, sectionID string) (Status, error)
	GetSectionItemProgress(ctx context.Context, courseInstanceID, studentID, itemID string) (Status, error)
}
