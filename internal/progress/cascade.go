package progress

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Engine is the progress cascade state machine. A single Advance call runs
// inside one store transaction: the local bump, the sequence check and any
// upward/sideways propagation commit together, so concurrent cascades for
// the same student never interleave on a row.
type Engine struct {
	store Store
	log   *logrus.Logger
}

func NewEngine(store Store, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
	}
	return &Engine{store: store, log: log}
}

// AdvanceSectionItem advances one section item for one student and, when
// cascade is set, propagates the completion to the next sibling or, at the
// end of a level, up into the parent level. It returns every progress row
// the call wrote.
//
// Preconditions: the student must be initialized for the course
// (ErrProgressNotFound otherwise) and the item's predecessor, if any, must
// be COMPLETE (ErrSequenceViolation otherwise).
func (e *Engine) AdvanceSectionItem(ctx context.Context, courseInstanceID, studentID, itemID string, cascade bool) (Touched, error) {
	var t Touched
	err := e.store.InTx(ctx, func(tx Tx) error {
		predID, ok, err := tx.ItemPredecessor(ctx, courseInstanceID, itemID)
		if err != nil {
			return err
		}
		if ok {
			pred, err := tx.ItemRow(ctx, courseInstanceID, studentID, predID)
			if err != nil {
				return err
			}
			if pred.Status != StatusComplete {
				return &SequenceViolationError{EntityID: itemID, PredecessorID: predID}
			}
		}
		return e.advanceItem(ctx, tx, courseInstanceID, studentID, itemID, cascade, &t)
	})
	if err != nil {
		return Touched{}, err
	}
	e.log.WithFields(logrus.Fields{
		"course_instance": courseInstanceID,
		"student":         studentID,
		"section_item":    itemID,
		"cascade":         cascade,
	}).Debug("progress advanced")
	return t, nil
}

func (e *Engine) advanceItem(ctx context.Context, tx Tx, courseInstanceID, studentID, itemID string, cascade bool, t *Touched) error {
	row, err := tx.ItemRow(ctx, courseInstanceID, studentID, itemID)
	if err != nil {
		return err
	}
	next := bump(row.Status)
	if err := tx.SetItemStatus(ctx, courseInstanceID, studentID, itemID, next); err != nil {
		return err
	}
	t.SectionItems = append(t.SectionItems, EntityStatus{ID: itemID, Status: next})
	if !cascade {
		return nil
	}

	ptr, err := tx.ItemNext(ctx, courseInstanceID, itemID)
	if err != nil {
		return err
	}
	if ptr.NextSectionItemID != "" {
		return e.bumpItem(ctx, tx, courseInstanceID, studentID, ptr.NextSectionItemID, t)
	}
	// Last item of its section: complete the section instead.
	return e.advanceSection(ctx, tx, courseInstanceID, studentID, row.SectionID, cascade, t)
}

func (e *Engine) advanceSection(ctx context.Context, tx Tx, courseInstanceID, studentID, sectionID string, cascade bool, t *Touched) error {
	row, err := tx.SectionRow(ctx, courseInstanceID, studentID, sectionID)
	if err != nil {
		return err
	}
	next := bump(row.Status)
	if err := tx.SetSectionStatus(ctx, courseInstanceID, studentID, sectionID, next); err != nil {
		return err
	}
	t.Sections = append(t.Sections, EntityStatus{ID: sectionID, Status: next})
	if !cascade {
		return nil
	}

	ptr, err := tx.SectionNext(ctx, courseInstanceID, sectionID)
	if err != nil {
		return err
	}
	if ptr.NextSectionID != "" {
		// Bump the next section and prime its first item.
		if err := e.bumpSection(ctx, tx, courseInstanceID, studentID, ptr.NextSectionID, t); err != nil {
			return err
		}
		nextPtr, err := tx.SectionNext(ctx, courseInstanceID, ptr.NextSectionID)
		if err != nil {
			return err
		}
		return e.bumpItem(ctx, tx, courseInstanceID, studentID, nextPtr.SectionItemID, t)
	}
	return e.advanceModule(ctx, tx, courseInstanceID, studentID, row.ModuleID, cascade, t)
}

func (e *Engine) advanceModule(ctx context.Context, tx Tx, courseInstanceID, studentID, moduleID string, cascade bool, t *Touched) error {
	st, err := tx.ModuleStatus(ctx, courseInstanceID, studentID, moduleID)
	if err != nil {
		return err
	}
	next := bump(st)
	if err := tx.SetModuleStatus(ctx, courseInstanceID, studentID, moduleID, next); err != nil {
		return err
	}
	t.Modules = append(t.Modules, EntityStatus{ID: moduleID, Status: next})
	if !cascade {
		return nil
	}

	ptr, err := tx.ModuleNext(ctx, courseInstanceID, moduleID)
	if err != nil {
		return err
	}
	if ptr.NextModuleID != "" {
		// Bump the next module and prime its first section and that
		// section's first item.
		if err := e.bumpModule(ctx, tx, courseInstanceID, studentID, ptr.NextModuleID, t); err != nil {
			return err
		}
		nextPtr, err := tx.ModuleNext(ctx, courseInstanceID, ptr.NextModuleID)
		if err != nil {
			return err
		}
		if err := e.bumpSection(ctx, tx, courseInstanceID, studentID, nextPtr.SectionID, t); err != nil {
			return err
		}
		secPtr, err := tx.SectionNext(ctx, courseInstanceID, nextPtr.SectionID)
		if err != nil {
			return err
		}
		return e.bumpItem(ctx, tx, courseInstanceID, studentID, secPtr.SectionItemID, t)
	}
	return e.advanceCourse(ctx, tx, courseInstanceID, studentID, t)
}

// advanceCourse is terminal: the course has no sibling and no parent.
func (e *Engine) advanceCourse(ctx context.Context, tx Tx, courseInstanceID, studentID string, t *Touched) error {
	st, err := tx.CourseStatus(ctx, courseInstanceID, studentID)
	if err != nil {
		return err
	}
	next := bump(st)
	if err := tx.SetCourseStatus(ctx, courseInstanceID, studentID, next); err != nil {
		return err
	}
	t.Course = &EntityStatus{ID: courseInstanceID, Status: next}
	return nil
}

func (e *Engine) bumpItem(ctx context.Context, tx Tx, courseInstanceID, studentID, itemID string, t *Touched) error {
	row, err := tx.ItemRow(ctx, courseInstanceID, studentID, itemID)
	if err != nil {
		return err
	}
	next := bump(row.Status)
	if err := tx.SetItemStatus(ctx, courseInstanceID, studentID, itemID, next); err != nil {
		return err
	}
	t.SectionItems = append(t.SectionItems, EntityStatus{ID: itemID, Status: next})
	return nil
}

func (e *Engine) bumpSection(ctx context.Context, tx Tx, courseInstanceID, studentID, sectionID string, t *Touched) error {
	row, err := tx.SectionRow(ctx, courseInstanceID, studentID, sectionID)
	if err != nil {
		return err
	}
	next := bump(row.Status)
	if err := tx.SetSectionStatus(ctx, courseInstanceID, studentID, sectionID, next); err != nil {
		return err
	}
	t.Sections = append(t.Sections, EntityStatus{ID: sectionID, Status: next})
	return nil
}

func (e *Engine) bumpModule(ctx context.Context, tx Tx, courseInstanceID, studentID, moduleID string, t *Touched) error {
	st, err := tx.ModuleStatus(ctx, courseInstanceID, studentID, moduleID)
	if err != nil {
		return err
	}
	next := bump(st)
	if err := tx.SetModuleStatus(ctx, courseInstanceID, studentID, moduleID, next); err != nil {
		return err
	}
	t.Modules = append(t.Modules, EntityStatus{ID: moduleID, Status: next})
	return nil
}
