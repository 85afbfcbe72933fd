package progress

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// DefaultChunkSize bounds the number of students seeded per transaction so
// very large enrollments stay within store batch limits. Each chunk is
// atomic; the whole initialization only counts as done when every chunk
// committed.
const DefaultChunkSize = 500

// Initializer seeds per-student progress rows and the shared next-pointer
// index when a course instance is published or a student batch enrolls.
type Initializer struct {
	store     Store
	chunkSize int
	log       *logrus.Logger
}

func NewInitializer(store Store, chunkSize int, log *logrus.Logger) *Initializer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if log == nil {
		log = logrus.New()
	}
	return &Initializer{store: store, chunkSize: chunkSize, log: log}
}

// Initialize creates, for every student, one INCOMPLETE row per module,
// section and item — except the head entities (first module, its first
// section, that section's first item), which start IN_PROGRESS — plus an
// IN_PROGRESS course row if none exists. Index rows are written once, with
// duplicate-skip, inside the first chunk's transaction.
func (ini *Initializer) Initialize(ctx context.Context, courseInstanceID string, studentIDs []string, modules []ModuleNode) (InitResult, error) {
	idx, err := BuildIndex(modules)
	if err != nil {
		return InitResult{}, err
	}

	headModule := idx.Modules[0].ModuleID
	headSection := idx.Modules[0].SectionID
	headItem := firstItemOf(idx, headSection)

	// Parent lookups for the denormalized section_id / module_id columns.
	moduleOf := map[string]string{}
	sectionOf := map[string]string{}
	for _, m := range sortedModules(modules) {
		for _, s := range m.Sections {
			moduleOf[s.ID] = m.ID
			for _, it := range s.Items {
				sectionOf[it.ID] = s.ID
			}
		}
	}

	res := InitResult{StudentCount: len(studentIDs)}
	for start := 0; start < len(studentIDs); start += ini.chunkSize {
		end := start + ini.chunkSize
		if end > len(studentIDs) {
			end = len(studentIDs)
		}
		chunk := studentIDs[start:end]
		first := start == 0

		err := ini.store.InTx(ctx, func(tx Tx) error {
			if first {
				if err := tx.PutIndex(ctx, courseInstanceID, idx); err != nil {
					return fmt.Errorf("write index: %w", err)
				}
			}
			for _, sid := range chunk {
				n, err := ini.seedStudent(ctx, tx, courseInstanceID, sid, idx, headModule, headSection, headItem, moduleOf, sectionOf)
				if err != nil {
					return fmt.Errorf("seed student %s: %w", sid, err)
				}
				res.TotalRecords += n
			}
			return nil
		})
		if err != nil {
			return InitResult{}, err
		}
	}

	ini.log.WithFields(logrus.Fields{
		"course_instance": courseInstanceID,
		"students":        res.StudentCount,
		"records":         res.TotalRecords,
	}).Info("progress initialized")
	return res, nil
}

func (ini *Initializer) seedStudent(ctx context.Context, tx Tx, courseInstanceID, studentID string, idx Index, headModule, headSection, headItem string, moduleOf, sectionOf map[string]string) (int, error) {
	n := 0
	for _, m := range idx.Modules {
		st := StatusIncomplete
		if m.ModuleID == headModule {
			st = StatusInProgress
		}
		if err := tx.InsertModuleProgress(ctx, courseInstanceID, studentID, m.ModuleID, st); err != nil {
			return n, err
		}
		n++
	}
	for _, s := range idx.Sections {
		st := StatusIncomplete
		if s.SectionID == headSection {
			st = StatusInProgress
		}
		if err := tx.InsertSectionProgress(ctx, courseInstanceID, studentID, s.SectionID, moduleOf[s.SectionID], st); err != nil {
			return n, err
		}
		n++
	}
	for _, it := range idx.Items {
		st := StatusIncomplete
		if it.SectionItemID == headItem {
			st = StatusInProgress
		}
		if err := tx.InsertItemProgress(ctx, courseInstanceID, studentID, it.SectionItemID, sectionOf[it.SectionItemID], st); err != nil {
			return n, err
		}
		n++
	}
	created, err := tx.EnsureCourseProgress(ctx, courseInstanceID, studentID, StatusInProgress)
	if err != nil {
		return n, err
	}
	if created {
		n++
	}
	return n, nil
}

func firstItemOf(idx Index, sectionID string) string {
	for _, s := range idx.Sections {
		if s.SectionID == sectionID {
			return s.SectionItemID
		}
	}
	return ""
}
