package progress

// Status is the per-student completion state of a single catalog entity.
// It only ever moves forward: INCOMPLETE -> IN_PROGRESS -> COMPLETE.
type Status string

const (
	StatusIncomplete Status = "INCOMPLETE"
	StatusInProgress Status = "IN_PROGRESS"
	StatusComplete   Status = "COMPLETE"
)

func (s Status) rank() int {
	switch s {
	case StatusIncomplete:
		return 0
	case StatusInProgress:
		return 1
	case StatusComplete:
		return 2
	}
	return -1
}

// bump is the one-step advance rule: an untouched entity becomes
// IN_PROGRESS, anything already started becomes (or stays) COMPLETE.
func bump(s Status) Status {
	if s == StatusIncomplete {
		return StatusInProgress
	}
	return StatusComplete
}

// Catalog tree as handed over by the catalog service at publish time.
// Sequence numbers are unique within the parent and define the student's
// linear path.

type ItemNode struct {
	ID       string `json:"id"`
	Sequence int    `json:"sequence"`
}

type SectionNode struct {
	ID       string     `json:"id"`
	Sequence int        `json:"sequence"`
	Items    []ItemNode `json:"items"`
}

type ModuleNode struct {
	ID       string        `json:"id"`
	Sequence int           `json:"sequence"`
	Sections []SectionNode `json:"sections"`
}

// Next-pointer rows. One set per course instance, shared by every student.
// An empty next id means "last at this level"; the child id is the
// sequence-1 entity one level down, used to prime a freshly entered subtree.

type ModuleNext struct {
	ModuleID     string
	NextModuleID string
	SectionID    string // first section of ModuleID
}

type SectionNext struct {
	SectionID     string
	NextSectionID string
	SectionItemID string // first item of SectionID
}

type SectionItemNext struct {
	SectionItemID     string
	NextSectionItemID string
}

// Index is the full forward-link structure for one course instance.
type Index struct {
	Modules []ModuleNext
	Sections []SectionNext
	Items    []SectionItemNext
}

// ItemRow and SectionRow are progress rows together with the parent id the
// cascade needs to climb the hierarchy. Parent ids are denormalized onto the
// progress rows at initialization time so a cascade never has to consult the
// catalog service.
type ItemRow struct {
	Status    Status
	SectionID string
}

type SectionRow struct {
	Status   Status
	ModuleID string
}

// EntityStatus is one touched entity in an advance result.
type EntityStatus struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

// Touched reports every progress row an advance call wrote, grouped by level.
type Touched struct {
	Course       *EntityStatus  `json:"course,omitempty"`
	Modules      []EntityStatus `json:"modules,omitempty"`
	Sections     []EntityStatus `json:"sections,omitempty"`
	SectionItems []EntityStatus `json:"section_items,omitempty"`
}

// InitResult summarizes a bulk initialization.
type InitResult struct {
	StudentCount int `json:"student_count"`
	TotalRecords int `json:"total_records"`
}
