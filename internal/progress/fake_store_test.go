package progress_test

import (
	"context"
	"fmt"

	"github.com/pacewise/pacewise-progress/internal/progress"
)

/* ---------------- In-memory fake satisfying progress.Store & progress.Tx ---------------- */

type sectionRec struct {
	status   progress.Status
	moduleID string
}

type itemRec struct {
	status    progress.Status
	sectionID string
}

type fakeStore struct {
	courses  map[string]progress.Status
	modules  map[string]progress.Status
	sections map[string]sectionRec
	items    map[string]itemRec

	moduleNext  map[string]progress.ModuleNext
	sectionNext map[string]progress.SectionNext
	itemNext    map[string]progress.SectionItemNext

	txCount int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		courses:     map[string]progress.Status{},
		modules:     map[string]progress.Status{},
		sections:    map[string]sectionRec{},
		items:       map[string]itemRec{},
		moduleNext:  map[string]progress.ModuleNext{},
		sectionNext: map[string]progress.SectionNext{},
		itemNext:    map[string]progress.SectionItemNext{},
	}
}

func key(parts ...string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out = fmt.Sprintf("%s|%s", out, p)
	}
	return out
}

func (f *fakeStore) InTx(ctx context.Context, fn func(progress.Tx) error) error {
	f.txCount++
	return fn(f)
}

func (f *fakeStore) GetCourseProgress(ctx context.Context, cid, sid string) (progress.Status, error) {
	return f.CourseStatus(ctx, cid, sid)
}
func (f *fakeStore) GetModuleProgress(ctx context.Context, cid, sid, mid string) (progress.Status, error) {
	return f.ModuleStatus(ctx, cid, sid, mid)
}
func (f *fakeStore) GetSectionProgress(ctx context.Context, cid, sid, secID string) (progress.Status, error) {
	row, err := f.SectionRow(ctx, cid, sid, secID)
	return row.Status, err
}
func (f *fakeStore) GetSectionItemProgress(ctx context.Context, cid, sid, itemID string) (progress.Status, error) {
	row, err := f.ItemRow(ctx, cid, sid, itemID)
	return row.Status, err
}

func (f *fakeStore) CourseStatus(_ context.Context, cid, sid string) (progress.Status, error) {
	st, ok := f.courses[key(cid, sid)]
	if !ok {
		return "", progress.ErrProgressNotFound
	}
	return st, nil
}

func (f *fakeStore) SetCourseStatus(_ context.Context, cid, sid string, st progress.Status) error {
	f.courses[key(cid, sid)] = st
	return nil
}

func (f *fakeStore) ModuleStatus(_ context.Context, cid, sid, mid string) (progress.Status, error) {
	st, ok := f.modules[key(cid, sid, mid)]
	if !ok {
		return "", progress.ErrProgressNotFound
	}
	return st, nil
}

func (f *fakeStore) SetModuleStatus(_ context.Context, cid, sid, mid string, st progress.Status) error {
	f.modules[key(cid, sid, mid)] = st
	return nil
}

func (f *fakeStore) SectionRow(_ context.Context, cid, sid, secID string) (progress.SectionRow, error) {
	rec, ok := f.sections[key(cid, sid, secID)]
	if !ok {
		return progress.SectionRow{}, progress.ErrProgressNotFound
	}
	return progress.SectionRow{Status: rec.status, ModuleID: rec.moduleID}, nil
}

func (f *fakeStore) SetSectionStatus(_ context.Context, cid, sid, secID string, st progress.Status) error {
	rec := f.sections[key(cid, sid, secID)]
	rec.status = st
	f.sections[key(cid, sid, secID)] = rec
	return nil
}

func (f *fakeStore) ItemRow(_ context.Context, cid, sid, itemID string) (progress.ItemRow, error) {
	rec, ok := f.items[key(cid, sid, itemID)]
	if !ok {
		return progress.ItemRow{}, progress.ErrProgressNotFound
	}
	return progress.ItemRow{Status: rec.status, SectionID: rec.sectionID}, nil
}

func (f *fakeStore) SetItemStatus(_ context.Context, cid, sid, itemID string, st progress.Status) error {
	rec := f.items[key(cid, sid, itemID)]
	rec.status = st
	f.items[key(cid, sid, itemID)] = rec
	return nil
}

func (f *fakeStore) ModuleNext(_ context.Context, cid, mid string) (progress.ModuleNext, error) {
	n, ok := f.moduleNext[key(cid, mid)]
	if !ok {
		return progress.ModuleNext{}, progress.ErrProgressNotFound
	}
	return n, nil
}

func (f *fakeStore) SectionNext(_ context.Context, cid, secID string) (progress.SectionNext, error) {
	n, ok := f.sectionNext[key(cid, secID)]
	if !ok {
		return progress.SectionNext{}, progress.ErrProgressNotFound
	}
	return n, nil
}

func (f *fakeStore) ItemNext(_ context.Context, cid, itemID string) (progress.SectionItemNext, error) {
	n, ok := f.itemNext[key(cid, itemID)]
	if !ok {
		return progress.SectionItemNext{}, progress.ErrProgressNotFound
	}
	return n, nil
}

func (f *fakeStore) ItemPredecessor(_ context.Context, cid, itemID string) (string, bool, error) {
	for _, n := range f.itemNext {
		if n.NextSectionItemID == itemID {
			return n.SectionItemID, true, nil
		}
	}
	return "", false, nil
}

func (f *fakeStore) InsertModuleProgress(_ context.Context, cid, sid, mid string, st progress.Status) error {
	f.modules[key(cid, sid, mid)] = st
	return nil
}

func (f *fakeStore) InsertSectionProgress(_ context.Context, cid, sid, secID, mid string, st progress.Status) error {
	f.sections[key(cid, sid, secID)] = sectionRec{status: st, moduleID: mid}
	return nil
}

func (f *fakeStore) InsertItemProgress(_ context.Context, cid, sid, itemID, secID string, st progress.Status) error {
	f.items[key(cid, sid, itemID)] = itemRec{status: st, sectionID: secID}
	return nil
}

func (f *fakeStore) EnsureCourseProgress(_ context.Context, cid, sid string, st progress.Status) (bool, error) {
	if _, ok := f.courses[key(cid, sid)]; ok {
		return false, nil
	}
	f.courses[key(cid, sid)] = st
	return true, nil
}

func (f *fakeStore) PutIndex(_ context.Context, cid string, idx progress.Index) error {
	for _, m := range idx.Modules {
		f.moduleNext[key(cid, m.ModuleID)] = m
	}
	for _, s := range idx.Sections {
		f.sectionNext[key(cid, s.SectionID)] = s
	}
	for _, it := range idx.Items {
		f.itemNext[key(cid, it.SectionItemID)] = it
	}
	return nil
}
