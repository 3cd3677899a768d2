package service

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"dormitory_backend/internals/features/housing/model"
	rmodel "dormitory_backend/internals/features/registry/model"
	"dormitory_backend/internals/helpers/apperr"
)

// memStore is an in-memory Store. A failed Transaction restores the
// snapshot taken when it began.
type memStore struct {
	apps  map[int64]model.ApplicationModel
	rooms map[int64]model.RoomModel
	dorms map[int64]model.DormitoryModel
	runs  []model.ProcessingRunModel
	seq   int64

	fail map[string]error
	inTx bool
}

func newMemStore() *memStore {
	return &memStore{
		apps:  map[int64]model.ApplicationModel{},
		rooms: map[int64]model.RoomModel{},
		dorms: map[int64]model.DormitoryModel{},
		fail:  map[string]error{},
	}
}

func (m *memStore) hook(op string) error { return m.fail[op] }

func (m *memStore) nextID() int64 {
	m.seq++
	return m.seq
}

type memSnapshot struct {
	apps  map[int64]model.ApplicationModel
	rooms map[int64]model.RoomModel
	dorms map[int64]model.DormitoryModel
	runs  []model.ProcessingRunModel
	seq   int64
}

func (m *memStore) snapshot() memSnapshot {
	s := memSnapshot{
		apps:  make(map[int64]model.ApplicationModel, len(m.apps)),
		rooms: make(map[int64]model.RoomModel, len(m.rooms)),
		dorms: make(map[int64]model.DormitoryModel, len(m.dorms)),
		runs:  append([]model.ProcessingRunModel(nil), m.runs...),
		seq:   m.seq,
	}
	for k, v := range m.apps {
		s.apps[k] = v
	}
	for k, v := range m.rooms {
		s.rooms[k] = v
	}
	for k, v := range m.dorms {
		s.dorms[k] = v
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.apps, m.rooms, m.dorms, m.runs, m.seq = s.apps, s.rooms, s.dorms, s.runs, s.seq
}

func (m *memStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if m.inTx {
		return fn(m)
	}
	snap := m.snapshot()
	m.inTx = true
	err := fn(m)
	m.inTx = false
	if err != nil {
		m.restore(snap)
	}
	return err
}

/* ---------- applications ---------- */

func (m *memStore) CreateApplication(ctx context.Context, app *model.ApplicationModel) error {
	if err := m.hook("CreateApplication"); err != nil {
		return err
	}
	if app.ApplicationStatus.IsActive() {
		for _, a := range m.apps {
			if a.ApplicationStudentID == app.ApplicationStudentID && a.ApplicationStatus.IsActive() {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	app.ApplicationID = m.nextID()
	m.apps[app.ApplicationID] = *app
	return nil
}

func (m *memStore) SaveApplication(ctx context.Context, app *model.ApplicationModel) error {
	if err := m.hook("SaveApplication"); err != nil {
		return err
	}
	if _, ok := m.apps[app.ApplicationID]; !ok {
		return gorm.ErrRecordNotFound
	}
	// same partial unique index as uq_applications_active_student
	if app.ApplicationStatus.IsActive() {
		for id, a := range m.apps {
			if id != app.ApplicationID && a.ApplicationStudentID == app.ApplicationStudentID && a.ApplicationStatus.IsActive() {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	m.apps[app.ApplicationID] = *app
	return nil
}

func (m *memStore) GetApplication(ctx context.Context, id int64) (*model.ApplicationModel, error) {
	a, ok := m.apps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (m *memStore) LockApplication(ctx context.Context, id int64) (*model.ApplicationModel, error) {
	return m.GetApplication(ctx, id)
}

func (m *memStore) sortedApps() []model.ApplicationModel {
	out := make([]model.ApplicationModel, 0, len(m.apps))
	for _, a := range m.apps {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ApplicationDate.Equal(out[j].ApplicationDate) {
			return out[i].ApplicationDate.After(out[j].ApplicationDate)
		}
		return out[i].ApplicationID > out[j].ApplicationID
	})
	return out
}

func (m *memStore) LatestApplication(ctx context.Context, studentID int64, statuses ...model.ApplicationStatus) (*model.ApplicationModel, error) {
	for _, a := range m.sortedApps() {
		if a.ApplicationStudentID != studentID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, a.ApplicationStatus) {
			continue
		}
		a := a
		return &a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func containsStatus(list []model.ApplicationStatus, s model.ApplicationStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (m *memStore) ListApplications(ctx context.Context, offset, limit int) ([]model.ApplicationModel, int64, error) {
	all := m.sortedApps()
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *memStore) LockPendingApplications(ctx context.Context) ([]model.ApplicationModel, error) {
	if err := m.hook("LockPendingApplications"); err != nil {
		return nil, err
	}
	var out []model.ApplicationModel
	for _, a := range m.apps {
		if a.ApplicationStatus == model.ApplicationPending {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApplicationID < out[j].ApplicationID })
	return out, nil
}

func (m *memStore) ListAllocatedApplications(ctx context.Context, roomIDs []int64) ([]model.ApplicationModel, error) {
	want := map[int64]bool{}
	for _, id := range roomIDs {
		want[id] = true
	}
	var out []model.ApplicationModel
	for _, a := range m.apps {
		if a.HoldsRoom() && want[*a.ApplicationAllocatedRoomID] {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApplicationID < out[j].ApplicationID })
	return out, nil
}

func (m *memStore) CountAllocatedInDormitory(ctx context.Context, dormitoryID int64) (int64, error) {
	var n int64
	for _, a := range m.apps {
		if !a.HoldsRoom() {
			continue
		}
		if r, ok := m.rooms[*a.ApplicationAllocatedRoomID]; ok && r.RoomDormitoryID == dormitoryID {
			n++
		}
	}
	return n, nil
}

/* ---------- rooms ---------- */

func (m *memStore) withDormitory(r model.RoomModel) model.RoomModel {
	if d, ok := m.dorms[r.RoomDormitoryID]; ok {
		d.DormitoryRooms = nil
		r.Dormitory = &d
	}
	return r
}

func (m *memStore) GetRoom(ctx context.Context, id int64) (*model.RoomModel, error) {
	r, ok := m.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	r = m.withDormitory(r)
	return &r, nil
}

func (m *memStore) GetRooms(ctx context.Context, ids []int64) ([]model.RoomModel, error) {
	var out []model.RoomModel
	for _, id := range ids {
		if r, ok := m.rooms[id]; ok {
			out = append(out, m.withDormitory(r))
		}
	}
	return out, nil
}

func (m *memStore) LockRoom(ctx context.Context, id int64) (*model.RoomModel, error) {
	r, ok := m.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (m *memStore) sortedRooms() []model.RoomModel {
	out := make([]model.RoomModel, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoomDormitoryID != out[j].RoomDormitoryID {
			return out[i].RoomDormitoryID < out[j].RoomDormitoryID
		}
		return out[i].RoomID < out[j].RoomID
	})
	return out
}

func (m *memStore) LockFirstFreeRoom(ctx context.Context) (*model.RoomModel, error) {
	for _, r := range m.sortedRooms() {
		if r.HasSpace() {
			r := r
			return &r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) LockDormitoryRooms(ctx context.Context, dormitoryID int64) ([]model.RoomModel, error) {
	var out []model.RoomModel
	for _, r := range m.sortedRooms() {
		if r.RoomDormitoryID == dormitoryID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) IncrementOccupancy(ctx context.Context, roomID int64) error {
	if err := m.hook("IncrementOccupancy"); err != nil {
		return err
	}
	r, ok := m.rooms[roomID]
	if !ok || !r.HasSpace() {
		return apperr.Conflict("room %d is full", roomID)
	}
	r.RoomCurrentOccupancy++
	m.rooms[roomID] = r
	return nil
}

func (m *memStore) DecrementOccupancy(ctx context.Context, roomID int64) error {
	r, ok := m.rooms[roomID]
	if !ok {
		return nil
	}
	if r.RoomCurrentOccupancy > 0 {
		r.RoomCurrentOccupancy--
	}
	m.rooms[roomID] = r
	return nil
}

func (m *memStore) ListAvailableRooms(ctx context.Context) ([]model.RoomModel, error) {
	var out []model.RoomModel
	for _, r := range m.rooms {
		if r.HasSpace() {
			out = append(out, m.withDormitory(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.RoomDormitoryID != b.RoomDormitoryID {
			return a.RoomDormitoryID < b.RoomDormitoryID
		}
		if a.RoomFloorNumber != b.RoomFloorNumber {
			return a.RoomFloorNumber < b.RoomFloorNumber
		}
		return a.RoomNumber < b.RoomNumber
	})
	return out, nil
}

/* ---------- dormitories ---------- */

func (m *memStore) loadDormitory(d model.DormitoryModel, withRooms bool) model.DormitoryModel {
	d.DormitoryRooms = nil
	if withRooms {
		for _, r := range m.sortedRooms() {
			if r.RoomDormitoryID == d.DormitoryID {
				d.DormitoryRooms = append(d.DormitoryRooms, r)
			}
		}
	}
	return d
}

func (m *memStore) GetDormitory(ctx context.Context, id int64, withRooms bool) (*model.DormitoryModel, error) {
	d, ok := m.dorms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	d = m.loadDormitory(d, withRooms)
	return &d, nil
}

func (m *memStore) FindDormitoryByName(ctx context.Context, name string) (*model.DormitoryModel, error) {
	for _, d := range m.dorms {
		if d.DormitoryName == name {
			d := d
			return &d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) ListDormitories(ctx context.Context, withRooms bool) ([]model.DormitoryModel, error) {
	out := make([]model.DormitoryModel, 0, len(m.dorms))
	for _, d := range m.dorms {
		out = append(out, m.loadDormitory(d, withRooms))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DormitoryID < out[j].DormitoryID })
	return out, nil
}

func (m *memStore) CreateDormitory(ctx context.Context, d *model.DormitoryModel) error {
	if _, err := m.FindDormitoryByName(ctx, d.DormitoryName); err == nil {
		return gorm.ErrDuplicatedKey
	}
	d.DormitoryID = m.nextID()
	stored := *d
	stored.DormitoryRooms = nil
	m.dorms[d.DormitoryID] = stored
	return nil
}

func (m *memStore) UpdateDormitoryAddress(ctx context.Context, id int64, address string) error {
	d, ok := m.dorms[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.DormitoryAddress = address
	m.dorms[id] = d
	return nil
}

func (m *memStore) DeleteDormitory(ctx context.Context, id int64) error {
	for rid, r := range m.rooms {
		if r.RoomDormitoryID == id {
			delete(m.rooms, rid)
		}
	}
	delete(m.dorms, id)
	return nil
}

func (m *memStore) ReplaceRooms(ctx context.Context, dormitoryID int64, rooms []model.RoomModel) error {
	if err := m.hook("ReplaceRooms"); err != nil {
		return err
	}
	for rid, r := range m.rooms {
		if r.RoomDormitoryID == dormitoryID {
			delete(m.rooms, rid)
		}
	}
	for i := range rooms {
		rooms[i].RoomID = m.nextID()
		rooms[i].RoomDormitoryID = dormitoryID
		m.rooms[rooms[i].RoomID] = rooms[i]
	}
	return nil
}

func (m *memStore) CreateProcessingRun(ctx context.Context, run *model.ProcessingRunModel) error {
	if err := m.hook("CreateProcessingRun"); err != nil {
		return err
	}
	m.runs = append(m.runs, *run)
	return nil
}

/* ---------- directory ---------- */

type memDirectory struct {
	students map[int64]rmodel.StudentModel
	err      error
}

func newMemDirectory() *memDirectory {
	return &memDirectory{students: map[int64]rmodel.StudentModel{}}
}

func (d *memDirectory) add(id int64, ticket, lastName string, foreign bool) rmodel.StudentModel {
	st := rmodel.StudentModel{
		ID:                  id,
		StudentTicketNumber: ticket,
		LastName:            lastName,
		FirstName:           "First" + ticket,
		IsForeign:           foreign,
		CityOfResidence:     "Kazan",
		GroupID:             1,
	}
	d.students[id] = st
	return st
}

func (d *memDirectory) FindByTicketAndSurname(ctx context.Context, ticket, lastName string) (*rmodel.StudentModel, error) {
	if d.err != nil {
		return nil, d.err
	}
	for _, st := range d.students {
		if st.StudentTicketNumber == ticket && strings.EqualFold(st.LastName, lastName) {
			st := st
			return &st, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (d *memDirectory) FindByID(ctx context.Context, id int64) (*rmodel.StudentModel, error) {
	if d.err != nil {
		return nil, d.err
	}
	st, ok := d.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &st, nil
}

func (d *memDirectory) FindByIDs(ctx context.Context, ids []int64) ([]rmodel.StudentModel, error) {
	if d.err != nil {
		return nil, d.err
	}
	var out []rmodel.StudentModel
	seen := map[int64]bool{}
	for _, id := range ids {
		if st, ok := d.students[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, st)
		}
	}
	return out, nil
}

func errDuplicate() error { return gorm.ErrDuplicatedKey }
