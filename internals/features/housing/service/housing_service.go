package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dormitory_backend/internals/features/housing/dto"
	"dormitory_backend/internals/features/housing/model"
	rmodel "dormitory_backend/internals/features/registry/model"
)

const (
	ReasonAwaitingRoom     = "Approved, but no rooms are currently available. Awaiting allocation."
	ReasonAutoAwaitingRoom = "Meets the criteria and approved, but no rooms are currently available. Awaiting allocation."
	ReasonStudentMissing   = "Student record not found in the external registry."
	ReasonNotNonResident   = "Student is not a non-resident."
)

// HousingService owns application lifecycle, room allocation and the
// dormitory structure. Every write runs in one Store transaction and returns
// a projection read after commit.
type HousingService struct {
	Store     Store
	Directory Directory
	Log       *logrus.Entry
	Now       func() time.Time
}

func NewHousingService(store Store, dir Directory, log *logrus.Entry) *HousingService {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &HousingService{
		Store:     store,
		Directory: dir,
		Log:       log.WithField("component", "housing"),
		Now:       time.Now,
	}
}

func (s *HousingService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

func trimmedReason(r *string) *string {
	if r == nil {
		return nil
	}
	v := strings.TrimSpace(*r)
	if v == "" {
		return nil
	}
	return &v
}

func strPtr(s string) *string { return &s }

/* ================= projections ================= */

// student resolves a weak student reference; missing students yield nil.
func (s *HousingService) student(ctx context.Context, id int64) (*rmodel.StudentModel, error) {
	st, err := s.Directory.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return st, nil
}

// allocatedRoom loads the room (with dormitory) the application holds, nil when dangling.
func (s *HousingService) allocatedRoom(ctx context.Context, app *model.ApplicationModel) (*model.RoomModel, error) {
	if !app.HoldsRoom() {
		return nil, nil
	}
	room, err := s.Store.GetRoom(ctx, *app.ApplicationAllocatedRoomID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

func (s *HousingService) applicationView(ctx context.Context, id int64) (*dto.ApplicationResponse, error) {
	app, err := s.Store.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	st, err := s.student(ctx, app.ApplicationStudentID)
	if err != nil {
		return nil, err
	}
	room, err := s.allocatedRoom(ctx, app)
	if err != nil {
		return nil, err
	}
	out := dto.FromApplicationModel(app, st, room)
	return &out, nil
}

/* ================= allocation core ================= */

// releaseRoom gives back the seat held by app (clamped at zero) and clears
// the room reference and reason. Reports whether a seat was actually freed.
func (s *HousingService) releaseRoom(ctx context.Context, tx Store, app *model.ApplicationModel) (bool, error) {
	if app.ApplicationAllocatedRoomID == nil {
		return false, nil
	}
	roomID := *app.ApplicationAllocatedRoomID
	app.ApplicationAllocatedRoomID = nil
	app.ApplicationRejectionReason = nil

	if _, err := tx.LockRoom(ctx, roomID); err != nil {
		if isNotFound(err) {
			s.Log.WithFields(logrus.Fields{
				"application_id": app.ApplicationID,
				"room_id":        roomID,
			}).Warn("allocated room no longer exists, clearing reference")
			return false, nil
		}
		return false, err
	}
	if err := tx.DecrementOccupancy(ctx, roomID); err != nil {
		return false, err
	}
	return true, nil
}

// allocateFirstFree binds app to the first room with space. When every room
// is full the application is left approved with waitingReason.
func (s *HousingService) allocateFirstFree(ctx context.Context, tx Store, app *model.ApplicationModel, waitingReason string) (bool, error) {
	room, err := tx.LockFirstFreeRoom(ctx)
	if err != nil {
		if isNotFound(err) {
			app.ApplicationStatus = model.ApplicationApproved
			app.ApplicationAllocatedRoomID = nil
			app.ApplicationRejectionReason = strPtr(waitingReason)
			return false, nil
		}
		return false, err
	}
	if err := tx.IncrementOccupancy(ctx, room.RoomID); err != nil {
		return false, err
	}
	roomID := room.RoomID
	app.ApplicationStatus = model.ApplicationAllocated
	app.ApplicationAllocatedRoomID = &roomID
	app.ApplicationRejectionReason = nil
	return true, nil
}
