package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dormitory_backend/internals/features/housing/dto"
	"dormitory_backend/internals/features/housing/model"
	"dormitory_backend/internals/helpers/apperr"
	"dormitory_backend/internals/metrics"
)

// SubmitApplication files a pending application for the student identified
// by ticket and surname.
func (s *HousingService) SubmitApplication(ctx context.Context, ticket, lastName string) (*dto.ApplicationResponse, error) {
	req := dto.CreateApplicationRequest{StudentTicketNumber: ticket, LastName: lastName}
	req.Normalize()
	if req.StudentTicketNumber == "" || req.LastName == "" {
		return nil, apperr.Validation("student_ticket_number and last_name are required")
	}

	st, err := s.Directory.FindByTicketAndSurname(ctx, req.StudentTicketNumber, req.LastName)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("student with ticket %q and last name %q not found", req.StudentTicketNumber, req.LastName)
		}
		return nil, err
	}

	var created model.ApplicationModel
	err = s.Store.Transaction(ctx, func(tx Store) error {
		existing, err := tx.LatestApplication(ctx, st.ID, model.ActiveApplicationStatuses...)
		if err == nil {
			return apperr.Conflict("student already has an active application (id %d, status %s)",
				existing.ApplicationID, existing.ApplicationStatus)
		}
		if !isNotFound(err) {
			return err
		}

		created = model.ApplicationModel{
			ApplicationStudentID: st.ID,
			ApplicationDate:      s.now(),
			ApplicationStatus:    model.ApplicationPending,
		}
		if err := tx.CreateApplication(ctx, &created); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Wrap(apperr.KindConflict, err, "student already has an active application")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"application_id": created.ApplicationID,
		"student_id":     st.ID,
	}).Info("application submitted")

	out := dto.FromApplicationModel(&created, st, nil)
	return &out, nil
}

// StatusByStudent reports the student's current application: the newest
// active one, else the newest of any status.
func (s *HousingService) StatusByStudent(ctx context.Context, ticket, lastName string) (*dto.ApplicationStatusResponse, error) {
	req := dto.StatusCheckRequest{StudentTicketNumber: ticket, LastName: lastName}
	req.Normalize()
	if req.StudentTicketNumber == "" || req.LastName == "" {
		return nil, apperr.Validation("student_ticket_number and last_name are required")
	}

	st, err := s.Directory.FindByTicketAndSurname(ctx, req.StudentTicketNumber, req.LastName)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("student with ticket %q and last name %q not found", req.StudentTicketNumber, req.LastName)
		}
		return nil, err
	}

	app, err := s.Store.LatestApplication(ctx, st.ID, model.ActiveApplicationStatuses...)
	if isNotFound(err) {
		app, err = s.Store.LatestApplication(ctx, st.ID)
	}
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("no application found for student %q", req.StudentTicketNumber)
		}
		return nil, err
	}

	room, err := s.allocatedRoom(ctx, app)
	if err != nil {
		return nil, err
	}
	out := dto.ToApplicationStatusResponse(app, st, room)
	return &out, nil
}

// UpdateStatus applies a staff decision. Leaving allocated frees the seat;
// approving tries to allocate the first free room right away.
func (s *HousingService) UpdateStatus(ctx context.Context, id int64, target model.ApplicationStatus, reason *string) (*dto.ApplicationResponse, error) {
	if !target.Valid() {
		return nil, apperr.Validation("invalid status %q", target)
	}

	var (
		from                model.ApplicationStatus
		released, allocated bool
	)
	err := s.Store.Transaction(ctx, func(tx Store) error {
		app, err := tx.LockApplication(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return apperr.NotFound("application %d not found", id)
			}
			return err
		}
		from = app.ApplicationStatus

		// reopening a rejected application must not give the student a second active one
		if !from.IsActive() && target.IsActive() {
			other, err := tx.LatestApplication(ctx, app.ApplicationStudentID, model.ActiveApplicationStatuses...)
			switch {
			case err == nil && other.ApplicationID != app.ApplicationID:
				return apperr.Conflict("student already has an active application (id %d, status %s)",
					other.ApplicationID, other.ApplicationStatus)
			case err != nil && !isNotFound(err):
				return err
			}
		}

		if app.ApplicationStatus == model.ApplicationAllocated && target != model.ApplicationAllocated {
			if released, err = s.releaseRoom(ctx, tx, app); err != nil {
				return err
			}
		}

		if target == model.ApplicationApproved {
			if allocated, err = s.allocateFirstFree(ctx, tx, app, ReasonAwaitingRoom); err != nil {
				return err
			}
		} else {
			app.ApplicationStatus = target
			app.ApplicationRejectionReason = trimmedReason(reason)
		}

		if err := tx.SaveApplication(ctx, app); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Wrap(apperr.KindConflict, err, "student already has an active application")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out, err := s.applicationView(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(from), string(out.Status))
	if released {
		metrics.RecordRelease("status_update")
	}
	if allocated {
		metrics.RecordAllocation("status_update")
	}
	s.Log.WithFields(logrus.Fields{
		"application_id": id,
		"from":           from,
		"requested":      target,
		"to":             out.Status,
	}).Info("application status updated")
	return out, nil
}

// ReassignRoom moves an allocated application into roomID.
func (s *HousingService) ReassignRoom(ctx context.Context, id, roomID int64) (*dto.ApplicationResponse, error) {
	var moved, released bool
	err := s.Store.Transaction(ctx, func(tx Store) error {
		app, err := tx.LockApplication(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return apperr.NotFound("application %d not found", id)
			}
			return err
		}
		if app.ApplicationStatus != model.ApplicationAllocated {
			return apperr.InvalidState("application %d must be allocated to change its room (status %s)", id, app.ApplicationStatus)
		}

		prev := app.ApplicationAllocatedRoomID
		if prev != nil && *prev == roomID {
			if _, err := tx.GetRoom(ctx, roomID); err != nil {
				if isNotFound(err) {
					return apperr.NotFound("room %d not found", roomID)
				}
				return err
			}
			return nil
		}

		// lock in ascending id order
		if prev != nil && *prev < roomID {
			if _, err := tx.LockRoom(ctx, *prev); err != nil && !isNotFound(err) {
				return err
			}
		}
		target, err := tx.LockRoom(ctx, roomID)
		if err != nil {
			if isNotFound(err) {
				return apperr.NotFound("room %d not found", roomID)
			}
			return err
		}
		if !target.HasSpace() {
			return apperr.Conflict("room %d is full (%d/%d)", roomID, target.RoomCurrentOccupancy, target.RoomCapacity)
		}

		if released, err = s.releaseRoom(ctx, tx, app); err != nil {
			return err
		}
		if err := tx.IncrementOccupancy(ctx, roomID); err != nil {
			return err
		}
		app.ApplicationAllocatedRoomID = &roomID
		app.ApplicationRejectionReason = nil
		moved = true
		return tx.SaveApplication(ctx, app)
	})
	if err != nil {
		return nil, err
	}

	if moved {
		if released {
			metrics.RecordRelease("reassign")
		}
		metrics.RecordAllocation("reassign")
		s.Log.WithFields(logrus.Fields{"application_id": id, "room_id": roomID}).Info("application moved to room")
	}
	return s.applicationView(ctx, id)
}

// ListApplications returns the newest applications first with student and room info.
func (s *HousingService) ListApplications(ctx context.Context, offset, limit int) ([]dto.ApplicationResponse, int64, error) {
	apps, total, err := s.Store.ListApplications(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	studentIDs := make([]int64, 0, len(apps))
	roomIDs := make([]int64, 0, len(apps))
	for i := range apps {
		studentIDs = append(studentIDs, apps[i].ApplicationStudentID)
		if apps[i].HoldsRoom() {
			roomIDs = append(roomIDs, *apps[i].ApplicationAllocatedRoomID)
		}
	}

	students, err := s.Directory.FindByIDs(ctx, studentIDs)
	if err != nil {
		return nil, 0, err
	}
	byStudent := make(map[int64]int, len(students))
	for i := range students {
		byStudent[students[i].ID] = i
	}

	byRoom := map[int64]*model.RoomModel{}
	if len(roomIDs) > 0 {
		rooms, err := s.Store.GetRooms(ctx, roomIDs)
		if err != nil {
			return nil, 0, err
		}
		for i := range rooms {
			byRoom[rooms[i].RoomID] = &rooms[i]
		}
	}

	out := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		a := &apps[i]
		var room *model.RoomModel
		if a.HoldsRoom() {
			room = byRoom[*a.ApplicationAllocatedRoomID]
		}
		if idx, ok := byStudent[a.ApplicationStudentID]; ok {
			out = append(out, dto.FromApplicationModel(a, &students[idx], room))
		} else {
			out = append(out, dto.FromApplicationModel(a, nil, room))
		}
	}
	return out, total, nil
}
