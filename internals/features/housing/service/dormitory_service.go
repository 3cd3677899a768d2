package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dormitory_backend/internals/features/housing/dto"
	"dormitory_backend/internals/features/housing/model"
	rmodel "dormitory_backend/internals/features/registry/model"
	"dormitory_backend/internals/helpers/apperr"
)

/* ================= create / delete ================= */

func (s *HousingService) CreateDormitory(ctx context.Context, name, address string) (*dto.DormitoryResponse, error) {
	req := dto.CreateDormitoryRequest{Name: name, Address: address}
	req.Normalize()
	if req.Name == "" || req.Address == "" {
		return nil, apperr.Validation("name and address are required")
	}

	d := model.DormitoryModel{DormitoryName: req.Name, DormitoryAddress: req.Address}
	err := s.Store.Transaction(ctx, func(tx Store) error {
		if _, err := tx.FindDormitoryByName(ctx, req.Name); err == nil {
			return apperr.Conflict("dormitory with name %q already exists", req.Name)
		} else if !isNotFound(err) {
			return err
		}
		if err := tx.CreateDormitory(ctx, &d); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Wrap(apperr.KindConflict, err, "dormitory with name %q already exists", req.Name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{"dormitory_id": d.DormitoryID, "name": d.DormitoryName}).Info("dormitory created")
	out := dto.FromDormitoryModel(&d)
	return &out, nil
}

// DeleteDormitory removes the dormitory and its rooms unless somebody lives there.
func (s *HousingService) DeleteDormitory(ctx context.Context, id int64) error {
	err := s.Store.Transaction(ctx, func(tx Store) error {
		if _, err := tx.GetDormitory(ctx, id, false); err != nil {
			if isNotFound(err) {
				return apperr.NotFound("dormitory %d not found", id)
			}
			return err
		}
		if _, err := tx.LockDormitoryRooms(ctx, id); err != nil {
			return err
		}
		n, err := tx.CountAllocatedInDormitory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("dormitory %d has %d allocated residents and cannot be deleted", id, n)
		}
		return tx.DeleteDormitory(ctx, id)
	})
	if err != nil {
		return err
	}
	s.Log.WithField("dormitory_id", id).Info("dormitory deleted")
	return nil
}

/* ================= structure ================= */

func validateRooms(rooms []dto.RoomRequest) error {
	for i, r := range rooms {
		if strings.TrimSpace(r.RoomNumber) == "" {
			return apperr.Validation("rooms[%d]: room_number is required", i)
		}
		if r.Capacity <= 0 {
			return apperr.Validation("rooms[%d]: capacity must be positive", i)
		}
	}
	return nil
}

// replaceRoomsTx swaps the room set inside tx. Allocations pointing at the
// old rooms are left dangling; their count is logged.
func (s *HousingService) replaceRoomsTx(ctx context.Context, tx Store, dormitoryID int64, rooms []dto.RoomRequest) error {
	if _, err := tx.LockDormitoryRooms(ctx, dormitoryID); err != nil {
		return err
	}
	n, err := tx.CountAllocatedInDormitory(ctx, dormitoryID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.Log.WithFields(logrus.Fields{
			"dormitory_id": dormitoryID,
			"dangling":     n,
		}).Warn("replacing rooms with allocated residents, their room references will dangle")
	}
	return tx.ReplaceRooms(ctx, dormitoryID, dto.ToRoomModels(dormitoryID, rooms))
}

// ReplaceRooms drops every room of the dormitory and inserts rooms at zero occupancy.
func (s *HousingService) ReplaceRooms(ctx context.Context, dormitoryID int64, rooms []dto.RoomRequest) (*dto.DormitoryResponse, error) {
	if err := validateRooms(rooms); err != nil {
		return nil, err
	}

	err := s.Store.Transaction(ctx, func(tx Store) error {
		if _, err := tx.GetDormitory(ctx, dormitoryID, false); err != nil {
			if isNotFound(err) {
				return apperr.NotFound("dormitory %d not found", dormitoryID)
			}
			return err
		}
		return s.replaceRoomsTx(ctx, tx, dormitoryID, rooms)
	})
	if err != nil {
		return nil, err
	}

	d, err := s.Store.GetDormitory(ctx, dormitoryID, true)
	if err != nil {
		return nil, err
	}
	s.Log.WithFields(logrus.Fields{"dormitory_id": dormitoryID, "rooms": len(rooms)}).Info("dormitory rooms replaced")
	out := dto.FromDormitoryModel(d)
	return &out, nil
}

// ImportStructure upserts dormitories by name, replacing their rooms.
func (s *HousingService) ImportStructure(ctx context.Context, payload dto.DormitoryStructureExport) (*dto.ImportResult, error) {
	for i, d := range payload.Dormitories {
		if strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.Address) == "" {
			return nil, apperr.Validation("dormitories[%d]: name and address are required", i)
		}
		if err := validateRooms(d.Rooms); err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, err, "dormitories[%d]", i)
		}
	}

	var res dto.ImportResult
	err := s.Store.Transaction(ctx, func(tx Store) error {
		for _, in := range payload.Dormitories {
			name := strings.TrimSpace(in.Name)
			address := strings.TrimSpace(in.Address)

			d, err := tx.FindDormitoryByName(ctx, name)
			switch {
			case isNotFound(err):
				d = &model.DormitoryModel{DormitoryName: name, DormitoryAddress: address}
				if err := tx.CreateDormitory(ctx, d); err != nil {
					return err
				}
				res.Created++
			case err != nil:
				return err
			default:
				if err := tx.UpdateDormitoryAddress(ctx, d.DormitoryID, address); err != nil {
					return err
				}
				res.Updated++
			}

			if err := s.replaceRoomsTx(ctx, tx, d.DormitoryID, in.Rooms); err != nil {
				return err
			}
			res.Rooms += len(in.Rooms)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"created": res.Created,
		"updated": res.Updated,
		"rooms":   res.Rooms,
	}).Info("dormitory structure imported")
	return &res, nil
}

func (s *HousingService) ExportStructure(ctx context.Context) (*dto.DormitoryStructureExport, error) {
	list, err := s.Store.ListDormitories(ctx, true)
	if err != nil {
		return nil, err
	}
	out := dto.ToDormitoryStructureExport(list)
	return &out, nil
}

/* ================= read projections ================= */

func (s *HousingService) ListDormitories(ctx context.Context) ([]dto.DormitoryResponse, error) {
	list, err := s.Store.ListDormitories(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DormitoryResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.FromDormitoryModel(&list[i]))
	}
	return out, nil
}

// AvailableRooms lists rooms with spare capacity, ordered by dormitory, floor, room number.
func (s *HousingService) AvailableRooms(ctx context.Context) ([]dto.RoomWithDormitoryResponse, error) {
	rooms, err := s.Store.ListAvailableRooms(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoomWithDormitoryResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, dto.FromRoomWithDormitory(r))
	}
	return out, nil
}

// DormitoryDetails lists rooms with their current occupants. Occupants are
// derived from allocated applications; students missing from the registry
// are skipped.
func (s *HousingService) DormitoryDetails(ctx context.Context, id int64) (*dto.DormitoryDetailsResponse, error) {
	d, err := s.Store.GetDormitory(ctx, id, true)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("dormitory %d not found", id)
		}
		return nil, err
	}

	roomIDs := make([]int64, 0, len(d.DormitoryRooms))
	for _, r := range d.DormitoryRooms {
		roomIDs = append(roomIDs, r.RoomID)
	}

	occupants := map[int64][]int64{}
	var studentIDs []int64
	if len(roomIDs) > 0 {
		apps, err := s.Store.ListAllocatedApplications(ctx, roomIDs)
		if err != nil {
			return nil, err
		}
		for _, a := range apps {
			if a.ApplicationAllocatedRoomID == nil {
				continue
			}
			occupants[*a.ApplicationAllocatedRoomID] = append(occupants[*a.ApplicationAllocatedRoomID], a.ApplicationStudentID)
			studentIDs = append(studentIDs, a.ApplicationStudentID)
		}
	}

	students := map[int64]*rmodel.StudentModel{}
	if len(studentIDs) > 0 {
		found, err := s.Directory.FindByIDs(ctx, studentIDs)
		if err != nil {
			return nil, err
		}
		for i := range found {
			students[found[i].ID] = &found[i]
		}
	}

	rooms := make([]dto.RoomDetails, 0, len(d.DormitoryRooms))
	for _, r := range d.DormitoryRooms {
		rd := dto.RoomDetails{
			ID:               r.RoomID,
			FloorNumber:      r.RoomFloorNumber,
			RoomNumber:       r.RoomNumber,
			Capacity:         r.RoomCapacity,
			CurrentOccupancy: r.RoomCurrentOccupancy,
			Occupants:        []dto.StudentInfo{},
		}
		for _, sid := range occupants[r.RoomID] {
			if st, ok := students[sid]; ok {
				rd.Occupants = append(rd.Occupants, *dto.FromStudentModel(st))
			}
		}
		rooms = append(rooms, rd)
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		if rooms[i].FloorNumber != rooms[j].FloorNumber {
			return rooms[i].FloorNumber < rooms[j].FloorNumber
		}
		return rooms[i].RoomNumber < rooms[j].RoomNumber
	})

	return &dto.DormitoryDetailsResponse{
		ID:      d.DormitoryID,
		Name:    d.DormitoryName,
		Address: d.DormitoryAddress,
		Rooms:   rooms,
	}, nil
}
