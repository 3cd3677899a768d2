// file: internals/features/housing/dto/dormitory_dto.go
package dto

import (
	"strings"

	hmodel "dormitory_backend/internals/features/housing/model"
)

/* ========== CREATE ========== */

type CreateDormitoryRequest struct {
	Name    string `json:"name" validate:"required,max=160"`
	Address string `json:"address" validate:"required"`
}

func (r *CreateDormitoryRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
}

// RoomRequest dipakai untuk define structure dan import/export
type RoomRequest struct {
	FloorNumber int    `json:"floor_number"`
	RoomNumber  string `json:"room_number" validate:"required,max=30"`
	Capacity    int    `json:"capacity" validate:"required,gt=0"`
}

func ToRoomModels(dormitoryID int64, rooms []RoomRequest) []hmodel.RoomModel {
	out := make([]hmodel.RoomModel, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, hmodel.RoomModel{
			RoomDormitoryID:      dormitoryID,
			RoomFloorNumber:      r.FloorNumber,
			RoomNumber:           strings.TrimSpace(r.RoomNumber),
			RoomCapacity:         r.Capacity,
			RoomCurrentOccupancy: 0,
		})
	}
	return out
}

/* ========== IMPORT / EXPORT ========== */

type DormitoryStructure struct {
	ID      *int64        `json:"id,omitempty"`
	Name    string        `json:"name" validate:"required,max=160"`
	Address string        `json:"address" validate:"required"`
	Rooms   []RoomRequest `json:"rooms" validate:"dive"`
}

type DormitoryStructureExport struct {
	Dormitories []DormitoryStructure `json:"dormitories" validate:"dive"`
}

func ToDormitoryStructureExport(list []hmodel.DormitoryModel) DormitoryStructureExport {
	out := DormitoryStructureExport{Dormitories: make([]DormitoryStructure, 0, len(list))}
	for i := range list {
		d := list[i]
		id := d.DormitoryID
		rooms := make([]RoomRequest, 0, len(d.DormitoryRooms))
		for _, r := range d.DormitoryRooms {
			rooms = append(rooms, RoomRequest{
				FloorNumber: r.RoomFloorNumber,
				RoomNumber:  r.RoomNumber,
				Capacity:    r.RoomCapacity,
			})
		}
		out.Dormitories = append(out.Dormitories, DormitoryStructure{
			ID:      &id,
			Name:    d.DormitoryName,
			Address: d.DormitoryAddress,
			Rooms:   rooms,
		})
	}
	return out
}

type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Rooms   int `json:"rooms"`
}

/* ========== RESPONSES ========== */

type RoomResponse struct {
	ID               int64  `json:"id"`
	DormitoryID      int64  `json:"dormitory_id"`
	FloorNumber      int    `json:"floor_number"`
	RoomNumber       string `json:"room_number"`
	Capacity         int    `json:"capacity"`
	CurrentOccupancy int    `json:"current_occupancy"`
}

func FromRoomModel(r hmodel.RoomModel) RoomResponse {
	return RoomResponse{
		ID:               r.RoomID,
		DormitoryID:      r.RoomDormitoryID,
		FloorNumber:      r.RoomFloorNumber,
		RoomNumber:       r.RoomNumber,
		Capacity:         r.RoomCapacity,
		CurrentOccupancy: r.RoomCurrentOccupancy,
	}
}

type DormitoryResponse struct {
	ID      int64          `json:"id"`
	Name    string         `json:"name"`
	Address string         `json:"address"`
	Rooms   []RoomResponse `json:"rooms"`
}

func FromDormitoryModel(d *hmodel.DormitoryModel) DormitoryResponse {
	rooms := make([]RoomResponse, 0, len(d.DormitoryRooms))
	for _, r := range d.DormitoryRooms {
		rooms = append(rooms, FromRoomModel(r))
	}
	return DormitoryResponse{
		ID:      d.DormitoryID,
		Name:    d.DormitoryName,
		Address: d.DormitoryAddress,
		Rooms:   rooms,
	}
}

type RoomWithDormitoryResponse struct {
	RoomResponse
	DormitoryName    *string `json:"dormitory_name"`
	DormitoryAddress *string `json:"dormitory_address"`
}

func FromRoomWithDormitory(r hmodel.RoomModel) RoomWithDormitoryResponse {
	out := RoomWithDormitoryResponse{RoomResponse: FromRoomModel(r)}
	if r.Dormitory != nil {
		name, addr := r.Dormitory.DormitoryName, r.Dormitory.DormitoryAddress
		out.DormitoryName = &name
		out.DormitoryAddress = &addr
	}
	return out
}

type RoomDetails struct {
	ID               int64         `json:"id"`
	FloorNumber      int           `json:"floor_number"`
	RoomNumber       string        `json:"room_number"`
	Capacity         int           `json:"capacity"`
	CurrentOccupancy int           `json:"current_occupancy"`
	Occupants        []StudentInfo `json:"occupants"`
}

type DormitoryDetailsResponse struct {
	ID      int64         `json:"id"`
	Name    string        `json:"name"`
	Address string        `json:"address"`
	Rooms   []RoomDetails `json:"rooms"`
}

// ReplaceRoomsRequest: body untuk POST /staff/dormitories/:id/structure
type ReplaceRoomsRequest struct {
	Rooms []RoomRequest `json:"rooms" validate:"dive"`
}
