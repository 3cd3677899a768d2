// file: internals/features/housing/model/dormitory_model.go
package model

import "time"

// DormitoryModel merepresentasikan tabel dormitories
type DormitoryModel struct {
	DormitoryID      int64  `json:"dormitory_id" gorm:"column:dormitory_id;primaryKey;autoIncrement"`
	DormitoryName    string `json:"dormitory_name" gorm:"column:dormitory_name;type:varchar(160);not null;uniqueIndex:uq_dormitories_name"`
	DormitoryAddress string `json:"dormitory_address" gorm:"column:dormitory_address;type:text;not null"`

	DormitoryRooms []RoomModel `json:"dormitory_rooms,omitempty" gorm:"foreignKey:RoomDormitoryID;references:DormitoryID"`

	DormitoryCreatedAt time.Time `json:"dormitory_created_at" gorm:"column:dormitory_created_at;autoCreateTime"`
	DormitoryUpdatedAt time.Time `json:"dormitory_updated_at" gorm:"column:dormitory_updated_at;autoUpdateTime"`
}

func (DormitoryModel) TableName() string { return "dormitories" }

// RoomModel merepresentasikan tabel rooms.
// RoomCurrentOccupancy hanya berubah lewat alokasi & release; 0 <= occupancy <= capacity.
type RoomModel struct {
	RoomID               int64  `json:"room_id" gorm:"column:room_id;primaryKey;autoIncrement"`
	RoomDormitoryID      int64  `json:"room_dormitory_id" gorm:"column:room_dormitory_id;not null;index:idx_rooms_dormitory"`
	RoomFloorNumber      int    `json:"room_floor_number" gorm:"column:room_floor_number;not null"`
	RoomNumber           string `json:"room_number" gorm:"column:room_number;type:varchar(30);not null"`
	RoomCapacity         int    `json:"room_capacity" gorm:"column:room_capacity;not null;check:chk_rooms_capacity,room_capacity > 0"`
	RoomCurrentOccupancy int    `json:"room_current_occupancy" gorm:"column:room_current_occupancy;not null;default:0"`

	Dormitory *DormitoryModel `json:"dormitory,omitempty" gorm:"foreignKey:RoomDormitoryID;references:DormitoryID"`

	RoomCreatedAt time.Time `json:"room_created_at" gorm:"column:room_created_at;autoCreateTime"`
	RoomUpdatedAt time.Time `json:"room_updated_at" gorm:"column:room_updated_at;autoUpdateTime"`
}

func (RoomModel) TableName() string { return "rooms" }

func (r RoomModel) HasSpace() bool { return r.RoomCurrentOccupancy < r.RoomCapacity }
