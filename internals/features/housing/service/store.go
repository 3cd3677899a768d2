package service

import (
	"context"

	"dormitory_backend/internals/features/housing/model"
	rmodel "dormitory_backend/internals/features/registry/model"
)

// Store is the housing persistence surface. Lookups that miss return
// gorm.ErrRecordNotFound; unique-key violations return gorm.ErrDuplicatedKey.
// Lock* methods take row locks that hold until the enclosing Transaction ends.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	// applications
	CreateApplication(ctx context.Context, app *model.ApplicationModel) error
	SaveApplication(ctx context.Context, app *model.ApplicationModel) error
	GetApplication(ctx context.Context, id int64) (*model.ApplicationModel, error)
	LockApplication(ctx context.Context, id int64) (*model.ApplicationModel, error)
	// LatestApplication returns the newest application of the student whose
	// status is one of statuses (any status when none given).
	LatestApplication(ctx context.Context, studentID int64, statuses ...model.ApplicationStatus) (*model.ApplicationModel, error)
	ListApplications(ctx context.Context, offset, limit int) ([]model.ApplicationModel, int64, error)
	// LockPendingApplications returns every pending application, ascending by id.
	LockPendingApplications(ctx context.Context) ([]model.ApplicationModel, error)
	ListAllocatedApplications(ctx context.Context, roomIDs []int64) ([]model.ApplicationModel, error)
	CountAllocatedInDormitory(ctx context.Context, dormitoryID int64) (int64, error)

	// rooms
	GetRoom(ctx context.Context, id int64) (*model.RoomModel, error)
	GetRooms(ctx context.Context, ids []int64) ([]model.RoomModel, error)
	LockRoom(ctx context.Context, id int64) (*model.RoomModel, error)
	// LockFirstFreeRoom picks the room with space, lowest dormitory id then lowest room id.
	LockFirstFreeRoom(ctx context.Context) (*model.RoomModel, error)
	LockDormitoryRooms(ctx context.Context, dormitoryID int64) ([]model.RoomModel, error)
	IncrementOccupancy(ctx context.Context, roomID int64) error
	DecrementOccupancy(ctx context.Context, roomID int64) error
	ListAvailableRooms(ctx context.Context) ([]model.RoomModel, error)

	// dormitories
	GetDormitory(ctx context.Context, id int64, withRooms bool) (*model.DormitoryModel, error)
	FindDormitoryByName(ctx context.Context, name string) (*model.DormitoryModel, error)
	ListDormitories(ctx context.Context, withRooms bool) ([]model.DormitoryModel, error)
	CreateDormitory(ctx context.Context, d *model.DormitoryModel) error
	UpdateDormitoryAddress(ctx context.Context, id int64, address string) error
	DeleteDormitory(ctx context.Context, id int64) error
	ReplaceRooms(ctx context.Context, dormitoryID int64, rooms []model.RoomModel) error

	CreateProcessingRun(ctx context.Context, run *model.ProcessingRunModel) error
}

// Directory is the read-only student registry.
type Directory interface {
	FindByTicketAndSurname(ctx context.Context, ticket, lastName string) (*rmodel.StudentModel, error)
	FindByID(ctx context.Context, id int64) (*rmodel.StudentModel, error)
	// FindByIDs returns the students that exist; missing ids are skipped.
	FindByIDs(ctx context.Context, ids []int64) ([]rmodel.StudentModel, error)
}
