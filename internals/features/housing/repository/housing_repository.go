// file: internals/features/housing/repository/housing_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dormitory_backend/internals/features/housing/model"
	"dormitory_backend/internals/features/housing/service"
	"dormitory_backend/internals/helpers/apperr"
)

// HousingRepository implements service.Store on the housing database.
type HousingRepository struct {
	DB *gorm.DB
}

var _ service.Store = (*HousingRepository)(nil)

func NewHousingRepository(db *gorm.DB) *HousingRepository {
	return &HousingRepository{DB: db}
}

func (r *HousingRepository) conn(ctx context.Context) *gorm.DB { return r.DB.WithContext(ctx) }

func (r *HousingRepository) locked(ctx context.Context) *gorm.DB {
	return r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *HousingRepository) Transaction(ctx context.Context, fn func(tx service.Store) error) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&HousingRepository{DB: tx})
	})
}

// Matches SQLSTATE 23505 by text so pgconn stays out of the imports; ErrDuplicatedKey covers TranslateError.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "23505")
}

func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", gorm.ErrDuplicatedKey, err)
	}
	return err
}

/* ================= applications ================= */

func (r *HousingRepository) CreateApplication(ctx context.Context, app *model.ApplicationModel) error {
	return mapWriteErr(r.conn(ctx).Create(app).Error)
}

func (r *HousingRepository) SaveApplication(ctx context.Context, app *model.ApplicationModel) error {
	return mapWriteErr(r.conn(ctx).Save(app).Error)
}

func (r *HousingRepository) GetApplication(ctx context.Context, id int64) (*model.ApplicationModel, error) {
	var m model.ApplicationModel
	if err := r.conn(ctx).Where("application_id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *HousingRepository) LockApplication(ctx context.Context, id int64) (*model.ApplicationModel, error) {
	var m model.ApplicationModel
	if err := r.locked(ctx).Where("application_id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *HousingRepository) LatestApplication(ctx context.Context, studentID int64, statuses ...model.ApplicationStatus) (*model.ApplicationModel, error) {
	q := r.conn(ctx).Where("application_student_id = ?", studentID)
	if len(statuses) > 0 {
		q = q.Where("application_status IN ?", statuses)
	}
	var m model.ApplicationModel
	if err := q.Order("application_date DESC, application_id DESC").First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *HousingRepository) ListApplications(ctx context.Context, offset, limit int) ([]model.ApplicationModel, int64, error) {
	var total int64
	if err := r.conn(ctx).Model(&model.ApplicationModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.ApplicationModel
	if err := r.conn(ctx).
		Order("application_date DESC, application_id DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *HousingRepository) LockPendingApplications(ctx context.Context) ([]model.ApplicationModel, error) {
	var list []model.ApplicationModel
	err := r.locked(ctx).
		Where("application_status = ?", model.ApplicationPending).
		Order("application_id ASC").
		Find(&list).Error
	return list, err
}

func (r *HousingRepository) ListAllocatedApplications(ctx context.Context, roomIDs []int64) ([]model.ApplicationModel, error) {
	var list []model.ApplicationModel
	if len(roomIDs) == 0 {
		return list, nil
	}
	err := r.conn(ctx).
		Where("application_status = ? AND application_allocated_room_id IN ?", model.ApplicationAllocated, roomIDs).
		Order("application_id ASC").
		Find(&list).Error
	return list, err
}

func (r *HousingRepository) CountAllocatedInDormitory(ctx context.Context, dormitoryID int64) (int64, error) {
	var n int64
	err := r.conn(ctx).
		Model(&model.ApplicationModel{}).
		Joins("JOIN rooms ON rooms.room_id = applications.application_allocated_room_id").
		Where("applications.application_status = ? AND rooms.room_dormitory_id = ?", model.ApplicationAllocated, dormitoryID).
		Count(&n).Error
	return n, err
}

/* ================= rooms ================= */

func (r *HousingRepository) GetRoom(ctx context.Context, id int64) (*model.RoomModel, error) {
	var m model.RoomModel
	if err := r.conn(ctx).Preload("Dormitory").Where("room_id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *HousingRepository) GetRooms(ctx context.Context, ids []int64) ([]model.RoomModel, error) {
	var list []model.RoomModel
	if len(ids) == 0 {
		return list, nil
	}
	err := r.conn(ctx).Preload("Dormitory").Where("room_id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *HousingRepository) LockRoom(ctx context.Context, id int64) (*model.RoomModel, error) {
	var m model.RoomModel
	if err := r.locked(ctx).Where("room_id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *HousingRepository) LockFirstFreeRoom(ctx context.Context) (*model.RoomModel, error) {
	var m model.RoomModel
	err := r.locked(ctx).
		Where("room_current_occupancy < room_capacity").
		Order("room_dormitory_id ASC, room_id ASC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *HousingRepository) LockDormitoryRooms(ctx context.Context, dormitoryID int64) ([]model.RoomModel, error) {
	var list []model.RoomModel
	err := r.locked(ctx).
		Where("room_dormitory_id = ?", dormitoryID).
		Order("room_id ASC").
		Find(&list).Error
	return list, err
}

// IncrementOccupancy takes one seat; the guard keeps occupancy <= capacity
// even if the caller skipped the lock.
func (r *HousingRepository) IncrementOccupancy(ctx context.Context, roomID int64) error {
	res := r.conn(ctx).
		Model(&model.RoomModel{}).
		Where("room_id = ? AND room_current_occupancy < room_capacity", roomID).
		Update("room_current_occupancy", gorm.Expr("room_current_occupancy + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("room %d is full", roomID)
	}
	return nil
}

func (r *HousingRepository) DecrementOccupancy(ctx context.Context, roomID int64) error {
	return r.conn(ctx).
		Model(&model.RoomModel{}).
		Where("room_id = ?", roomID).
		Update("room_current_occupancy", gorm.Expr("GREATEST(room_current_occupancy - 1, 0)")).Error
}

func (r *HousingRepository) ListAvailableRooms(ctx context.Context) ([]model.RoomModel, error) {
	var list []model.RoomModel
	err := r.conn(ctx).
		Preload("Dormitory").
		Where("room_current_occupancy < room_capacity").
		Order("room_dormitory_id ASC, room_floor_number ASC, room_number ASC").
		Find(&list).Error
	return list, err
}

/* ================= dormitories ================= */

func withRoomsOrdered(db *gorm.DB) *gorm.DB { return db.Order("room_id ASC") }

func (r *HousingRepository) GetDormitory(ctx context.Context, id int64, withRooms bool) (*model.DormitoryModel, error) {
	q := r.conn(ctx)
	if withRooms {
		q = q.Preload("DormitoryRooms", withRoomsOrdered)
	}
	var m model.DormitoryModel
	if err := q.Where("dormitory_id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *HousingRepository) FindDormitoryByName(ctx context.Context, name string) (*model.DormitoryModel, error) {
	var m model.DormitoryModel
	if err := r.conn(ctx).Where("dormitory_name = ?", name).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *HousingRepository) ListDormitories(ctx context.Context, withRooms bool) ([]model.DormitoryModel, error) {
	q := r.conn(ctx)
	if withRooms {
		q = q.Preload("DormitoryRooms", withRoomsOrdered)
	}
	var list []model.DormitoryModel
	err := q.Order("dormitory_id ASC").Find(&list).Error
	return list, err
}

func (r *HousingRepository) CreateDormitory(ctx context.Context, d *model.DormitoryModel) error {
	return mapWriteErr(r.conn(ctx).Omit("DormitoryRooms").Create(d).Error)
}

func (r *HousingRepository) UpdateDormitoryAddress(ctx context.Context, id int64, address string) error {
	return r.conn(ctx).
		Model(&model.DormitoryModel{}).
		Where("dormitory_id = ?", id).
		Update("dormitory_address", address).Error
}

// DeleteDormitory removes rooms first, then the dormitory row.
func (r *HousingRepository) DeleteDormitory(ctx context.Context, id int64) error {
	db := r.conn(ctx)
	if err := db.Where("room_dormitory_id = ?", id).Delete(&model.RoomModel{}).Error; err != nil {
		return err
	}
	return db.Where("dormitory_id = ?", id).Delete(&model.DormitoryModel{}).Error
}

func (r *HousingRepository) ReplaceRooms(ctx context.Context, dormitoryID int64, rooms []model.RoomModel) error {
	db := r.conn(ctx)
	if err := db.Where("room_dormitory_id = ?", dormitoryID).Delete(&model.RoomModel{}).Error; err != nil {
		return err
	}
	if len(rooms) == 0 {
		return nil
	}
	for i := range rooms {
		rooms[i].RoomDormitoryID = dormitoryID
		rooms[i].RoomCurrentOccupancy = 0
	}
	return mapWriteErr(db.Omit("Dormitory").Create(&rooms).Error)
}

func (r *HousingRepository) CreateProcessingRun(ctx context.Context, run *model.ProcessingRunModel) error {
	return r.conn(ctx).Create(run).Error
}
