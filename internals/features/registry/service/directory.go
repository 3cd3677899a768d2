// file: internals/features/registry/service/directory.go
package service

import (
	"context"

	"gorm.io/gorm"

	"dormitory_backend/internals/features/registry/model"
)

// StudentDirectory reads students from the external registry database.
// Misses surface as gorm.ErrRecordNotFound.
type StudentDirectory struct {
	DB *gorm.DB
}

func NewStudentDirectory(db *gorm.DB) *StudentDirectory {
	return &StudentDirectory{DB: db}
}

// FindByTicketAndSurname matches the ticket exactly and the surname case-insensitively.
func (d *StudentDirectory) FindByTicketAndSurname(ctx context.Context, ticket, lastName string) (*model.StudentModel, error) {
	var m model.StudentModel
	err := d.DB.WithContext(ctx).
		Where("student_ticket_number = ? AND LOWER(last_name) = LOWER(?)", ticket, lastName).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (d *StudentDirectory) FindByID(ctx context.Context, id int64) (*model.StudentModel, error) {
	var m model.StudentModel
	if err := d.DB.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (d *StudentDirectory) FindByIDs(ctx context.Context, ids []int64) ([]model.StudentModel, error) {
	var list []model.StudentModel
	if len(ids) == 0 {
		return list, nil
	}
	err := d.DB.WithContext(ctx).Where("id IN ?", uniqueIDs(ids)).Order("id ASC").Find(&list).Error
	return list, err
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Ping checks the registry connection for /health.
func (d *StudentDirectory) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
