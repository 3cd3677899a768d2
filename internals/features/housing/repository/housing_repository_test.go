package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dormitory_backend/internals/features/housing/model"
	"dormitory_backend/internals/features/housing/service"
	"dormitory_backend/internals/helpers/apperr"
)

func newMockRepo(t *testing.T) (*HousingRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewHousingRepository(gdb), mock
}

var roomColumns = []string{
	"room_id", "room_dormitory_id", "room_floor_number", "room_number",
	"room_capacity", "room_current_occupancy", "room_created_at", "room_updated_at",
}

func TestLockFirstFreeRoom_LocksLowestDormitoryThenRoom(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "rooms" WHERE room_current_occupancy < room_capacity ORDER BY room_dormitory_id ASC, room_id ASC.* LIMIT .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(roomColumns).AddRow(7, 2, 1, "101", 2, 1, now, now))

	room, err := repo.LockFirstFreeRoom(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), room.RoomID)
	assert.Equal(t, int64(2), room.RoomDormitoryID)
	assert.True(t, room.HasSpace())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockFirstFreeRoom_NoneFree(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM "rooms" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(roomColumns))

	_, err := repo.LockFirstFreeRoom(context.Background())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementOccupancy_FullRoomIsConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE "rooms" SET .*room_current_occupancy"?=room_current_occupancy \+ 1.* WHERE room_id = \$\d+ AND room_current_occupancy < room_capacity`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.IncrementOccupancy(context.Background(), 3)
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementOccupancy_ClampsInSQL(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE "rooms" SET .*GREATEST\(room_current_occupancy - 1, 0\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DecrementOccupancy(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateApplication_UniqueViolationBecomesDuplicatedKey(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO "applications"`).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "uq_applications_active_student" (SQLSTATE 23505)`))

	err := repo.CreateApplication(context.Background(), &model.ApplicationModel{
		ApplicationStudentID: 1,
		ApplicationDate:      time.Now(),
		ApplicationStatus:    model.ApplicationPending,
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveApplication_UniqueViolationBecomesDuplicatedKey(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE "applications" SET`).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "uq_applications_active_student" (SQLSTATE 23505)`))

	err := repo.SaveApplication(context.Background(), &model.ApplicationModel{
		ApplicationID:        9,
		ApplicationStudentID: 1,
		ApplicationDate:      time.Now(),
		ApplicationStatus:    model.ApplicationPending,
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountAllocatedInDormitory(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "applications" JOIN rooms ON rooms.room_id = applications.application_allocated_room_id WHERE applications.application_status = \$1 AND rooms.room_dormitory_id = \$2`).
		WithArgs(model.ApplicationAllocated, int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountAllocatedInDormitory(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestApplication_FiltersByStatus(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "applications" WHERE application_student_id = \$1 AND application_status IN \(\$2,\$3,\$4\) ORDER BY application_date DESC, application_id DESC`).
		WillReturnRows(sqlmock.NewRows([]string{
			"application_id", "application_student_id", "application_date", "application_status",
			"application_rejection_reason", "application_allocated_room_id", "application_updated_at",
		}).AddRow(11, 1, now, "approved", nil, nil, now))

	app, err := repo.LatestApplication(context.Background(), 1, model.ActiveApplicationStatuses...)
	require.NoError(t, err)
	assert.Equal(t, int64(11), app.ApplicationID)
	assert.Equal(t, model.ApplicationApproved, app.ApplicationStatus)
	assert.Nil(t, app.ApplicationAllocatedRoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "rooms" WHERE room_dormitory_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := repo.Transaction(context.Background(), func(tx service.Store) error {
		if err := tx.ReplaceRooms(context.Background(), 9, nil); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDormitory_RemovesRoomsFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM "rooms" WHERE room_dormitory_id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "dormitories" WHERE dormitory_id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteDormitory(context.Background(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(errors.New("pq: duplicate key value violates unique constraint")))
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
}
