// file: internals/features/housing/model/application_model.go
package model

import (
	"time"
)

/* ======================================================
   ENUM: application_status
====================================================== */

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationAllocated ApplicationStatus = "allocated"
)

// ActiveApplicationStatuses: status yang dihitung untuk aturan satu aplikasi aktif per mahasiswa.
var ActiveApplicationStatuses = []ApplicationStatus{
	ApplicationPending,
	ApplicationApproved,
	ApplicationAllocated,
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected, ApplicationAllocated:
		return true
	}
	return false
}

func (s ApplicationStatus) IsActive() bool {
	return s.Valid() && s != ApplicationRejected
}

/* ======================================================
   Model: applications
====================================================== */

// ApplicationModel merepresentasikan tabel applications.
// ApplicationAllocatedRoomID sengaja id biasa (bukan relasi): ganti struktur kamar
// bisa membuatnya menggantung. Sama dengan student id yang menunjuk ke DB registry.
type ApplicationModel struct {
	ApplicationID        int64             `json:"application_id" gorm:"column:application_id;primaryKey;autoIncrement"`
	ApplicationStudentID int64             `json:"application_student_id" gorm:"column:application_student_id;not null;index:idx_applications_student;uniqueIndex:uq_applications_active_student,where:application_status <> 'rejected'"`
	ApplicationDate      time.Time         `json:"application_date" gorm:"column:application_date;type:timestamptz;not null;default:now()"`
	ApplicationStatus    ApplicationStatus `json:"application_status" gorm:"column:application_status;type:varchar(16);not null;default:'pending';index:idx_applications_status"`

	ApplicationRejectionReason *string `json:"application_rejection_reason,omitempty" gorm:"column:application_rejection_reason;type:text"`
	ApplicationAllocatedRoomID *int64  `json:"application_allocated_room_id,omitempty" gorm:"column:application_allocated_room_id;index:idx_applications_room"`

	ApplicationUpdatedAt time.Time `json:"application_updated_at" gorm:"column:application_updated_at;autoUpdateTime"`
}

func (ApplicationModel) TableName() string { return "applications" }

func (a *ApplicationModel) HoldsRoom() bool {
	return a.ApplicationStatus == ApplicationAllocated && a.ApplicationAllocatedRoomID != nil
}
