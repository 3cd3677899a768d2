// file: internals/features/housing/dto/application_dto.go
package dto

import (
	"strings"
	"time"

	hmodel "dormitory_backend/internals/features/housing/model"
	rmodel "dormitory_backend/internals/features/registry/model"
)

/* ========== REQUESTS ========== */

type CreateApplicationRequest struct {
	StudentTicketNumber string `json:"student_ticket_number" validate:"required,max=50"`
	LastName            string `json:"last_name" validate:"required,max=100"`
}

func (r *CreateApplicationRequest) Normalize() {
	r.StudentTicketNumber = strings.TrimSpace(r.StudentTicketNumber)
	r.LastName = strings.TrimSpace(r.LastName)
}

// StatusCheckRequest: body untuk cek status via nomor tiket + nama belakang
type StatusCheckRequest = CreateApplicationRequest

type UpdateStatusRequest struct {
	Status          hmodel.ApplicationStatus `json:"status" validate:"required,oneof=pending approved rejected allocated"`
	RejectionReason *string                  `json:"rejection_reason" validate:"omitempty,max=1000"`
}

type AllocateRoomRequest struct {
	RoomID int64 `json:"room_id" validate:"required,gt=0"`
}

/* ========== RESPONSES ========== */

type StudentInfo struct {
	ID                  int64   `json:"id"`
	StudentTicketNumber string  `json:"student_ticket_number"`
	LastName            string  `json:"last_name"`
	FirstName           string  `json:"first_name"`
	MiddleName          *string `json:"middle_name,omitempty"`
	BirthDate           string  `json:"birth_date"`
	IsForeign           bool    `json:"is_foreign"`
	CityOfResidence     string  `json:"city_of_residence"`
	GroupID             int64   `json:"group_id"`
}

func FromStudentModel(m *rmodel.StudentModel) *StudentInfo {
	if m == nil {
		return nil
	}
	return &StudentInfo{
		ID:                  m.ID,
		StudentTicketNumber: m.StudentTicketNumber,
		LastName:            m.LastName,
		FirstName:           m.FirstName,
		MiddleName:          m.MiddleName,
		BirthDate:           m.BirthDate.Format("2006-01-02"),
		IsForeign:           m.IsForeign,
		CityOfResidence:     m.CityOfResidence,
		GroupID:             m.GroupID,
	}
}

// ApplicationResponse: proyeksi untuk staff, juga dikembalikan setiap write ke aplikasi.
type ApplicationResponse struct {
	ID              int64                    `json:"id"`
	StudentID       int64                    `json:"student_id"`
	ApplicationDate time.Time                `json:"application_date"`
	Status          hmodel.ApplicationStatus `json:"status"`
	RejectionReason *string                  `json:"rejection_reason"`
	AllocatedRoomID *int64                   `json:"allocated_room_id"`

	StudentInfo *StudentInfo `json:"student_info"`

	AllocatedDormName    *string `json:"allocated_dorm_name"`
	AllocatedDormAddress *string `json:"allocated_dorm_address"`
	AllocatedRoomNumber  *string `json:"allocated_room_number"`
	AllocatedFloorNumber *int    `json:"allocated_floor_number"`
}

// FromApplicationModel membangun proyeksi. room hanya dipakai kalau aplikasi memang
// dialokasikan ke kamar itu dan dormitory-nya sudah di-load.
func FromApplicationModel(a *hmodel.ApplicationModel, student *rmodel.StudentModel, room *hmodel.RoomModel) ApplicationResponse {
	out := ApplicationResponse{
		ID:              a.ApplicationID,
		StudentID:       a.ApplicationStudentID,
		ApplicationDate: a.ApplicationDate,
		Status:          a.ApplicationStatus,
		RejectionReason: a.ApplicationRejectionReason,
		AllocatedRoomID: a.ApplicationAllocatedRoomID,
		StudentInfo:     FromStudentModel(student),
	}
	if a.HoldsRoom() && room != nil && room.Dormitory != nil && room.RoomID == *a.ApplicationAllocatedRoomID {
		name, addr := room.Dormitory.DormitoryName, room.Dormitory.DormitoryAddress
		number, floor := room.RoomNumber, room.RoomFloorNumber
		out.AllocatedDormName = &name
		out.AllocatedDormAddress = &addr
		out.AllocatedRoomNumber = &number
		out.AllocatedFloorNumber = &floor
	}
	return out
}

// ApplicationStatusResponse: yang dilihat mahasiswa saat cek status via tiket.
type ApplicationStatusResponse struct {
	ApplicationID       int64                    `json:"application_id"`
	StudentTicketNumber string                   `json:"student_ticket_number"`
	StudentLastName     string                   `json:"student_last_name"`
	StudentFirstName    string                   `json:"student_first_name"`
	StudentMiddleName   *string                  `json:"student_middle_name"`
	Status              hmodel.ApplicationStatus `json:"status"`
	RejectionReason     *string                  `json:"rejection_reason"`

	DormitoryName    *string `json:"dormitory_name"`
	DormitoryAddress *string `json:"dormitory_address"`
	RoomNumber       *string `json:"room_number"`
	FloorNumber      *int    `json:"floor_number"`
}

func ToApplicationStatusResponse(a *hmodel.ApplicationModel, student *rmodel.StudentModel, room *hmodel.RoomModel) ApplicationStatusResponse {
	full := FromApplicationModel(a, student, room)
	return ApplicationStatusResponse{
		ApplicationID:       a.ApplicationID,
		StudentTicketNumber: student.StudentTicketNumber,
		StudentLastName:     student.LastName,
		StudentFirstName:    student.FirstName,
		StudentMiddleName:   student.MiddleName,
		Status:              a.ApplicationStatus,
		RejectionReason:     a.ApplicationRejectionReason,
		DormitoryName:       full.AllocatedDormName,
		DormitoryAddress:    full.AllocatedDormAddress,
		RoomNumber:          full.AllocatedRoomNumber,
		FloorNumber:         full.AllocatedFloorNumber,
	}
}

type ProcessingSummaryResponse struct {
	RunID     string `json:"run_id"`
	Trigger   string `json:"trigger"`
	Processed int    `json:"processed"`
	Allocated int    `json:"allocated"`
	Approved  int    `json:"approved"`
	Rejected  int    `json:"rejected"`
}

func FromProcessingRunModel(m *hmodel.ProcessingRunModel) ProcessingSummaryResponse {
	return ProcessingSummaryResponse{
		RunID:     m.ProcessingRunID.String(),
		Trigger:   string(m.ProcessingRunTrigger),
		Processed: m.ProcessingRunProcessed,
		Allocated: m.ProcessingRunAllocated,
		Approved:  m.ProcessingRunApproved,
		Rejected:  m.ProcessingRunRejected,
	}
}
