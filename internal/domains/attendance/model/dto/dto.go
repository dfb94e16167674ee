package dto

import (
	"strings"
	"time"

	"guesthouse/internal/domains/attendance/model"
	"guesthouse/shared"
	gDto "guesthouse/shared/dto"
	gModel "guesthouse/shared/model"

	"github.com/google/uuid"
)

// ScanRequest carries the badge as code; some mobile scanners send it as token.
type ScanRequest struct {
	Code  string `json:"code"  validate:"omitempty,max=100"`
	Token string `json:"token" validate:"omitempty,max=100"`
}

// Badge returns code, or token when code is blank.
func (r ScanRequest) Badge() string {
	if code := strings.TrimSpace(r.Code); code != "" {
		return code
	}

	return strings.TrimSpace(r.Token)
}

type CreateAttendanceRequest struct {
	StaffID  string `json:"staffId"  validate:"required,uuid"`
	Date     string `json:"date"     validate:"required,daytime"`
	CheckIn  string `json:"checkIn"  validate:"required,daytime"`
	CheckOut string `json:"checkOut" validate:"omitempty,daytime"`
}

// NewAttendance builds a row for the local day starting at dayStart.
func NewAttendance(user, staffID string, dayStart, checkIn time.Time, checkOut *time.Time) model.Attendance {
	return model.Attendance{
		ID:       uuid.NewString(),
		StaffID:  staffID,
		Date:     dayStart,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Metadata: gModel.NewMetadata(user),
	}
}

type UpdateAttendanceRequest struct {
	CheckIn  string `json:"checkIn"  validate:"omitempty,daytime"`
	CheckOut string `json:"checkOut" validate:"omitempty,daytime"`
}

// AttendanceFields is the column patch produced from an UpdateAttendanceRequest.
type AttendanceFields struct {
	CheckIn  time.Time  `db:"check_in"`
	CheckOut *time.Time `db:"check_out"`
}

type StaffSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Barcode string `json:"barcode"`
}

type AttendanceResponse struct {
	ID       string       `json:"id"`
	StaffID  string       `json:"staffId"`
	Date     time.Time    `json:"date"`
	CheckIn  time.Time    `json:"checkIn"`
	CheckOut *time.Time   `json:"checkOut"`
	Staff    StaffSummary `json:"staff"`
	gDto.Metadata
}

func (r *AttendanceResponse) FromModel(m model.Attendance) {
	r.ID = m.ID
	r.StaffID = m.StaffID
	r.Date = m.Date
	r.CheckIn = m.CheckIn
	r.CheckOut = m.CheckOut
	r.Staff = StaffSummary{ID: m.StaffID, Name: m.StaffName, Role: m.StaffRole, Barcode: m.StaffBarcode}
	r.Metadata.FromModel(m.Metadata)
}

type GetAttendanceResponse struct {
	Attendance []AttendanceResponse `json:"attendance"`
	TotalPage  int                  `json:"total_page"`
	TotalData  int                  `json:"total_data"`
}

func (r *GetAttendanceResponse) FromModels(models []model.Attendance, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Attendance = make([]AttendanceResponse, len(models))
	for i, mod := range models {
		r.Attendance[i].FromModel(mod)
	}
}

type ScanDay struct {
	Key   string    `json:"key"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type ScanResponse struct {
	Action     string             `json:"action"`
	Staff      StaffSummary       `json:"staff"`
	Attendance AttendanceResponse `json:"attendance"`
	Day        ScanDay            `json:"day"`
}

// AttendanceQuery narrows a listing. From and To are local days (YYYY-MM-DD) or RFC3339 instants.
type AttendanceQuery struct {
	StaffID string
	From    string
	To      string
}
