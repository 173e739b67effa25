package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent       AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent        AttendanceStatus = "ABSENT"
	AttendanceStatusAbsentExcused AttendanceStatus = "ABSENT_EXCUSED"
	AttendanceStatusLate          AttendanceStatus = "LATE"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusAbsentExcused, AttendanceStatusLate:
		return true
	default:
		return false
	}
}

// AttendanceRecord holds a single status per (session, student). Upserts
// overwrite status/note in place; marked_at keeps the original mark time.
type AttendanceRecord struct {
	ID        int64            `db:"id" json:"id"`
	SessionID int64            `db:"session_id" json:"session_id"`
	StudentID int64            `db:"student_id" json:"student_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Note      *string          `db:"note" json:"note,omitempty"`
	MarkedAt  time.Time        `db:"marked_at" json:"marked_at"`
	UpdatedAt *time.Time       `db:"updated_at" json:"updated_at,omitempty"`
	UpdatedBy *int64           `db:"updated_by" json:"updated_by,omitempty"`
}

// SessionRecordRow extends a record with student identity fields.
type SessionRecordRow struct {
	AttendanceRecord
	StudentCode string `db:"student_code" json:"student_code"`
	StudentName string `db:"student_name" json:"student_name"`
}

// StudentHistoryRow captures one entry of a student's attendance history.
type StudentHistoryRow struct {
	Status      AttendanceStatus `db:"status" json:"status"`
	Note        *string          `db:"note" json:"note,omitempty"`
	MarkedAt    time.Time        `db:"marked_at" json:"marked_at"`
	SessionCode string           `db:"session_code" json:"session_code"`
	SessionDate time.Time        `db:"session_date" json:"session_date"`
	SubjectName string           `db:"subject_name" json:"subject_name"`
}
