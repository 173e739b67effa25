package models

import "time"

// SessionStatus is the lifecycle state of an attendance session.
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "ACTIVE"
	SessionStatusClosed SessionStatus = "CLOSED"
)

// AttendanceSession is a single dated attendance-taking window for a
// class-subject. Sessions are created ACTIVE and transition once to CLOSED;
// at most one ACTIVE session exists per class-subject at any time (enforced
// by a partial unique index).
type AttendanceSession struct {
	ID             int64         `db:"id" json:"id"`
	ClassSubjectID int64         `db:"class_subject_id" json:"class_subject_id"`
	SessionCode    string        `db:"session_code" json:"session_code"`
	Date           time.Time     `db:"session_date" json:"session_date"`
	StartTime      time.Time     `db:"start_time" json:"start_time"`
	EndTime        *time.Time    `db:"end_time" json:"end_time,omitempty"`
	Status         SessionStatus `db:"status" json:"status"`
	CreatedBy      int64         `db:"created_by" json:"created_by"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

// SessionDetail extends a session with class and subject display fields.
type SessionDetail struct {
	AttendanceSession
	ClassID     int64  `db:"class_id" json:"class_id"`
	ClassCode   string `db:"class_code" json:"class_code"`
	ClassName   string `db:"class_name" json:"class_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}
