package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive   EnrollmentStatus = "Active"
	EnrollmentStatusCanceled EnrollmentStatus = "Canceled"
)

// Enrollment captures a student's registration to a class.
type Enrollment struct {
	ID         int64            `db:"id" json:"id"`
	StudentID  int64            `db:"student_id" json:"student_id"`
	ClassID    int64            `db:"class_id" json:"class_id"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
	Status     EnrollmentStatus `db:"status" json:"status"`
}

// EnrollmentDetail enriches Enrollment with student and class info.
type EnrollmentDetail struct {
	Enrollment
	StudentCode string `db:"student_code" json:"student_code"`
	StudentName string `db:"student_name" json:"student_name"`
	ClassCode   string `db:"class_code" json:"class_code"`
	ClassName   string `db:"class_name" json:"class_name"`
}
