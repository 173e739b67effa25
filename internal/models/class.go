package models

// Class represents an academic class or section.
type Class struct {
	ID                int64  `db:"id" json:"id"`
	Code              string `db:"code" json:"code"`
	Name              string `db:"name" json:"name"`
	HomeroomTeacherID *int64 `db:"homeroom_teacher_id" json:"homeroom_teacher_id,omitempty"`
	Active            bool   `db:"active" json:"active"`
}

// ClassDetail extends Class with optional homeroom teacher information.
type ClassDetail struct {
	Class
	HomeroomTeacherName *string `db:"homeroom_teacher_name" json:"homeroom_teacher_name,omitempty"`
}

// ClassSubject assigns one subject to one class taught by one teacher.
// A class takes a given subject from exactly one teacher.
type ClassSubject struct {
	ID        int64 `db:"id" json:"id"`
	ClassID   int64 `db:"class_id" json:"class_id"`
	SubjectID int64 `db:"subject_id" json:"subject_id"`
	TeacherID int64 `db:"teacher_id" json:"teacher_id"`
}

// ClassSubjectDetail is a view including class, subject and teacher info.
type ClassSubjectDetail struct {
	ClassSubject
	ClassCode   string  `db:"class_code" json:"class_code"`
	ClassName   string  `db:"class_name" json:"class_name"`
	SubjectCode string  `db:"subject_code" json:"subject_code"`
	SubjectName string  `db:"subject_name" json:"subject_name"`
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
}
