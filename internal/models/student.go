package models

// Student is the 1:1 role profile for a user with role STUDENT. ClassID is a
// denormalized cache of the student's active enrollment; enrollments are the
// authoritative membership source.
type Student struct {
	ID          int64   `db:"id" json:"id"`
	UserID      int64   `db:"user_id" json:"user_id"`
	StudentCode string  `db:"student_code" json:"student_code"`
	Gender      string  `db:"gender" json:"gender"`
	ClassID     *int64  `db:"class_id" json:"class_id,omitempty"`
	Note        *string `db:"note" json:"note,omitempty"`
}

// StudentDetail enriches Student with user identity fields.
type StudentDetail struct {
	Student
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
}
