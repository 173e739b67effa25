package models

// Teacher is the 1:1 role profile for a user with role TEACHER.
type Teacher struct {
	ID          int64  `db:"id" json:"id"`
	UserID      int64  `db:"user_id" json:"user_id"`
	TeacherCode string `db:"teacher_code" json:"teacher_code"`
}

// TeacherDetail enriches Teacher with user identity fields.
type TeacherDetail struct {
	Teacher
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
}
