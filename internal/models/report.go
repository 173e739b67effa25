package models

// ClassAttendanceReportRow aggregates attendance per class over a date range.
// Counts cover CLOSED sessions only; classes without matching sessions still
// appear with zero counts.
type ClassAttendanceReportRow struct {
	ClassID       int64  `db:"class_id" json:"class_id"`
	ClassCode     string `db:"class_code" json:"class_code"`
	ClassName     string `db:"class_name" json:"class_name"`
	TotalStudents int    `db:"total_students" json:"total_students"`
	TotalSessions int    `db:"total_sessions" json:"total_sessions"`
	PresentCount  int    `db:"present_count" json:"present_count"`
	AbsentCount   int    `db:"absent_count" json:"absent_count"`
	LateCount     int    `db:"late_count" json:"late_count"`
}

// ReportRange bounds a report query with optional inclusive calendar dates.
type ReportRange struct {
	From *string `json:"from,omitempty"`
	To   *string `json:"to,omitempty"`
}
