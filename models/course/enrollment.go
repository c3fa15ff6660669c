package course

import (
	"gorm.io/gorm"
)

// Enrollment links one student to one course. The composite unique index is
// the concurrency authority: two near-simultaneous grants for the same
// (user, course) pair resolve to a single row.
type Enrollment struct {
	gorm.Model
	UserID   uint `json:"user_id" gorm:"index;not null;uniqueIndex:idx_user_course"`
	CourseID uint `json:"course_id" gorm:"index;not null;uniqueIndex:idx_user_course"`
}

// LessonCompletion is a membership-only record that a lesson has been
// completed under an enrollment. Completions are never revoked, even if the
// lesson is later unpublished.
type LessonCompletion struct {
	gorm.Model
	EnrollmentID uint `gorm:"index;not null;uniqueIndex:idx_enrollment_lesson"`
	LessonID     uint `gorm:"index;not null;uniqueIndex:idx_enrollment_lesson"`
}
