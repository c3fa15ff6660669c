package course

import "gorm.io/gorm"

// Lesson is a single lesson within a module. CourseID is denormalized so the
// slug can be kept unique within the whole course, not just the module.
type Lesson struct {
	gorm.Model
	ModuleID    uint   `json:"module_id" gorm:"index;not null"`
	CourseID    uint   `json:"course_id" gorm:"index;not null;uniqueIndex:idx_course_lesson_slug"`
	Title       string `json:"title"`
	Slug        string `json:"slug" gorm:"not null;uniqueIndex:idx_course_lesson_slug"`
	VideoURL    string `json:"video_url"`
	Content     string `json:"content"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"` // lesson order in module
	IsPublished bool   `json:"is_published"`
	IsDeleted   bool   `gorm:"default:false"`
}
