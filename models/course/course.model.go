package course

import "gorm.io/gorm"

// Course represents a course in the catalog
type Course struct {
	gorm.Model
	Title            string  `json:"title" gorm:"not null"`
	Slug             string  `json:"slug" gorm:"uniqueIndex;not null"` // stable once assigned
	ShortDescription string  `json:"short_description"`
	LongDescription  string  `json:"long_description"`
	InstructorID     uint    `json:"instructor_id" gorm:"index;not null"`
	Price            float64 `json:"price" gorm:"default:0"`
	ThumbnailURL     string  `json:"thumbnail_url"`
	IsPaid           bool    `json:"is_paid"`
	IsPublished      bool    `json:"is_published" gorm:"default:false"`
	IsDeleted        bool    `gorm:"default:false"`
}
