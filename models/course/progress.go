package course

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ModuleOutline is one module with its lessons in display order.
type ModuleOutline struct {
	Module  Module
	Lessons []Lesson
}

// Outline is the ordered snapshot of a course used by the progress engine.
// Modules are sorted by OrderIndex, lessons within each module likewise.
// All entitlement math runs over this snapshot so it stays deterministic
// for the duration of a request.
type Outline struct {
	Modules []ModuleOutline
}

// LoadOutline loads the full ordered module/lesson hierarchy of a course.
func LoadOutline(db *gorm.DB, courseID uint) (*Outline, error) {
	var modules []Module
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc, id asc").Find(&modules).Error; err != nil {
		return nil, err
	}

	var lessons []Lesson
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc, id asc").Find(&lessons).Error; err != nil {
		return nil, err
	}

	byModule := make(map[uint][]Lesson, len(modules))
	for _, lesson := range lessons {
		byModule[lesson.ModuleID] = append(byModule[lesson.ModuleID], lesson)
	}

	outline := &Outline{Modules: make([]ModuleOutline, 0, len(modules))}
	for _, module := range modules {
		outline.Modules = append(outline.Modules, ModuleOutline{
			Module:  module,
			Lessons: byModule[module.ID],
		})
	}
	return outline, nil
}

// LoadCompletedLessonIDs returns the set of lesson IDs completed under an enrollment.
func LoadCompletedLessonIDs(db *gorm.DB, enrollmentID uint) (map[uint]bool, error) {
	var ids []uint
	if err := db.Model(&LessonCompletion{}).
		Where("enrollment_id = ?", enrollmentID).
		Pluck("lesson_id", &ids).Error; err != nil {
		return nil, err
	}
	completed := make(map[uint]bool, len(ids))
	for _, id := range ids {
		completed[id] = true
	}
	return completed, nil
}

// PublishedLessonCount is the total number of published lessons in the course.
func (o *Outline) PublishedLessonCount() int {
	total := 0
	for i := range o.Modules {
		total += o.Modules[i].publishedCount()
	}
	return total
}

func (m *ModuleOutline) publishedCount() int {
	count := 0
	for _, lesson := range m.Lessons {
		if lesson.IsPublished {
			count++
		}
	}
	return count
}

// completedInModule counts completed lessons belonging to the module,
// including ones that have since been unpublished. Completions are never
// revoked, so the comparison against the published count must be count
// based rather than set equality.
func (m *ModuleOutline) completedInModule(completed map[uint]bool) int {
	count := 0
	for _, lesson := range m.Lessons {
		if completed[lesson.ID] {
			count++
		}
	}
	return count
}

// ProgressPercentage is floor(100 * completed / total) over published
// lessons only, on both sides of the ratio. Returns 0 for a course with no
// published lessons.
func (o *Outline) ProgressPercentage(completed map[uint]bool) int {
	total := o.PublishedLessonCount()
	if total == 0 {
		return 0
	}
	done := 0
	for i := range o.Modules {
		for _, lesson := range o.Modules[i].Lessons {
			if lesson.IsPublished && completed[lesson.ID] {
				done++
			}
		}
	}
	return done * 100 / total
}

// IsModuleComplete reports whether a module counts as finished. A module
// with no published lessons is vacuously complete and never blocks the
// modules after it.
func (m *ModuleOutline) IsModuleComplete(completed map[uint]bool) bool {
	published := m.publishedCount()
	if published == 0 {
		return true
	}
	return m.completedInModule(completed) >= published
}

// IsModuleUnlocked implements progressive unlock: the first module is always
// open, and module N opens once every module before it is complete. The scan
// is left to right so unlock stays monotonic by order.
func (o *Outline) IsModuleUnlocked(moduleID uint, completed map[uint]bool) bool {
	for i := range o.Modules {
		if o.Modules[i].Module.ID == moduleID {
			return true
		}
		if !o.Modules[i].IsModuleComplete(completed) {
			return false
		}
	}
	return false // unknown module is never unlocked
}

// NextIncompleteLesson returns the first published, not-yet-completed lesson
// in (module order, lesson order), or nil when the course is complete.
func (o *Outline) NextIncompleteLesson(completed map[uint]bool) *Lesson {
	for i := range o.Modules {
		for j := range o.Modules[i].Lessons {
			lesson := &o.Modules[i].Lessons[j]
			if lesson.IsPublished && !completed[lesson.ID] {
				return lesson
			}
		}
	}
	return nil
}

// IsComplete reports whether every published lesson has been completed.
func (o *Outline) IsComplete(completed map[uint]bool) bool {
	return o.PublishedLessonCount() > 0 && o.NextIncompleteLesson(completed) == nil
}

// MarkLessonComplete records a completion idempotently. The unique
// (enrollment, lesson) index plus ON CONFLICT DO NOTHING makes the repeat
// call a no-op; the returned flag reports whether this call inserted the
// completion, which callers use to fire the course-completed notification
// at most once.
func MarkLessonComplete(db *gorm.DB, enrollmentID, lessonID uint) (bool, error) {
	completion := LessonCompletion{EnrollmentID: enrollmentID, LessonID: lessonID}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "lesson_id"}},
		DoNothing: true,
	}).Create(&completion)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
