// Package resource defines the concrete Canvas LMS resource shapes this
// cache mirrors: Course, Assignment, User, and Submission. Each type
// implements viewcache.Resource so it can be used directly with
// ReplaceViewOrdered, Get, and GetAll.
package resource

import (
	"time"

	"github.com/canvasmirror/viewcache"
)

// CourseWorkflowState mirrors Canvas's course workflow_state enum.
type CourseWorkflowState string

const (
	CourseUnpublished CourseWorkflowState = "unpublished"
	CourseAvailable   CourseWorkflowState = "available"
	CourseCompleted   CourseWorkflowState = "completed"
	CourseDeleted     CourseWorkflowState = "deleted"
)

// CourseView mirrors Canvas's course default_view enum.
type CourseView string

const (
	CourseViewFeed      CourseView = "feed"
	CourseViewWiki      CourseView = "wiki"
	CourseViewModules   CourseView = "modules"
	CourseViewAssignments CourseView = "assignments"
	CourseViewSyllabus  CourseView = "syllabus"
)

// Term is a Canvas enrollment term.
type Term struct {
	ID      viewcache.Id `msgpack:"id"`
	Name    string       `msgpack:"name"`
	StartAt *time.Time   `msgpack:"start_at,omitempty"`
	EndAt   *time.Time   `msgpack:"end_at,omitempty"`
}

// CourseProgress reports a student's progress through a course's
// module requirements.
type CourseProgress struct {
	RequirementCount          uint32     `msgpack:"requirement_count"`
	RequirementCompletedCount uint32     `msgpack:"requirement_completed_count"`
	NextRequirementURL        string     `msgpack:"next_requirement_url,omitempty"`
	CompletedAt               *time.Time `msgpack:"completed_at,omitempty"`
}

// Permissions reports what the current viewer may do against a
// container resource (a course, a discussion, etc).
type Permissions struct {
	Attach bool `msgpack:"attach"`
	Update bool `msgpack:"update"`
	Reply  bool `msgpack:"reply"`
	Delete bool `msgpack:"delete"`
}

// Course mirrors Canvas's course resource.
// See https://canvas.instructure.com/doc/api/courses.html.
type Course struct {
	ID                     viewcache.Id        `msgpack:"id"`
	UUID                   string              `msgpack:"uuid"`
	Name                   string              `msgpack:"name"`
	CourseCode             string              `msgpack:"course_code"`
	WorkflowState          CourseWorkflowState `msgpack:"workflow_state"`
	AccountID              viewcache.Id        `msgpack:"account_id"`
	EnrollmentTermID       viewcache.Id        `msgpack:"enrollment_term_id"`
	GradingStandardID      *viewcache.Id       `msgpack:"grading_standard_id,omitempty"`
	CreatedAt              time.Time           `msgpack:"created_at"`
	StartAt                time.Time           `msgpack:"start_at"`
	EndAt                  *time.Time          `msgpack:"end_at,omitempty"`
	TotalStudents          *uint32             `msgpack:"total_students,omitempty"`
	DefaultView            CourseView          `msgpack:"default_view"`
	SyllabusBody           *string             `msgpack:"syllabus_body,omitempty"`
	Term                   *Term               `msgpack:"term,omitempty"`
	CourseProgress         *CourseProgress     `msgpack:"course_progress,omitempty"`
	Permissions            *Permissions        `msgpack:"permissions,omitempty"`
	HideFinalGrades        bool                `msgpack:"hide_final_grades"`
	AccessRestrictedByDate *bool               `msgpack:"access_restricted_by_date,omitempty"`
	UpdatedAt              time.Time           `msgpack:"updated_at"`
}

func (c Course) CacheKey() viewcache.Key       { return c.ID }
func (c Course) CacheUpdated() time.Time       { return c.UpdatedAt }

// GradingType mirrors Canvas's assignment grading_type enum.
type GradingType string

const (
	GradingPassFail    GradingType = "pass_fail"
	GradingPercent     GradingType = "percent"
	GradingLetterGrade GradingType = "letter_grade"
	GradingGPAScale    GradingType = "gpa_scale"
	GradingPoints      GradingType = "points"
)

// ScoreStatistics summarizes the score distribution across all graded
// submissions for an assignment.
type ScoreStatistics struct {
	Min  float64 `msgpack:"min"`
	Max  float64 `msgpack:"max"`
	Mean float64 `msgpack:"mean"`
}

// Assignment mirrors Canvas's assignment resource (trimmed to the
// fields this cache's callers need; Canvas's API surface for
// assignments is considerably larger).
// See https://canvas.instructure.com/doc/api/assignments.html.
type Assignment struct {
	ID                viewcache.Id     `msgpack:"id"`
	CourseID          viewcache.Id     `msgpack:"course_id"`
	Name              string           `msgpack:"name"`
	Description       string           `msgpack:"description"`
	CreatedAt         time.Time        `msgpack:"created_at"`
	UpdatedAt         time.Time        `msgpack:"updated_at"`
	DueAt             *time.Time       `msgpack:"due_at,omitempty"`
	LockAt            *time.Time       `msgpack:"lock_at,omitempty"`
	UnlockAt          *time.Time       `msgpack:"unlock_at,omitempty"`
	HTMLURL           string           `msgpack:"html_url"`
	PointsPossible    float64          `msgpack:"points_possible"`
	GradingType       GradingType      `msgpack:"grading_type"`
	GradingStandardID *viewcache.Id    `msgpack:"grading_standard_id,omitempty"`
	Published         bool             `msgpack:"published"`
	LockedForUser     bool             `msgpack:"locked_for_user"`
	ScoreStatistics   *ScoreStatistics `msgpack:"score_statistics,omitempty"`
	PositionInModule  uint32           `msgpack:"position"`
}

func (a Assignment) CacheKey() viewcache.Key { return a.ID }
func (a Assignment) CacheUpdated() time.Time { return a.UpdatedAt }

// User mirrors Canvas's user resource.
// See https://canvas.instructure.com/doc/api/users.html.
type User struct {
	ID        viewcache.Id `msgpack:"id"`
	LoginID   string       `msgpack:"login_id"`
	Name      string       `msgpack:"name"`
	LastName  string       `msgpack:"last_name"`
	FirstName string       `msgpack:"first_name"`
	ShortName string       `msgpack:"short_name"`
	UpdatedAt time.Time    `msgpack:"updated_at"`
}

func (u User) CacheKey() viewcache.Key { return u.ID }
func (u User) CacheUpdated() time.Time { return u.UpdatedAt }
