package resource

import (
	"encoding/binary"
	"time"

	"github.com/canvasmirror/viewcache"
)

// SubmissionWorkflowState mirrors Canvas's submission workflow_state enum.
type SubmissionWorkflowState string

const (
	SubmissionGraded        SubmissionWorkflowState = "graded"
	SubmissionSubmitted     SubmissionWorkflowState = "submitted"
	SubmissionUnsubmitted   SubmissionWorkflowState = "unsubmitted"
	SubmissionPendingReview SubmissionWorkflowState = "pending_review"
)

// SubmissionType mirrors Canvas's submission_type enum.
type SubmissionType string

const (
	SubmissionDiscussionTopic SubmissionType = "discussion_topic"
	SubmissionOnlineQuiz      SubmissionType = "online_quiz"
	SubmissionOnPaper         SubmissionType = "on_paper"
	SubmissionNone            SubmissionType = "none"
	SubmissionExternalTool    SubmissionType = "external_tool"
	SubmissionOnlineTextEntry SubmissionType = "online_text_entry"
	SubmissionOnlineURL       SubmissionType = "online_url"
	SubmissionOnlineUpload    SubmissionType = "online_upload"
	SubmissionMediaRecording  SubmissionType = "media_recording"
	SubmissionStudentAnnotation SubmissionType = "student_annotation"
	SubmissionNotGraded       SubmissionType = "not_graded"
)

// LatePolicyStatus mirrors Canvas's late_policy_status enum.
type LatePolicyStatus string

const (
	LatePolicyLate    LatePolicyStatus = "late"
	LatePolicyMissing LatePolicyStatus = "missing"
	LatePolicyNone    LatePolicyStatus = "none"
)

// SubmissionKey identifies a submission by the (assignment, user,
// attempt) triple it belongs to, since Canvas has no standalone
// submission id stable across attempts and a user can have more than
// one attempt on the same assignment. It is a composite Key: two
// big-endian Ids followed by a big-endian uint32 attempt number, which
// preserves ordering by assignment first, user second, attempt third.
type SubmissionKey struct {
	AssignmentID viewcache.Id
	UserID       viewcache.Id
	Attempt      uint32
}

const submissionKeySerLen = 16 + 4

func (SubmissionKey) SerLen() int { return submissionKeySerLen }

func (k SubmissionKey) AppendTo(dst []byte) ([]byte, error) {
	dst, err := k.AssignmentID.AppendTo(dst)
	if err != nil {
		return nil, err
	}
	dst, err = k.UserID.AppendTo(dst)
	if err != nil {
		return nil, err
	}
	var attempt [4]byte
	binary.BigEndian.PutUint32(attempt[:], k.Attempt)
	return append(dst, attempt[:]...), nil
}

// DecodeSubmissionKey reads a SubmissionKey from the front of b.
func DecodeSubmissionKey(b []byte) (viewcache.Key, error) {
	assignmentID, rest, err := viewcache.DecodeId(b)
	if err != nil {
		return nil, err
	}
	userID, rest, err := viewcache.DecodeId(rest)
	if err != nil {
		return nil, err
	}
	if len(rest) < 4 {
		return nil, &viewcache.UnexpectedStreamYieldError{Expected: "4 bytes of submission attempt", Actual: "end of stream"}
	}
	attempt := binary.BigEndian.Uint32(rest[:4])
	return SubmissionKey{AssignmentID: assignmentID, UserID: userID, Attempt: attempt}, nil
}

// Submission mirrors Canvas's submission resource.
// See https://canvas.instructure.com/doc/api/submissions.html.
type Submission struct {
	AssignmentID                  viewcache.Id            `msgpack:"assignment_id"`
	UserID                        viewcache.Id            `msgpack:"user_id"`
	Attempt                       uint32                  `msgpack:"attempt"`
	HTMLURL                       string                  `msgpack:"html_url"`
	Preview                       string                  `msgpack:"preview"`
	PostedAt                      *time.Time              `msgpack:"posted_at,omitempty"`
	SubmittedAt                   *time.Time              `msgpack:"submitted_at,omitempty"`
	GradedAt                      *time.Time              `msgpack:"graded_at,omitempty"`
	Late                          bool                    `msgpack:"late"`
	Excused                       bool                    `msgpack:"excused"`
	Missing                       bool                    `msgpack:"missing"`
	LatePolicyStatus              *LatePolicyStatus       `msgpack:"late_policy_status,omitempty"`
	PointsDeducted                float64                 `msgpack:"points_deducted"`
	SecondsLate                   float64                 `msgpack:"seconds_late"`
	WorkflowState                 SubmissionWorkflowState `msgpack:"workflow_state"`
	ExtraAttempts                 uint32                  `msgpack:"extra_attempts"`
	SubmissionType                SubmissionType          `msgpack:"submission_type"`
	Body                          *string                 `msgpack:"body,omitempty"`
	URL                           *string                 `msgpack:"url,omitempty"`
	Grade                         string                  `msgpack:"grade"`
	GradeMatchesCurrentSubmission bool                    `msgpack:"grade_matches_current_submission"`
	Score                         *float64                `msgpack:"score,omitempty"`
	UpdatedAt                     time.Time               `msgpack:"updated_at"`
}

func (s Submission) CacheKey() viewcache.Key {
	return SubmissionKey{AssignmentID: s.AssignmentID, UserID: s.UserID, Attempt: s.Attempt}
}
func (s Submission) CacheUpdated() time.Time { return s.UpdatedAt }
