package workflow

import (
	"github.com/google/uuid"
	"github.com/yigit/mobility/internal/app/models"
)

// RejectedRank is the sentinel rank of a refused dossier. It is never compared
// with the others; a refused dossier renders as a failure banner.
const RejectedRank = -1

var statusRank = map[models.ApplicationStatus]int{
	models.StatusDraft:          0,
	models.StatusSubmitted:      1,
	models.StatusRevision:       1, // same step as submitted
	models.StatusValidatedMajor: 2,
	models.StatusValidatedFinal: 3,
	models.StatusRejected:       RejectedRank,
}

// Rank returns the progress position of status. ok is false for rejected and
// unknown statuses, which do not take part in the ordering.
func Rank(status models.ApplicationStatus) (rank int, ok bool) {
	r, known := statusRank[status]
	if !known {
		return 0, false
	}
	if r == RejectedRank {
		return RejectedRank, false
	}
	return r, true
}

// TimelineStep is one position of the progress line
type TimelineStep struct {
	Status  models.ApplicationStatus `json:"status"`
	Label   string                   `json:"label"`
	Done    bool                     `json:"done"`
	Current bool                     `json:"current"`
}

// Timeline is the progress view of a dossier
type Timeline struct {
	Rank       int            `json:"rank"`
	Rejected   bool           `json:"rejected"`
	InRevision bool           `json:"inRevision"`
	Steps      []TimelineStep `json:"steps,omitempty"`
}

var timelineSteps = []models.ApplicationStatus{
	models.StatusDraft,
	models.StatusSubmitted,
	models.StatusValidatedMajor,
	models.StatusValidatedFinal,
}

// BuildTimeline computes the progress line for status using labels for the step names
func BuildTimeline(status models.ApplicationStatus, labels BadgeSet) Timeline {
	if status == models.StatusRejected {
		return Timeline{Rank: RejectedRank, Rejected: true}
	}

	current, _ := Rank(status)
	t := Timeline{Rank: current, InRevision: status == models.StatusRevision}
	for _, s := range timelineSteps {
		r, _ := Rank(s)
		t.Steps = append(t.Steps, TimelineStep{
			Status:  s,
			Label:   labels.For(s).Label,
			Done:    r < current || (r == current && IsTerminal(status)),
			Current: r == current,
		})
	}
	return t
}

// Lane is the inferred origin of an uploaded document
type Lane string

const (
	LaneStudent       Lane = "student"
	LaneMajorHead     Lane = "major_head"
	LaneInternational Lane = "international"
)

// LaneOf classifies a document by comparing its uploader with the dossier parties.
// Any uploader that is neither the student nor the major head is the international office.
func LaneOf(uploaderID uuid.UUID, app *models.Application) Lane {
	switch uploaderID {
	case app.StudentID:
		return LaneStudent
	case app.MajorHeadID:
		return LaneMajorHead
	}
	return LaneInternational
}
