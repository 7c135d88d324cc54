// Package workflow holds the learning agreement approval state machine.
//
// It is pure decision logic: given a dossier, the acting profile and the requested
// action it says whether the action is allowed, which status results and which side
// effects (reason message, event) the caller has to perform. It never touches storage.
package workflow

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/pkg/apperrors"
)

// Action is an operation an actor can request on a dossier
type Action string

const (
	ActionCreate          Action = "create"
	ActionUploadFile      Action = "upload_file"
	ActionDeleteFile      Action = "delete_file"
	ActionSubmit          Action = "submit"
	ActionValidateMajor   Action = "validate_major"
	ActionRequestRevision Action = "request_revision"
	ActionValidateFinal   Action = "validate_final"
	ActionReject          Action = "reject"
	ActionEditCourses     Action = "edit_courses"
	ActionReviewCourse    Action = "review_course"
)

// Actor is the authenticated profile performing an action
type Actor struct {
	ID   uuid.UUID
	Role models.RoleType
}

// Transition is a single allowed edge of the state machine.
// An empty To means the status is left unchanged.
type Transition struct {
	From         models.ApplicationStatus
	Action       Action
	Role         models.RoleType
	To           models.ApplicationStatus
	NeedsReason  bool
	NeedsFile    bool
	UploaderOnly bool
	Event        Event
	Message      func(reason string) string
}

// Input carries the guard inputs of an action
type Input struct {
	Reason     string
	FileCount  int
	UploaderID uuid.UUID
}

// Decision is the outcome of an allowed action
type Decision struct {
	Transition
	Current models.ApplicationStatus
	Reason  string
}

// Target returns the status the dossier ends up in
func (d Decision) Target() models.ApplicationStatus {
	if d.To == "" {
		return d.Current
	}
	return d.To
}

// Changes reports whether the decision changes the dossier status
func (d Decision) Changes() bool {
	return d.Target() != d.Current
}

// SystemMessage returns the message to append to the thread before the status write, if any
func (d Decision) SystemMessage() string {
	if d.Message == nil {
		return ""
	}
	return d.Message(d.Reason)
}

// RevisionMessage formats the thread entry written when a major head asks for changes
func RevisionMessage(reason string) string {
	return "Révision demandée : " + reason
}

// RejectionMessage formats the thread entry written when the international office refuses a dossier
func RejectionMessage(reason string) string {
	return "Dossier refusé par le service international : " + reason
}

var transitionsTable = []Transition{
	// Student editing while the dossier is open
	{From: models.StatusDraft, Action: ActionUploadFile, Role: models.RoleStudent},
	{From: models.StatusRevision, Action: ActionUploadFile, Role: models.RoleStudent},
	{From: models.StatusDraft, Action: ActionDeleteFile, Role: models.RoleStudent, UploaderOnly: true},
	{From: models.StatusRevision, Action: ActionDeleteFile, Role: models.RoleStudent, UploaderOnly: true},
	{From: models.StatusDraft, Action: ActionEditCourses, Role: models.RoleStudent},
	{From: models.StatusRevision, Action: ActionEditCourses, Role: models.RoleStudent},

	// Submission
	{From: models.StatusDraft, Action: ActionSubmit, Role: models.RoleStudent, To: models.StatusSubmitted, NeedsFile: true, Event: EventSubmitted},
	{From: models.StatusRevision, Action: ActionSubmit, Role: models.RoleStudent, To: models.StatusSubmitted, NeedsFile: true, Event: EventSubmitted},

	// First-tier review
	{From: models.StatusSubmitted, Action: ActionValidateMajor, Role: models.RoleMajorHead, To: models.StatusValidatedMajor, Event: EventValidatedMajor},
	{From: models.StatusSubmitted, Action: ActionRequestRevision, Role: models.RoleMajorHead, To: models.StatusRevision, NeedsReason: true, Message: RevisionMessage},
	{From: models.StatusSubmitted, Action: ActionReviewCourse, Role: models.RoleMajorHead},

	// Final sign-off
	{From: models.StatusValidatedMajor, Action: ActionValidateFinal, Role: models.RoleInternational, To: models.StatusValidatedFinal, Event: EventValidatedFinal},
	{From: models.StatusValidatedMajor, Action: ActionReject, Role: models.RoleInternational, To: models.StatusRejected, NeedsReason: true, Event: EventRejected, Message: RejectionMessage},
}

// Transitions returns a copy of the transition table
func Transitions() []Transition {
	out := make([]Transition, len(transitionsTable))
	copy(out, transitionsTable)
	return out
}

// TransitionFor returns the allowed transition for a given status, action and role.
func TransitionFor(from models.ApplicationStatus, action Action, role models.RoleType) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Action == action && tr.Role == role {
			return tr, true
		}
	}
	return Transition{}, false
}

// roleMayPerform reports whether any row of the table lets role perform action
func roleMayPerform(action Action, role models.RoleType) bool {
	for _, tr := range transitionsTable {
		if tr.Action == action && tr.Role == role {
			return true
		}
	}
	return false
}

// CanAccess reports whether actor may see and discuss the dossier at all.
// Students only reach their own dossier, major heads the ones assigned to them,
// the international office every dossier.
func CanAccess(app *models.Application, actor Actor) bool {
	if app == nil {
		return false
	}
	switch actor.Role {
	case models.RoleStudent:
		return app.StudentID == actor.ID
	case models.RoleMajorHead:
		return app.MajorHeadID == actor.ID
	case models.RoleInternational:
		return true
	}
	return false
}

// Decide validates action against the dossier and returns what to apply.
// Authorization is checked first, then the table, then the guards; a failing
// check always means nothing must be written.
func Decide(app *models.Application, actor Actor, action Action, in Input) (Decision, error) {
	if app == nil {
		return Decision{}, apperrors.NewResourceNotFoundError("application not found")
	}
	if !roleMayPerform(action, actor.Role) || !CanAccess(app, actor) {
		return Decision{}, apperrors.NewForbiddenError(fmt.Sprintf("%s may not %s this application", actor.Role, action))
	}
	if !app.Status.Valid() {
		return Decision{}, invalidTransition(app.Status, action)
	}

	tr, ok := TransitionFor(app.Status, action, actor.Role)
	if !ok {
		return Decision{}, invalidTransition(app.Status, action)
	}

	if tr.UploaderOnly && in.UploaderID != actor.ID {
		return Decision{}, apperrors.NewForbiddenError("only the uploader may delete this file")
	}

	reason := strings.TrimSpace(in.Reason)
	if tr.NeedsReason && reason == "" {
		return Decision{}, apperrors.NewValidationError("a reason is required")
	}
	if tr.NeedsFile && in.FileCount < 1 {
		return Decision{}, apperrors.NewValidationError("at least one document is required before submitting")
	}

	return Decision{Transition: tr, Current: app.Status, Reason: reason}, nil
}

// DecideCreate checks the creation of a new dossier. hasExisting tells whether the
// student already owns a dossier for the current academic year.
func DecideCreate(actor Actor, hasExisting bool) error {
	if actor.Role != models.RoleStudent {
		return apperrors.NewForbiddenError("only students can create an application")
	}
	if hasExisting {
		return apperrors.NewCustomError(apperrors.ErrDuplicateApplication, "Vous avez déjà un dossier pour cette année")
	}
	return nil
}

// IsEditable reports whether the student may still change documents and courses
func IsEditable(status models.ApplicationStatus) bool {
	return status == models.StatusDraft || status == models.StatusRevision
}

// IsTerminal reports whether no further transition leaves status
func IsTerminal(status models.ApplicationStatus) bool {
	return status == models.StatusValidatedFinal || status == models.StatusRejected
}

// AvailableActions lists the actions actor could perform right now, ignoring input guards.
func AvailableActions(app *models.Application, actor Actor) []Action {
	if !CanAccess(app, actor) {
		return nil
	}
	var actions []Action
	seen := make(map[Action]bool)
	for _, tr := range transitionsTable {
		if tr.From == app.Status && tr.Role == actor.Role && !seen[tr.Action] {
			seen[tr.Action] = true
			actions = append(actions, tr.Action)
		}
	}
	return actions
}

func invalidTransition(status models.ApplicationStatus, action Action) error {
	return apperrors.NewCustomError(
		apperrors.ErrInvalidTransition,
		fmt.Sprintf("cannot %s an application in status %q", action, status),
	).WithCode(string(action))
}
