package workflow

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/pkg/apperrors"
)

type fixture struct {
	student       Actor
	otherStudent  Actor
	majorHead     Actor
	otherHead     Actor
	international Actor
}

func newFixture() fixture {
	return fixture{
		student:       Actor{ID: uuid.New(), Role: models.RoleStudent},
		otherStudent:  Actor{ID: uuid.New(), Role: models.RoleStudent},
		majorHead:     Actor{ID: uuid.New(), Role: models.RoleMajorHead},
		otherHead:     Actor{ID: uuid.New(), Role: models.RoleMajorHead},
		international: Actor{ID: uuid.New(), Role: models.RoleInternational},
	}
}

func (f fixture) app(status models.ApplicationStatus) *models.Application {
	return &models.Application{
		ID:             uuid.New(),
		StudentID:      f.student.ID,
		MajorHeadID:    f.majorHead.ID,
		Status:         status,
		UniversityName: "Politecnico di Milano",
	}
}

func (f fixture) actorFor(role models.RoleType) Actor {
	switch role {
	case models.RoleStudent:
		return f.student
	case models.RoleMajorHead:
		return f.majorHead
	}
	return f.international
}

// apply runs Decide and mutates the application like a service would
func apply(t *testing.T, app *models.Application, actor Actor, action Action, in Input) Decision {
	t.Helper()
	d, err := Decide(app, actor, action, in)
	require.NoError(t, err)
	app.Status = d.Target()
	return d
}

func TestDecide_AllowedRows(t *testing.T) {
	f := newFixture()
	for _, tr := range Transitions() {
		tr := tr
		t.Run(string(tr.From)+"/"+string(tr.Action)+"/"+string(tr.Role), func(t *testing.T) {
			actor := f.actorFor(tr.Role)
			in := Input{Reason: "missing syllabus", FileCount: 1, UploaderID: actor.ID}

			d, err := Decide(f.app(tr.From), actor, tr.Action, in)
			require.NoError(t, err)
			assert.True(t, d.Target().Valid())
			if tr.To == "" {
				assert.False(t, d.Changes())
			} else {
				assert.Equal(t, tr.To, d.Target())
			}
		})
	}
}

func TestDecide_DisallowedTriplesLeaveStatusUnchanged(t *testing.T) {
	f := newFixture()
	roles := []models.RoleType{models.RoleStudent, models.RoleMajorHead, models.RoleInternational}
	actions := []Action{
		ActionUploadFile, ActionDeleteFile, ActionSubmit, ActionValidateMajor,
		ActionRequestRevision, ActionValidateFinal, ActionReject, ActionEditCourses, ActionReviewCourse,
	}

	for _, status := range models.AllStatuses {
		for _, role := range roles {
			for _, action := range actions {
				if _, ok := TransitionFor(status, action, role); ok {
					continue
				}
				app := f.app(status)
				actor := f.actorFor(role)

				_, err := Decide(app, actor, action, Input{Reason: "r", FileCount: 1, UploaderID: actor.ID})
				require.Error(t, err, "%s %s %s", status, role, action)
				assert.True(t,
					errors.Is(err, apperrors.ErrInvalidTransition) || errors.Is(err, apperrors.ErrPermissionDenied),
					"%s %s %s: unexpected error %v", status, role, action, err)
				assert.Equal(t, status, app.Status)
			}
		}
	}
}

func TestDecide_AssignmentIsEnforced(t *testing.T) {
	f := newFixture()

	_, err := Decide(f.app(models.StatusSubmitted), f.otherHead, ActionValidateMajor, Input{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = Decide(f.app(models.StatusDraft), f.otherStudent, ActionSubmit, Input{FileCount: 1})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	// international is not bound by assignment
	_, err = Decide(f.app(models.StatusValidatedMajor), Actor{ID: uuid.New(), Role: models.RoleInternational}, ActionValidateFinal, Input{})
	assert.NoError(t, err)
}

func TestDecide_AuthorizationBeforePrecondition(t *testing.T) {
	f := newFixture()

	// wrong assignee and wrong status: the permission error wins
	_, err := Decide(f.app(models.StatusDraft), f.otherHead, ActionValidateMajor, Input{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestDecide_Guards(t *testing.T) {
	f := newFixture()

	t.Run("submit without files", func(t *testing.T) {
		_, err := Decide(f.app(models.StatusDraft), f.student, ActionSubmit, Input{})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("blank revision reason", func(t *testing.T) {
		_, err := Decide(f.app(models.StatusSubmitted), f.majorHead, ActionRequestRevision, Input{Reason: "   "})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("empty rejection reason", func(t *testing.T) {
		_, err := Decide(f.app(models.StatusValidatedMajor), f.international, ActionReject, Input{})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("delete file of another uploader", func(t *testing.T) {
		_, err := Decide(f.app(models.StatusDraft), f.student, ActionDeleteFile, Input{UploaderID: uuid.New()})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("reason is trimmed", func(t *testing.T) {
		d, err := Decide(f.app(models.StatusValidatedMajor), f.international, ActionReject, Input{Reason: "  incomplete  "})
		require.NoError(t, err)
		assert.Equal(t, "Dossier refusé par le service international : incomplete", d.SystemMessage())
	})
}

func TestDecide_ValidateMajorIsNotRepeatable(t *testing.T) {
	f := newFixture()
	app := f.app(models.StatusValidatedMajor)

	_, err := Decide(app, f.majorHead, ActionValidateMajor, Input{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, models.StatusValidatedMajor, app.Status)
}

func TestDecide_UnknownStatus(t *testing.T) {
	f := newFixture()
	_, err := Decide(f.app("archived"), f.student, ActionSubmit, Input{FileCount: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = Decide(nil, f.student, ActionSubmit, Input{})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestDecideCreate(t *testing.T) {
	f := newFixture()

	assert.NoError(t, DecideCreate(f.student, false))
	assert.ErrorIs(t, DecideCreate(f.majorHead, false), apperrors.ErrPermissionDenied)

	err := DecideCreate(f.student, true)
	require.ErrorIs(t, err, apperrors.ErrDuplicateApplication)
	msg, ok := apperrors.UserMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Vous avez déjà un dossier pour cette année", msg)
}

func TestScenario_HappyPath(t *testing.T) {
	f := newFixture()
	app := f.app(models.StatusDraft)

	apply(t, app, f.student, ActionUploadFile, Input{})
	assert.Equal(t, models.StatusDraft, app.Status)

	d := apply(t, app, f.student, ActionSubmit, Input{FileCount: 1})
	assert.Equal(t, models.StatusSubmitted, app.Status)
	assert.Equal(t, EventSubmitted, d.Event)

	d = apply(t, app, f.majorHead, ActionValidateMajor, Input{})
	assert.Equal(t, models.StatusValidatedMajor, app.Status)
	assert.Equal(t, EventValidatedMajor, d.Event)
	assert.Empty(t, d.SystemMessage())

	d = apply(t, app, f.international, ActionValidateFinal, Input{})
	assert.Equal(t, models.StatusValidatedFinal, app.Status)
	assert.Equal(t, EventValidatedFinal, d.Event)
	assert.True(t, IsTerminal(app.Status))

	for _, actor := range []Actor{f.student, f.majorHead, f.international} {
		assert.Empty(t, AvailableActions(app, actor))
		for _, action := range []Action{ActionSubmit, ActionValidateMajor, ActionValidateFinal, ActionReject, ActionRequestRevision} {
			_, err := Decide(app, actor, action, Input{Reason: "x", FileCount: 1})
			assert.Error(t, err)
		}
	}
	assert.Equal(t, models.StatusValidatedFinal, app.Status)
}

func TestScenario_RevisionRoundTrip(t *testing.T) {
	f := newFixture()
	app := f.app(models.StatusSubmitted)

	d := apply(t, app, f.majorHead, ActionRequestRevision, Input{Reason: "missing syllabus"})
	assert.Equal(t, models.StatusRevision, app.Status)
	assert.Contains(t, d.SystemMessage(), "missing syllabus")
	assert.Empty(t, d.Event)
	assert.True(t, IsEditable(app.Status))

	apply(t, app, f.student, ActionSubmit, Input{FileCount: 1})
	assert.Equal(t, models.StatusSubmitted, app.Status)
}

func TestRank(t *testing.T) {
	submitted, ok := Rank(models.StatusSubmitted)
	require.True(t, ok)
	revision, ok := Rank(models.StatusRevision)
	require.True(t, ok)
	major, _ := Rank(models.StatusValidatedMajor)
	final, _ := Rank(models.StatusValidatedFinal)
	draft, _ := Rank(models.StatusDraft)

	assert.Equal(t, 1, submitted)
	assert.Equal(t, submitted, revision)
	assert.Less(t, draft, submitted)
	assert.Less(t, submitted, major)
	assert.Less(t, major, final)

	r, ok := Rank(models.StatusRejected)
	assert.False(t, ok)
	assert.Equal(t, RejectedRank, r)
}

func TestBuildTimeline(t *testing.T) {
	tl := BuildTimeline(models.StatusRevision, FrenchBadges)
	assert.True(t, tl.InRevision)
	assert.Equal(t, 1, tl.Rank)
	require.Len(t, tl.Steps, 4)
	assert.True(t, tl.Steps[0].Done)
	assert.True(t, tl.Steps[1].Current)
	assert.False(t, tl.Steps[2].Done)

	final := BuildTimeline(models.StatusValidatedFinal, FrenchBadges)
	assert.True(t, final.Steps[3].Done)

	rejected := BuildTimeline(models.StatusRejected, FrenchBadges)
	assert.True(t, rejected.Rejected)
	assert.Empty(t, rejected.Steps)
}

func TestBadgeSet(t *testing.T) {
	for _, s := range models.AllStatuses {
		assert.NotEmpty(t, FrenchBadges.For(s).Label, s)
	}
	assert.Equal(t, "En révision", FrenchBadges.For(models.StatusRevision).Label)

	custom := FrenchBadges.Merge(map[string]Badge{
		"rejected": {Label: "Rejected"},
		"bogus":    {Label: "ignored"},
	})
	assert.Equal(t, Badge{Label: "Rejected", Color: "red"}, custom.For(models.StatusRejected))
	assert.Len(t, custom, len(FrenchBadges))
	assert.Equal(t, "Refusé", FrenchBadges.For(models.StatusRejected).Label)
}

func TestLaneOf(t *testing.T) {
	f := newFixture()
	app := f.app(models.StatusDraft)

	assert.Equal(t, LaneStudent, LaneOf(f.student.ID, app))
	assert.Equal(t, LaneMajorHead, LaneOf(f.majorHead.ID, app))
	assert.Equal(t, LaneInternational, LaneOf(uuid.New(), app))
}

func TestRecipients(t *testing.T) {
	f := newFixture()
	app := f.app(models.StatusValidatedMajor)
	intl := []uuid.UUID{f.international.ID, uuid.New()}

	got := Recipients(EventValidatedMajor, app, f.majorHead.ID, intl)
	assert.ElementsMatch(t, append([]uuid.UUID{f.student.ID}, intl...), got)

	got = Recipients(EventNewMessage, app, f.student.ID, intl)
	assert.Equal(t, []uuid.UUID{f.majorHead.ID}, got)

	got = Recipients(EventValidatedFinal, app, f.international.ID, intl)
	assert.ElementsMatch(t, []uuid.UUID{f.student.ID, f.majorHead.ID}, got)
}

func TestParseEvent(t *testing.T) {
	e, ok := ParseEvent("application_rejected")
	assert.True(t, ok)
	assert.Equal(t, EventRejected, e)

	_, ok = ParseEvent("application_deleted")
	assert.False(t, ok)
	assert.Len(t, AllEvents(), 5)
}
