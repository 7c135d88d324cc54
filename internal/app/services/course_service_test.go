package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/pkg/apperrors"
)

func (f *fixture) courseService() CourseService {
	return NewCourseService(f.courses, f.authz, testLogger)
}

func courseRequest() *dto.CreateCourseRequest {
	return &dto.CreateCourseRequest{
		Title:     "Distributed Systems",
		Language:  "English",
		Level:     "M1",
		StartDate: "2025-09-15",
		EndDate:   "2026-01-31",
		ECTS:      6,
	}
}

func boolPtr(b bool) *bool { return &b }

func (f *fixture) addCourse(app *models.Application, validated *bool) *models.Course {
	c := &models.Course{ID: uuid.New(), ApplicationID: app.ID, Title: "Algorithms", Level: models.CourseLevelM1, ECTS: 5, IsValidated: validated}
	f.courses.courses[c.ID] = c
	return c
}

func TestCourseService_Add(t *testing.T) {
	f := newFixture()
	app := f.addApplication(models.StatusDraft)

	course, err := f.courseService().Add(context.Background(), actorOf(f.student), app.ID, courseRequest())
	require.NoError(t, err)
	assert.Equal(t, app.ID, course.ApplicationID)
	assert.Nil(t, course.IsValidated)
	assert.Equal(t, 2025, course.StartDate.Year())
	assert.Len(t, f.courses.courses, 1)
}

func TestCourseService_Add_Rejections(t *testing.T) {
	f := newFixture()
	draft := f.addApplication(models.StatusDraft)
	svc := f.courseService()

	req := courseRequest()
	req.EndDate = "2025-01-01"
	_, err := svc.Add(context.Background(), actorOf(f.student), draft.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	req = courseRequest()
	req.Level = "M3"
	_, err = svc.Add(context.Background(), actorOf(f.student), draft.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Add(context.Background(), actorOf(f.head), draft.ID, courseRequest())
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	f.applications.apps[draft.ID].Status = models.StatusSubmitted
	_, err = svc.Add(context.Background(), actorOf(f.student), draft.ID, courseRequest())
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	assert.Empty(t, f.courses.courses)
}

func TestCourseService_Delete(t *testing.T) {
	f := newFixture()
	app := f.addApplication(models.StatusRevision)
	pending := f.addCourse(app, nil)
	validated := f.addCourse(app, boolPtr(true))
	refused := f.addCourse(app, boolPtr(false))
	svc := f.courseService()

	require.NoError(t, svc.Delete(context.Background(), actorOf(f.student), app.ID, pending.ID))
	require.NoError(t, svc.Delete(context.Background(), actorOf(f.student), app.ID, refused.ID))

	err := svc.Delete(context.Background(), actorOf(f.student), app.ID, validated.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Len(t, f.courses.courses, 1)
}

func TestCourseService_Review(t *testing.T) {
	f := newFixture()
	app := f.addApplication(models.StatusSubmitted)
	course := f.addCourse(app, nil)
	svc := f.courseService()
	ctx := context.Background()

	_, err := svc.Review(ctx, actorOf(f.head), app.ID, course.ID, &dto.ReviewCourseRequest{IsValidated: boolPtr(false)})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	got, err := svc.Review(ctx, actorOf(f.head), app.ID, course.ID, &dto.ReviewCourseRequest{IsValidated: boolPtr(false), RejectionReason: " not equivalent "})
	require.NoError(t, err)
	require.NotNil(t, got.RejectionReason)
	assert.Equal(t, "not equivalent", *got.RejectionReason)

	got, err = svc.Review(ctx, actorOf(f.head), app.ID, course.ID, &dto.ReviewCourseRequest{IsValidated: boolPtr(true), RejectionReason: "ignored"})
	require.NoError(t, err)
	assert.True(t, *got.IsValidated)
	assert.Nil(t, got.RejectionReason)

	got, err = svc.Review(ctx, actorOf(f.head), app.ID, course.ID, &dto.ReviewCourseRequest{})
	require.NoError(t, err)
	assert.Nil(t, got.IsValidated)
	assert.Nil(t, f.courses.courses[course.ID].IsValidated)

	_, err = svc.Review(ctx, actorOf(f.otherHead), app.ID, course.ID, &dto.ReviewCourseRequest{IsValidated: boolPtr(true)})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.Review(ctx, actorOf(f.international), app.ID, course.ID, &dto.ReviewCourseRequest{IsValidated: boolPtr(true)})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	f.applications.apps[app.ID].Status = models.StatusValidatedMajor
	_, err = svc.Review(ctx, actorOf(f.head), app.ID, course.ID, &dto.ReviewCourseRequest{IsValidated: boolPtr(true)})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestCourseService_List(t *testing.T) {
	f := newFixture()
	app := f.addApplication(models.StatusDraft)
	f.addCourse(app, nil)

	courses, err := f.courseService().List(context.Background(), actorOf(f.head), app.ID)
	require.NoError(t, err)
	assert.Len(t, courses, 1)

	_, err = f.courseService().List(context.Background(), actorOf(f.otherStudent), app.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
