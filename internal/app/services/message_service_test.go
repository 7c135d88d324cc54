package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/workflow"
	"github.com/yigit/mobility/internal/pkg/apperrors"
)

func (f *fixture) messageService() MessageService {
	return NewMessageService(f.messages, f.profiles, f.authz, f.events, testLogger)
}

func TestMessageService_Post(t *testing.T) {
	f := newFixture()
	app := f.addApplication(models.StatusValidatedFinal)

	msg, err := f.messageService().Post(context.Background(), actorOf(f.head), app.ID, "  see you in Milan  ")
	require.NoError(t, err)
	assert.Equal(t, "see you in Milan", msg.Content)
	require.NotNil(t, msg.Sender)
	assert.Equal(t, f.head.FullName, msg.Sender.FullName)

	require.Len(t, f.events.calls, 1)
	call := f.events.calls[0]
	assert.Equal(t, workflow.EventNewMessage, call.event)
	assert.Equal(t, f.head.ID, call.sender)
	assert.Equal(t, "see you in Milan", call.preview)
}

func TestMessageService_Post_Rejections(t *testing.T) {
	f := newFixture()
	app := f.addApplication(models.StatusDraft)
	svc := f.messageService()

	_, err := svc.Post(context.Background(), actorOf(f.student), app.ID, " \n ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Post(context.Background(), actorOf(f.otherHead), app.ID, "hello")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	assert.Empty(t, f.messages.messages)
	assert.Empty(t, f.events.calls)
}

func TestMessageService_List(t *testing.T) {
	f := newFixture()
	app := f.addApplication(models.StatusSubmitted)
	svc := f.messageService()
	ctx := context.Background()

	_, err := svc.Post(ctx, actorOf(f.student), app.ID, "first")
	require.NoError(t, err)
	_, err = svc.Post(ctx, actorOf(f.international), app.ID, "second")
	require.NoError(t, err)

	thread, err := svc.List(ctx, actorOf(f.head), app.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "first", thread[0].Content)
	assert.Equal(t, "second", thread[1].Content)

	_, err = svc.List(ctx, actorOf(f.otherStudent), app.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
