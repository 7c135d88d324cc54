package workflow

import (
	"github.com/google/uuid"
	"github.com/yigit/mobility/internal/app/models"
)

// Event is the name of a notification-worthy occurrence on a dossier
type Event string

const (
	EventSubmitted      Event = "application_submitted"
	EventValidatedMajor Event = "application_validated_major"
	EventValidatedFinal Event = "application_validated_final"
	EventRejected       Event = "application_rejected"
	EventNewMessage     Event = "new_message"
)

var allEvents = []Event{
	EventSubmitted,
	EventValidatedMajor,
	EventValidatedFinal,
	EventRejected,
	EventNewMessage,
}

// AllEvents returns every recognized event name
func AllEvents() []Event {
	out := make([]Event, len(allEvents))
	copy(out, allEvents)
	return out
}

// ParseEvent maps a raw event name to a recognized Event
func ParseEvent(name string) (Event, bool) {
	for _, e := range allEvents {
		if string(e) == name {
			return e, true
		}
	}
	return "", false
}

// PersistedByDefault lists the events that always produce inbox notifications.
// The other events only do so when the deployment opts in.
var PersistedByDefault = map[Event]bool{
	EventValidatedMajor: true,
	EventValidatedFinal: true,
}

// Recipients returns the profiles that get an inbox notification for event.
// sender is excluded so nobody is notified of their own action.
func Recipients(event Event, app *models.Application, sender uuid.UUID, internationalIDs []uuid.UUID) []uuid.UUID {
	var ids []uuid.UUID
	switch event {
	case EventSubmitted:
		ids = []uuid.UUID{app.MajorHeadID}
	case EventValidatedMajor:
		ids = append([]uuid.UUID{app.StudentID}, internationalIDs...)
	case EventValidatedFinal, EventRejected:
		ids = []uuid.UUID{app.StudentID, app.MajorHeadID}
	case EventNewMessage:
		ids = []uuid.UUID{app.StudentID, app.MajorHeadID}
	}

	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || id == sender || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// NotificationText is the inbox line shown for event
func NotificationText(event Event, app *models.Application) string {
	switch event {
	case EventSubmitted:
		return "Un dossier a été soumis pour " + app.UniversityName
	case EventValidatedMajor:
		return "Dossier validé par le responsable de majeure (" + app.UniversityName + ")"
	case EventValidatedFinal:
		return "Dossier validé définitivement (" + app.UniversityName + ")"
	case EventRejected:
		return "Dossier refusé par le service international (" + app.UniversityName + ")"
	case EventNewMessage:
		return "Nouveau message sur le dossier " + app.UniversityName
	}
	return string(event)
}
