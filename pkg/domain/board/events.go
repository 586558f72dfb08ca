package board

import (
	"time"

	"github.com/boardkit/api/pkg/domain/shared"
)

// EventAction identifies a membership change visible to the activity
// feed. Exactly one event is emitted per membership change.
type EventAction string

const (
	EventMemberAdded       EventAction = "member_added"
	EventMemberRoleChanged EventAction = "member_role_changed"
	EventMemberRemoved     EventAction = "member_removed"
)

// Event is a membership change notification. The core emits these; the
// activity-feed collaborator formats and persists them.
type Event struct {
	Action     EventAction `json:"action"`
	BoardID    shared.ID   `json:"board_id"`
	ActorID    shared.ID   `json:"actor_id"`
	SubjectID  shared.ID   `json:"subject_id"` // the user whose membership changed
	Role       Role        `json:"role,omitempty"`
	OldRole    Role        `json:"old_role,omitempty"`
	ViaLink    bool        `json:"via_link,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// NewEvent builds an Event stamped with the current time.
func NewEvent(action EventAction, boardID, actorID, subjectID shared.ID) Event {
	return Event{
		Action:     action,
		BoardID:    boardID,
		ActorID:    actorID,
		SubjectID:  subjectID,
		OccurredAt: time.Now().UTC(),
	}
}
