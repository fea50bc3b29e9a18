package model

type EventType string

const (
	EventDraftSaved     EventType = "draft.saved"
	EventDraftDeleted   EventType = "draft.deleted"
	EventDraftPublished EventType = "draft.published"
)

// DraftEvent is pushed to the author's open editors over /events.
type DraftEvent struct {
	Type    EventType `json:"type"`
	DraftID DraftID   `json:"draftId"`
	PostID  PostID    `json:"postId,omitempty"`
	Title   string    `json:"title,omitempty"`
}
