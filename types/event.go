package types

import "time"

// ActivityType names a forum activity published to the message bus.
type ActivityType string

const (
	ActivityUserSignedUp ActivityType = "user.signed_up"
	ActivityPostCreated  ActivityType = "post.created"
	ActivityPostDeleted  ActivityType = "post.deleted"
)

// ActivityEvent is the payload published after a successful mutation.
type ActivityEvent struct {
	Type       ActivityType `json:"type"`
	UserID     int64        `json:"user_id"`
	PostID     int64        `json:"post_id,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}
