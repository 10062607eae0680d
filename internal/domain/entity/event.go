package entity

// Event types published to the broker for downstream services.
const (
	EventChatDeleted = "chat.deleted"
)

// RelationshipRemovedEvent names both parties of a removed friendship.
// The chat service tears down the conversation between them.
type RelationshipRemovedEvent struct {
	User1 string `json:"user1"`
	User2 string `json:"user2"`
}

// AvatarJob is the JSON payload put on the RabbitMQ avatar queue.
// The worker downloads/decodes ImagePath, uploads the result to object
// storage and writes the final URL back onto the profile. Attempt is
// bookkeeping for the worker's bounded retry; producers leave it zero.
type AvatarJob struct {
	UserID    string `json:"user_id"`
	ImagePath string `json:"image_path"`
	Attempt   int    `json:"attempt,omitempty"`
}
