package domain

type RegisterCommand struct {
	Name string `validate:"required,max=64"`
}

type PostMessageCommand struct {
	From string      `validate:"required,max=64"`
	To   string      `validate:"required,max=64"`
	Text string      `validate:"required,max=4096"`
	Kind MessageKind `validate:"required,oneof=message private_message"`
}

// GetMessagesCommand carries the raw limit so that the query layer decides
// what a malformed value means.
type GetMessagesCommand struct {
	User     string
	Limit    string
	HasLimit bool
}
