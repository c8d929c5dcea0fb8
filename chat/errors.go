package chat

import "errors"

var (
	ErrUnknownEventType    = errors.New("unknown event type")
	ErrServerOnlyEvent     = errors.New("event type is emitted by the server only")
	ErrMissingChannelID    = errors.New("channel id is required")
	ErrEmptyContent        = errors.New("message content must not be empty")
	ErrInvalidMessageType  = errors.New("unknown message type")
	ErrContentTooLong      = errors.New("message content exceeds the maximum length")
	ErrChannelAccessDenied = errors.New("no access to this channel")
)
