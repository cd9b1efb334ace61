package notify

import (
	"context"
)

// Channel identifies a delivery medium.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// Message is the provider-neutral notification body.
type Message struct {
	Subject string
	Body    string
}

// Sender delivers a message to one recipient address (phone number or email).
type Sender interface {
	Channel() Channel
	Send(ctx context.Context, to string, msg Message) error
}

// call runs a provider call to completion so a caller's concurrency slot stays
// held while the request is in flight. Providers bound the call themselves
// with the send timeout; when ctx ended first its error wins over theirs.
func call(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := fn()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
