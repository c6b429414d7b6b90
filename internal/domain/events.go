package domain

// Event 领域事件，在同一事务内同步分发
type Event interface{ EventName() string }

type RequestCreated struct {
	Request FriendRequest
	Sender  UserProfile
}

type FriendRequestAccepted struct {
	Request FriendRequest
}

type TicketCreated struct{ Ticket Ticket }

type TicketUpdated struct{ Ticket Ticket }

// TicketReplyAdded fires only when the reply goes from unset to set.
type TicketReplyAdded struct {
	Ticket  Ticket
	OwnerID string // empty when the contact email maps to no user
}

func (RequestCreated) EventName() string        { return "friend.request_created" }
func (FriendRequestAccepted) EventName() string { return "friend.request_accepted" }
func (TicketCreated) EventName() string         { return "ticket.created" }
func (TicketUpdated) EventName() string         { return "ticket.updated" }
func (TicketReplyAdded) EventName() string      { return "ticket.reply_added" }
