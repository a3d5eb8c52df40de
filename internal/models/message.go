package models

import "strings"

// MessageType discriminates the kinds of chat message the negotiation
// flow produces. Unknown wire codes degrade to TypeText so that new
// server-side kinds never break decoding.
type MessageType int

const (
	TypeText MessageType = iota
	TypeOffer
	TypeOfferAccepted
	TypeOfferRejected
	TypeCounterOffer
)

// MessageTypeFromWire maps the server's message_type code to a
// MessageType. Total: anything unrecognized is a plain text message.
func MessageTypeFromWire(code string) MessageType {
	switch strings.ToLower(code) {
	case "offer":
		return TypeOffer
	case "offer_accepted":
		return TypeOfferAccepted
	case "offer_rejected":
		return TypeOfferRejected
	case "counter_offer":
		return TypeCounterOffer
	default:
		return TypeText
	}
}

func (t MessageType) String() string {
	switch t {
	case TypeOffer:
		return "offer"
	case TypeOfferAccepted:
		return "offer_accepted"
	case TypeOfferRejected:
		return "offer_rejected"
	case TypeCounterOffer:
		return "counter_offer"
	default:
		return "text"
	}
}

// IsOffer reports whether the type carries offer data.
func (t MessageType) IsOffer() bool {
	switch t {
	case TypeOffer, TypeOfferAccepted, TypeOfferRejected, TypeCounterOffer:
		return true
	case TypeText:
		return false
	default:
		return false
	}
}

// OfferData is the price proposal attached to offer-typed messages.
// Prices are whatever the server sent; the client performs no validation
// of offered against original.
type OfferData struct {
	ProductID     int
	ProductName   string
	OriginalPrice float64
	OfferedPrice  float64
}

// Owner identifies a marketplace user as the server presents it.
type Owner struct {
	ID     int    `json:"id"`
	Name   string `json:"nombre"`
	Avatar string `json:"avatar,omitempty"`
}

// Message is one chat entry, text or offer-typed. Offer is non-nil
// exactly when Type.IsOffer().
type Message struct {
	ID        int
	Text      string
	Sender    Owner
	Recipient Owner
	Read      bool
	// SentAt is the server's timestamp, kept opaque. Format is not ours to parse.
	SentAt   string
	ThreadID string
	Type     MessageType
	Offer    *OfferData
}

// LastMessage is the conversation-list preview: body and timestamp only.
type LastMessage struct {
	Text   string
	SentAt string
}

// Conversation groups all messages of one thread. Messages may be empty
// when only a summary was fetched.
type Conversation struct {
	ThreadID      string
	Participants  []Owner
	LastMessage   *LastMessage
	Messages      []Message
	TotalMessages int
	UnreadCount   int
}

// OtherParticipant returns the participant whose id differs from
// currentUserID. It reports false unless exactly one such participant
// exists; a thread should always have two participants, but a malformed
// payload must degrade to "unknown" rather than misattribute.
func (c Conversation) OtherParticipant(currentUserID int) (Owner, bool) {
	var found Owner
	n := 0
	for _, p := range c.Participants {
		if p.ID != currentUserID {
			found = p
			n++
		}
	}
	if n != 1 {
		return Owner{}, false
	}
	return found, true
}

// UnreadMessages is the result of the unread query.
type UnreadMessages struct {
	Total    int
	Messages []Message
}

// Purchase is the record the server creates when an offer is accepted.
// The client passes it through untouched; settlement is server business.
type Purchase struct {
	ID          int     `json:"id"`
	ProductID   int     `json:"producto_id"`
	ProductName string  `json:"producto_nombre"`
	Price       float64 `json:"precio"`
	Date        string  `json:"fecha,omitempty"`
	Status      string  `json:"estado,omitempty"`
}

// AcceptedOffer pairs the confirmation message with the purchase the
// server created as a side effect.
type AcceptedOffer struct {
	Message  Message
	Purchase Purchase
}
