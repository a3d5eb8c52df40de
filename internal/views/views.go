package views

import (
	"fmt"

	"github.com/renaix/chat-client/internal/models"
)

// Read-only projections over already-fetched chat data. No network, no
// mutation: presentation code calls these on whatever the repository
// last returned.

// NegotiationState is the per-thread negotiation status derived from
// the tagged messages alone. The client asserts nothing the server has
// not said: the state is simply the latest offer-typed message's kind.
type NegotiationState int

const (
	// NegotiationNone: no offer has been made in this thread.
	NegotiationNone NegotiationState = iota
	// NegotiationOpen: an offer is on the table, unanswered.
	NegotiationOpen
	// NegotiationCountered: the latest move is a counter-offer.
	NegotiationCountered
	// NegotiationAccepted: the server confirmed acceptance.
	NegotiationAccepted
	// NegotiationRejected: the latest offer was rejected.
	NegotiationRejected
)

func (s NegotiationState) String() string {
	switch s {
	case NegotiationOpen:
		return "open"
	case NegotiationCountered:
		return "countered"
	case NegotiationAccepted:
		return "accepted"
	case NegotiationRejected:
		return "rejected"
	default:
		return "none"
	}
}

// ThreadNegotiation derives the negotiation state from a thread's
// messages, assumed to be in the order the server returned them.
func ThreadNegotiation(msgs []models.Message) NegotiationState {
	state := NegotiationNone
	for _, m := range msgs {
		switch m.Type {
		case models.TypeOffer:
			state = NegotiationOpen
		case models.TypeCounterOffer:
			state = NegotiationCountered
		case models.TypeOfferAccepted:
			state = NegotiationAccepted
		case models.TypeOfferRejected:
			state = NegotiationRejected
		case models.TypeText:
			// text does not move the negotiation
		}
	}
	return state
}

// Preview is the one-line conversation summary for the list screen:
// the last-message body, falling back to the newest fetched message,
// empty when the thread has no content at all.
func Preview(c models.Conversation) string {
	if c.LastMessage != nil {
		return c.LastMessage.Text
	}
	if n := len(c.Messages); n > 0 {
		return c.Messages[n-1].Text
	}
	return ""
}

// PreviewTime returns the timestamp paired with Preview, opaque string
// as the server sent it.
func PreviewTime(c models.Conversation) string {
	if c.LastMessage != nil {
		return c.LastMessage.SentAt
	}
	if n := len(c.Messages); n > 0 {
		return c.Messages[n-1].SentAt
	}
	return ""
}

// UnreadBadge sums unread counts across conversations for the tab badge.
func UnreadBadge(convs []models.Conversation) int {
	total := 0
	for _, c := range convs {
		total += c.UnreadCount
	}
	return total
}

// ParticipantName is the display name of the conversation's other
// participant, or a neutral placeholder when it cannot be determined.
func ParticipantName(c models.Conversation, currentUserID int) string {
	if other, ok := c.OtherParticipant(currentUserID); ok {
		return other.Name
	}
	return "Usuario"
}

// OfferLine formats an offer-typed message for display. Text messages
// return their body unchanged.
func OfferLine(m models.Message) string {
	switch m.Type {
	case models.TypeOffer:
		return fmt.Sprintf("Oferta: %.2f € por %s", m.Offer.OfferedPrice, m.Offer.ProductName)
	case models.TypeCounterOffer:
		return fmt.Sprintf("Contraoferta: %.2f € por %s", m.Offer.OfferedPrice, m.Offer.ProductName)
	case models.TypeOfferAccepted:
		return fmt.Sprintf("Oferta aceptada: %.2f €", m.Offer.OfferedPrice)
	case models.TypeOfferRejected:
		return fmt.Sprintf("Oferta rechazada: %.2f €", m.Offer.OfferedPrice)
	case models.TypeText:
		return m.Text
	default:
		return m.Text
	}
}
