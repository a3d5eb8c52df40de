package repository

import (
	"github.com/renaix/chat-client/internal/api"
	"github.com/renaix/chat-client/internal/models"
)

// Mapping from wire DTOs to domain values. All conversions are total:
// an unknown message_type decodes as text, and offer-typed messages with
// missing offer fields get zero-valued defaults instead of an error. The
// defaulting case is logged so an incomplete server payload is visible
// in the logs rather than silently absorbed.

func toOwner(d api.OwnerDTO) models.Owner {
	return models.Owner{ID: d.ID, Name: d.Name, Avatar: d.Avatar}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *Repository) toMessage(d api.MessageDTO) models.Message {
	m := models.Message{
		ID:        d.ID,
		Text:      d.Text,
		Sender:    toOwner(d.Sender),
		Recipient: toOwner(d.Recipient),
		Read:      d.Read,
		SentAt:    strOrEmpty(d.SentAt),
		ThreadID:  strOrEmpty(d.ThreadID),
		Type:      models.TypeText,
	}
	if d.MessageType != nil {
		m.Type = models.MessageTypeFromWire(*d.MessageType)
	}
	if m.Type.IsOffer() {
		offer, complete := toOfferData(d.OfferData)
		m.Offer = offer
		if !complete {
			r.log.Warnw("offer message with incomplete offer_data, defaulting",
				"message_id", d.ID, "thread_id", m.ThreadID, "message_type", m.Type.String())
		}
	}
	return m
}

// toOfferData builds OfferData from a possibly partial wire payload.
// complete is false when any required field was absent.
func toOfferData(d *api.OfferDataDTO) (*models.OfferData, bool) {
	if d == nil {
		return &models.OfferData{}, false
	}
	offer := &models.OfferData{}
	complete := true
	if d.ProductID != nil {
		offer.ProductID = *d.ProductID
	}
	if d.ProductName != nil {
		offer.ProductName = *d.ProductName
	} else {
		complete = false
	}
	if d.OriginalPrice != nil {
		offer.OriginalPrice = *d.OriginalPrice
	} else {
		complete = false
	}
	if d.OfferedPrice != nil {
		offer.OfferedPrice = *d.OfferedPrice
	} else {
		complete = false
	}
	return offer, complete
}

func (r *Repository) toConversation(d api.ConversationDTO) models.Conversation {
	c := models.Conversation{
		ThreadID:      d.ThreadID,
		TotalMessages: d.Total,
		UnreadCount:   d.Unread,
	}
	c.Participants = make([]models.Owner, 0, len(d.Participants))
	for _, p := range d.Participants {
		c.Participants = append(c.Participants, toOwner(p))
	}
	if d.LastMessage != nil {
		c.LastMessage = &models.LastMessage{
			Text:   d.LastMessage.Text,
			SentAt: strOrEmpty(d.LastMessage.SentAt),
		}
	}
	c.Messages = make([]models.Message, 0, len(d.Messages))
	for _, m := range d.Messages {
		c.Messages = append(c.Messages, r.toMessage(m))
	}
	return c
}

func toPurchase(d api.PurchaseDTO) models.Purchase {
	return models.Purchase{
		ID:          d.ID,
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		Price:       d.Price,
		Date:        strOrEmpty(d.Date),
		Status:      strOrEmpty(d.Status),
	}
}
