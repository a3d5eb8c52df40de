package views

import (
	"testing"

	"github.com/renaix/chat-client/internal/models"
)

func msg(t models.MessageType) models.Message {
	m := models.Message{Type: t, Text: "x"}
	if t.IsOffer() {
		m.Offer = &models.OfferData{ProductID: 7, ProductName: "Silla", OriginalPrice: 50, OfferedPrice: 35}
	}
	return m
}

func TestThreadNegotiation(t *testing.T) {
	tests := []struct {
		name string
		msgs []models.Message
		want NegotiationState
	}{
		{"empty thread", nil, NegotiationNone},
		{"text only", []models.Message{msg(models.TypeText), msg(models.TypeText)}, NegotiationNone},
		{"open offer", []models.Message{msg(models.TypeText), msg(models.TypeOffer)}, NegotiationOpen},
		{"countered", []models.Message{msg(models.TypeOffer), msg(models.TypeCounterOffer)}, NegotiationCountered},
		{"accepted", []models.Message{msg(models.TypeOffer), msg(models.TypeOfferAccepted)}, NegotiationAccepted},
		{"rejected then new offer", []models.Message{msg(models.TypeOffer), msg(models.TypeOfferRejected), msg(models.TypeOffer)}, NegotiationOpen},
		{"text after acceptance keeps state", []models.Message{msg(models.TypeOffer), msg(models.TypeOfferAccepted), msg(models.TypeText)}, NegotiationAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ThreadNegotiation(tt.msgs); got != tt.want {
				t.Errorf("ThreadNegotiation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	withLast := models.Conversation{
		LastMessage: &models.LastMessage{Text: "último", SentAt: "2025-03-01T10:00:00Z"},
		Messages:    []models.Message{{Text: "viejo", SentAt: "2025-02-01T10:00:00Z"}},
	}
	if got := Preview(withLast); got != "último" {
		t.Errorf("Preview() = %q, want último", got)
	}
	if got := PreviewTime(withLast); got != "2025-03-01T10:00:00Z" {
		t.Errorf("PreviewTime() = %q", got)
	}

	noSummary := models.Conversation{Messages: []models.Message{{Text: "primero"}, {Text: "segundo"}}}
	if got := Preview(noSummary); got != "segundo" {
		t.Errorf("Preview() fallback = %q, want segundo", got)
	}

	if got := Preview(models.Conversation{}); got != "" {
		t.Errorf("Preview() of empty conversation = %q, want empty", got)
	}
}

func TestUnreadBadge(t *testing.T) {
	convs := []models.Conversation{{UnreadCount: 2}, {UnreadCount: 0}, {UnreadCount: 3}}
	if got := UnreadBadge(convs); got != 5 {
		t.Errorf("UnreadBadge() = %d, want 5", got)
	}
	if got := UnreadBadge(nil); got != 0 {
		t.Errorf("UnreadBadge(nil) = %d, want 0", got)
	}
}

func TestParticipantName(t *testing.T) {
	c := models.Conversation{Participants: []models.Owner{{ID: 1, Name: "Laura"}, {ID: 2, Name: "Marc"}}}
	if got := ParticipantName(c, 1); got != "Marc" {
		t.Errorf("ParticipantName() = %q, want Marc", got)
	}
	if got := ParticipantName(c, 99); got != "Usuario" {
		t.Errorf("ParticipantName() ambiguous = %q, want Usuario", got)
	}
}

func TestOfferLine(t *testing.T) {
	tests := []struct {
		mt   models.MessageType
		want string
	}{
		{models.TypeOffer, "Oferta: 35.00 € por Silla"},
		{models.TypeCounterOffer, "Contraoferta: 35.00 € por Silla"},
		{models.TypeOfferAccepted, "Oferta aceptada: 35.00 €"},
		{models.TypeOfferRejected, "Oferta rechazada: 35.00 €"},
		{models.TypeText, "x"},
	}
	for _, tt := range tests {
		if got := OfferLine(msg(tt.mt)); got != tt.want {
			t.Errorf("OfferLine(%v) = %q, want %q", tt.mt, got, tt.want)
		}
	}
}
