package models

import "testing"

func TestMessageTypeFromWire(t *testing.T) {
	tests := []struct {
		code string
		want MessageType
	}{
		{"text", TypeText},
		{"offer", TypeOffer},
		{"offer_accepted", TypeOfferAccepted},
		{"offer_rejected", TypeOfferRejected},
		{"counter_offer", TypeCounterOffer},
		{"OFFER", TypeOffer},
		{"Counter_Offer", TypeCounterOffer},
		{"", TypeText},
		{"audio", TypeText},
		{"offer_withdrawn", TypeText},
		{"garbage-✁", TypeText},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := MessageTypeFromWire(tt.code); got != tt.want {
				t.Errorf("MessageTypeFromWire(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestMessageTypeIsOffer(t *testing.T) {
	offerTypes := []MessageType{TypeOffer, TypeOfferAccepted, TypeOfferRejected, TypeCounterOffer}
	for _, mt := range offerTypes {
		if !mt.IsOffer() {
			t.Errorf("%v.IsOffer() = false, want true", mt)
		}
	}
	if TypeText.IsOffer() {
		t.Error("TypeText.IsOffer() = true, want false")
	}
}

func TestMessageTypeString(t *testing.T) {
	for _, mt := range []MessageType{TypeText, TypeOffer, TypeOfferAccepted, TypeOfferRejected, TypeCounterOffer} {
		if MessageTypeFromWire(mt.String()) != mt {
			t.Errorf("round trip of %v via %q failed", mt, mt.String())
		}
	}
}

func TestOtherParticipant(t *testing.T) {
	laura := Owner{ID: 1, Name: "Laura"}
	marc := Owner{ID: 2, Name: "Marc"}

	tests := []struct {
		name          string
		participants  []Owner
		currentUserID int
		want          Owner
		wantOK        bool
	}{
		{
			name:          "two participants, current is first",
			participants:  []Owner{laura, marc},
			currentUserID: 1,
			want:          marc,
			wantOK:        true,
		},
		{
			name:          "two participants, current is second",
			participants:  []Owner{laura, marc},
			currentUserID: 2,
			want:          laura,
			wantOK:        true,
		},
		{
			name:          "current user not a participant: both match, ambiguous",
			participants:  []Owner{laura, marc},
			currentUserID: 99,
			wantOK:        false,
		},
		{
			name:          "only the current user present",
			participants:  []Owner{laura},
			currentUserID: 1,
			wantOK:        false,
		},
		{
			name:          "no participants",
			participants:  nil,
			currentUserID: 1,
			wantOK:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Conversation{ThreadID: "hilo-1-2", Participants: tt.participants}
			got, ok := c.OtherParticipant(tt.currentUserID)
			if ok != tt.wantOK {
				t.Fatalf("OtherParticipant() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("OtherParticipant() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
