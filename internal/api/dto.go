package api

// Wire shapes of the Renaix messaging API. Field names follow the
// server's snake_case keys exactly; nothing here leaks past the
// repository's mapping layer.

type OwnerDTO struct {
	ID     int    `json:"id"`
	Name   string `json:"nombre"`
	Avatar string `json:"avatar,omitempty"`
}

type OfferDataDTO struct {
	ProductID     *int     `json:"product_id,omitempty"`
	ProductName   *string  `json:"product_name,omitempty"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	OfferedPrice  *float64 `json:"offered_price,omitempty"`
}

type MessageDTO struct {
	ID          int           `json:"id"`
	Text        string        `json:"texto"`
	Sender      OwnerDTO      `json:"emisor"`
	Recipient   OwnerDTO      `json:"receptor"`
	Read        bool          `json:"leido"`
	SentAt      *string       `json:"fecha,omitempty"`
	ThreadID    *string       `json:"hilo_id,omitempty"`
	MessageType *string       `json:"message_type,omitempty"`
	OfferData   *OfferDataDTO `json:"offer_data,omitempty"`
}

type LastMessageDTO struct {
	Text   string  `json:"texto"`
	SentAt *string `json:"fecha,omitempty"`
}

type ConversationDTO struct {
	ThreadID     string          `json:"hilo_id"`
	Participants []OwnerDTO      `json:"participantes"`
	LastMessage  *LastMessageDTO `json:"ultimo_mensaje,omitempty"`
	Messages     []MessageDTO    `json:"mensajes"`
	Total        int             `json:"total_mensajes"`
	Unread       int             `json:"mensajes_no_leidos"`
}

type UnreadMessagesDTO struct {
	Total    int          `json:"total"`
	Messages []MessageDTO `json:"mensajes"`
}

type PurchaseDTO struct {
	ID          int     `json:"id"`
	ProductID   int     `json:"producto_id"`
	ProductName string  `json:"producto_nombre"`
	Price       float64 `json:"precio"`
	Date        *string `json:"fecha,omitempty"`
	Status      *string `json:"estado,omitempty"`
}

type AcceptOfferDTO struct {
	Message  MessageDTO  `json:"mensaje"`
	Purchase PurchaseDTO `json:"compra"`
}

type SendMessageRequest struct {
	RecipientID int    `json:"receptor_id"`
	Text        string `json:"texto"`
	ProductID   *int   `json:"producto_id,omitempty"`
}

type SendOfferRequest struct {
	ProductID    int     `json:"producto_id"`
	OfferedPrice float64 `json:"precio_ofertado"`
}

type SendCounterOfferRequest struct {
	OfferID      int     `json:"oferta_id"`
	CounterPrice float64 `json:"precio_contraoferta"`
}
