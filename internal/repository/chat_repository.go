package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/renaix/chat-client/internal/api"
	"github.com/renaix/chat-client/internal/logger"
	"github.com/renaix/chat-client/internal/models"
)

// Per-operation failure messages, used when the server reports an error
// without a message of its own. Already localized: the UI shows them verbatim.
const (
	fallbackConversations = "Error al obtener conversaciones"
	fallbackThread        = "Error al obtener conversación"
	fallbackUnread        = "Error al obtener mensajes"
	fallbackSendMessage   = "Error al enviar mensaje"
	fallbackMarkRead      = "Error al marcar mensaje"
	fallbackSendOffer     = "Error al enviar oferta"
	fallbackAcceptOffer   = "Error al aceptar oferta"
	fallbackRejectOffer   = "Error al rechazar oferta"
	fallbackCounterOffer  = "Error al enviar contraoferta"
)

// ChatRepository is the negotiation operation set. Every method performs
// exactly one remote call and returns either the mapped domain value or
// an *api.Error with a non-empty, presentation-ready message. Legal
// offer-state transitions are the server's business: concurrent or
// out-of-order calls surface as failure results, never as panics.
type ChatRepository interface {
	Conversations(ctx context.Context) ([]models.Conversation, error)
	Thread(ctx context.Context, userID int, productID *int) ([]models.Message, error)
	Unread(ctx context.Context) (models.UnreadMessages, error)
	UnreadCount(ctx context.Context) (int, error)
	SendMessage(ctx context.Context, recipientID int, text string, productID *int) (models.Message, error)
	MarkRead(ctx context.Context, messageID int) error
	SendOffer(ctx context.Context, productID int, offeredPrice float64) (models.Message, error)
	AcceptOffer(ctx context.Context, messageID int) (models.AcceptedOffer, error)
	RejectOffer(ctx context.Context, messageID int) (models.Message, error)
	SendCounterOffer(ctx context.Context, offerID int, newPrice float64) (models.Message, error)
}

// Repository implements ChatRepository against the remote API.
type Repository struct {
	client *api.Client
	log    *zap.SugaredLogger
}

var _ ChatRepository = (*Repository)(nil)

func New(client *api.Client, log *zap.SugaredLogger) *Repository {
	if log == nil {
		log = logger.Nop()
	}
	return &Repository{client: client, log: log}
}

func (r *Repository) Conversations(ctx context.Context) ([]models.Conversation, error) {
	data, err := api.Call[[]api.ConversationDTO](ctx, r.client, "GET", "/mensajes/conversaciones", nil, nil, fallbackConversations)
	if err != nil {
		return nil, err
	}
	out := make([]models.Conversation, 0, len(*data))
	for _, d := range *data {
		out = append(out, r.toConversation(d))
	}
	return out, nil
}

func (r *Repository) Thread(ctx context.Context, userID int, productID *int) ([]models.Message, error) {
	var q url.Values
	if productID != nil {
		q = url.Values{"producto_id": []string{strconv.Itoa(*productID)}}
	}
	path := fmt.Sprintf("/mensajes/conversacion/%d", userID)
	data, err := api.Call[[]api.MessageDTO](ctx, r.client, "GET", path, q, nil, fallbackThread)
	if err != nil {
		return nil, err
	}
	out := make([]models.Message, 0, len(*data))
	for _, d := range *data {
		out = append(out, r.toMessage(d))
	}
	return out, nil
}

func (r *Repository) Unread(ctx context.Context) (models.UnreadMessages, error) {
	data, err := api.Call[api.UnreadMessagesDTO](ctx, r.client, "GET", "/mensajes/no-leidos", nil, nil, fallbackUnread)
	if err != nil {
		return models.UnreadMessages{}, err
	}
	msgs := make([]models.Message, 0, len(data.Messages))
	for _, d := range data.Messages {
		msgs = append(msgs, r.toMessage(d))
	}
	return models.UnreadMessages{Total: data.Total, Messages: msgs}, nil
}

func (r *Repository) UnreadCount(ctx context.Context) (int, error) {
	u, err := r.Unread(ctx)
	if err != nil {
		return 0, err
	}
	return u.Total, nil
}

func (r *Repository) SendMessage(ctx context.Context, recipientID int, text string, productID *int) (models.Message, error) {
	body := api.SendMessageRequest{RecipientID: recipientID, Text: text, ProductID: productID}
	data, err := api.Call[api.MessageDTO](ctx, r.client, "POST", "/mensajes", nil, body, fallbackSendMessage)
	if err != nil {
		return models.Message{}, err
	}
	return r.toMessage(*data), nil
}

func (r *Repository) MarkRead(ctx context.Context, messageID int) error {
	path := fmt.Sprintf("/mensajes/%d/marcar-leido", messageID)
	return api.CallEmpty(ctx, r.client, "PUT", path, nil, nil, fallbackMarkRead)
}

func (r *Repository) SendOffer(ctx context.Context, productID int, offeredPrice float64) (models.Message, error) {
	body := api.SendOfferRequest{ProductID: productID, OfferedPrice: offeredPrice}
	data, err := api.Call[api.MessageDTO](ctx, r.client, "POST", "/ofertas", nil, body, fallbackSendOffer)
	if err != nil {
		return models.Message{}, err
	}
	return r.toMessage(*data), nil
}

func (r *Repository) AcceptOffer(ctx context.Context, messageID int) (models.AcceptedOffer, error) {
	path := fmt.Sprintf("/ofertas/%d/aceptar", messageID)
	data, err := api.Call[api.AcceptOfferDTO](ctx, r.client, "POST", path, nil, nil, fallbackAcceptOffer)
	if err != nil {
		return models.AcceptedOffer{}, err
	}
	return models.AcceptedOffer{
		Message:  r.toMessage(data.Message),
		Purchase: toPurchase(data.Purchase),
	}, nil
}

func (r *Repository) RejectOffer(ctx context.Context, messageID int) (models.Message, error) {
	path := fmt.Sprintf("/ofertas/%d/rechazar", messageID)
	data, err := api.Call[api.MessageDTO](ctx, r.client, "POST", path, nil, nil, fallbackRejectOffer)
	if err != nil {
		return models.Message{}, err
	}
	return r.toMessage(*data), nil
}

func (r *Repository) SendCounterOffer(ctx context.Context, offerID int, newPrice float64) (models.Message, error) {
	path := fmt.Sprintf("/ofertas/%d/contraoferta", offerID)
	body := api.SendCounterOfferRequest{OfferID: offerID, CounterPrice: newPrice}
	data, err := api.Call[api.MessageDTO](ctx, r.client, "POST", path, nil, body, fallbackCounterOffer)
	if err != nil {
		return models.Message{}, err
	}
	return r.toMessage(*data), nil
}
