package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/renaix/chat-client/internal/cache"
	"github.com/renaix/chat-client/internal/logger"
	"github.com/renaix/chat-client/internal/models"
)

const (
	keyConversations = "chat:conversations"
	keyUnread        = "chat:unread"
)

// Cache is what Cached needs from a cache backend. *cache.Client
// satisfies it; a miss is (false, nil) from GetJSON.
type Cache interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, keys ...string) error
}

var _ Cache = (*cache.Client)(nil)

// Cached layers a short-lived redis cache over a ChatRepository. Reads
// of the conversation list and unread query go to the cache first; any
// write invalidates both keys. Cache errors degrade to the remote call
// and are only logged, so a dead redis never breaks the chat.
type Cached struct {
	inner ChatRepository
	cache Cache
	log   *zap.SugaredLogger
}

var _ ChatRepository = (*Cached)(nil)

func NewCached(inner ChatRepository, c Cache, log *zap.SugaredLogger) *Cached {
	if log == nil {
		log = logger.Nop()
	}
	return &Cached{inner: inner, cache: c, log: log}
}

func (c *Cached) Conversations(ctx context.Context) ([]models.Conversation, error) {
	var cached []models.Conversation
	hit, err := c.cache.GetJSON(ctx, keyConversations, &cached)
	if err != nil {
		c.log.Warnw("conversation cache read failed", "err", err)
	}
	if hit {
		return cached, nil
	}
	convs, err := c.inner.Conversations(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetJSON(ctx, keyConversations, convs); err != nil {
		c.log.Warnw("conversation cache write failed", "err", err)
	}
	return convs, nil
}

func (c *Cached) Unread(ctx context.Context) (models.UnreadMessages, error) {
	var cached models.UnreadMessages
	hit, err := c.cache.GetJSON(ctx, keyUnread, &cached)
	if err != nil {
		c.log.Warnw("unread cache read failed", "err", err)
	}
	if hit {
		return cached, nil
	}
	u, err := c.inner.Unread(ctx)
	if err != nil {
		return models.UnreadMessages{}, err
	}
	if err := c.cache.SetJSON(ctx, keyUnread, u); err != nil {
		c.log.Warnw("unread cache write failed", "err", err)
	}
	return u, nil
}

func (c *Cached) UnreadCount(ctx context.Context) (int, error) {
	u, err := c.Unread(ctx)
	if err != nil {
		return 0, err
	}
	return u.Total, nil
}

// Thread responses are not cached: the chat screen polls them and stale
// threads are worse than an extra round-trip.
func (c *Cached) Thread(ctx context.Context, userID int, productID *int) ([]models.Message, error) {
	return c.inner.Thread(ctx, userID, productID)
}

func (c *Cached) SendMessage(ctx context.Context, recipientID int, text string, productID *int) (models.Message, error) {
	m, err := c.inner.SendMessage(ctx, recipientID, text, productID)
	if err == nil {
		c.invalidate(ctx)
	}
	return m, err
}

func (c *Cached) MarkRead(ctx context.Context, messageID int) error {
	err := c.inner.MarkRead(ctx, messageID)
	if err == nil {
		c.invalidate(ctx)
	}
	return err
}

func (c *Cached) SendOffer(ctx context.Context, productID int, offeredPrice float64) (models.Message, error) {
	m, err := c.inner.SendOffer(ctx, productID, offeredPrice)
	if err == nil {
		c.invalidate(ctx)
	}
	return m, err
}

func (c *Cached) AcceptOffer(ctx context.Context, messageID int) (models.AcceptedOffer, error) {
	a, err := c.inner.AcceptOffer(ctx, messageID)
	if err == nil {
		c.invalidate(ctx)
	}
	return a, err
}

func (c *Cached) RejectOffer(ctx context.Context, messageID int) (models.Message, error) {
	m, err := c.inner.RejectOffer(ctx, messageID)
	if err == nil {
		c.invalidate(ctx)
	}
	return m, err
}

func (c *Cached) SendCounterOffer(ctx context.Context, offerID int, newPrice float64) (models.Message, error) {
	m, err := c.inner.SendCounterOffer(ctx, offerID, newPrice)
	if err == nil {
		c.invalidate(ctx)
	}
	return m, err
}

func (c *Cached) invalidate(ctx context.Context) {
	if err := c.cache.Delete(ctx, keyConversations, keyUnread); err != nil {
		c.log.Warnw("cache invalidation failed", "err", err)
	}
}
