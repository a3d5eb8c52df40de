package stub

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/renaix/chat-client/internal/api"
	"github.com/renaix/chat-client/internal/events"
	"github.com/renaix/chat-client/internal/logger"
)

// Server is an in-memory stand-in for the Renaix messaging API, used in
// development and tests. It speaks the exact wire contract: the same
// envelope, the same snake_case keys, the same Spanish error strings.
// Settlement is faked: accepting an offer fabricates a purchase record.

type Options struct {
	Logger *zap.SugaredLogger
	Events *events.Producer
	Seed   bool
}

type product struct {
	name     string
	price    float64
	sellerID int
}

type offerData struct {
	productID     int
	productName   string
	originalPrice float64
	offeredPrice  float64
}

const (
	offerPending   = "pending"
	offerAccepted  = "accepted"
	offerRejected  = "rejected"
	offerCountered = "countered"
)

type message struct {
	id          int
	text        string
	senderID    int
	recipientID int
	read        bool
	sentAt      time.Time
	threadID    string
	msgType     string
	productID   int
	offer       *offerData
	offerStatus string
}

type Server struct {
	app    *fiber.App
	log    *zap.SugaredLogger
	events *events.Producer

	mu             sync.Mutex
	nextMsgID      int
	nextPurchaseID int
	users          map[int]api.OwnerDTO
	products       map[int]product
	messages       []*message
}

func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		log:            log,
		events:         opts.Events,
		nextMsgID:      100,
		nextPurchaseID: 500,
		users:          map[int]api.OwnerDTO{},
		products:       map[int]product{},
	}
	if opts.Seed {
		s.seed()
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	v1 := app.Group("/api/v1", s.authMiddleware)

	v1.Get("/mensajes/conversaciones", s.listConversations)
	v1.Get("/mensajes/conversacion/:user_id", s.getThread)
	v1.Get("/mensajes/no-leidos", s.unread)
	v1.Post("/mensajes", s.sendMessage)
	v1.Put("/mensajes/:id/marcar-leido", s.markRead)
	v1.Post("/ofertas", s.sendOffer)
	v1.Post("/ofertas/:id/aceptar", s.acceptOffer)
	v1.Post("/ofertas/:id/rechazar", s.rejectOffer)
	v1.Post("/ofertas/:id/contraoferta", s.counterOffer)

	s.app = app
	return s
}

// App exposes the fiber app for Listen and for tests via app.Test.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) seed() {
	s.users[1] = api.OwnerDTO{ID: 1, Name: "Laura"}
	s.users[2] = api.OwnerDTO{ID: 2, Name: "Marc"}
	s.users[3] = api.OwnerDTO{ID: 3, Name: "Paula"}
	s.products[7] = product{name: "Silla vintage", price: 50.0, sellerID: 2}
	s.products[12] = product{name: "Lámpara de pie", price: 30.0, sellerID: 3}

	s.append(&message{
		text: "Hola, ¿sigue disponible la silla?", senderID: 1, recipientID: 2,
		productID: 7, msgType: "text",
	})
	s.append(&message{
		text: "Sí, disponible", senderID: 2, recipientID: 1,
		productID: 7, msgType: "text",
	})
}

// append assigns id, thread and timestamp. Caller holds no lock; append takes it.
func (s *Server) append(m *message) *message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(m)
}

func (s *Server) appendLocked(m *message) *message {
	m.id = s.nextMsgID
	s.nextMsgID++
	m.sentAt = time.Now().UTC()
	m.threadID = threadID(m.senderID, m.recipientID, m.productID)
	s.messages = append(s.messages, m)
	return m
}

func threadID(a, b, productID int) string {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if productID != 0 {
		return fmt.Sprintf("hilo-%d-%d-p%d", lo, hi, productID)
	}
	return fmt.Sprintf("hilo-%d-%d", lo, hi)
}

// ---- envelope helpers (mirror the ERP response helpers) ----

func success(c *fiber.Ctx, status int, msg string, data any) error {
	body := fiber.Map{"success": true, "message": msg}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

func failure(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg, "code": status})
}

// ---- auth ----

// authMiddleware resolves the caller from the bearer token's sub claim.
// Dev semantics: the token is decoded, not verified.
func (s *Server) authMiddleware(c *fiber.Ctx) error {
	h := c.Get("Authorization")
	const pref = "Bearer "
	if len(h) <= len(pref) || h[:len(pref)] != pref {
		return failure(c, fiber.StatusUnauthorized, "No autorizado")
	}
	token, _, err := new(jwt.Parser).ParseUnverified(h[len(pref):], jwt.MapClaims{})
	if err != nil {
		return failure(c, fiber.StatusUnauthorized, "No autorizado")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return failure(c, fiber.StatusUnauthorized, "No autorizado")
	}
	sub, _ := claims.GetSubject()
	uid, err := strconv.Atoi(sub)
	if err != nil {
		return failure(c, fiber.StatusUnauthorized, "No autorizado")
	}
	c.Locals("user_id", uid)
	return c.Next()
}

func currentUser(c *fiber.Ctx) int {
	uid, _ := c.Locals("user_id").(int)
	return uid
}

// ---- serialization ----

func (s *Server) owner(id int) api.OwnerDTO {
	if o, ok := s.users[id]; ok {
		return o
	}
	return api.OwnerDTO{ID: id, Name: fmt.Sprintf("Usuario %d", id)}
}

func (s *Server) toDTO(m *message) api.MessageDTO {
	fecha := m.sentAt.Format(time.RFC3339)
	tid := m.threadID
	mt := m.msgType
	d := api.MessageDTO{
		ID:          m.id,
		Text:        m.text,
		Sender:      s.owner(m.senderID),
		Recipient:   s.owner(m.recipientID),
		Read:        m.read,
		SentAt:      &fecha,
		ThreadID:    &tid,
		MessageType: &mt,
	}
	if m.offer != nil {
		pid := m.offer.productID
		name := m.offer.productName
		orig := m.offer.originalPrice
		off := m.offer.offeredPrice
		d.OfferData = &api.OfferDataDTO{
			ProductID:     &pid,
			ProductName:   &name,
			OriginalPrice: &orig,
			OfferedPrice:  &off,
		}
	}
	return d
}

// ---- handlers ----

func (s *Server) listConversations(c *fiber.Ctx) error {
	uid := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	byThread := map[string][]*message{}
	var order []string
	for _, m := range s.messages {
		if m.senderID != uid && m.recipientID != uid {
			continue
		}
		if _, seen := byThread[m.threadID]; !seen {
			order = append(order, m.threadID)
		}
		byThread[m.threadID] = append(byThread[m.threadID], m)
	}

	out := make([]api.ConversationDTO, 0, len(order))
	for _, tid := range order {
		msgs := byThread[tid]
		last := msgs[len(msgs)-1]
		fecha := last.sentAt.Format(time.RFC3339)
		unread := 0
		for _, m := range msgs {
			if m.recipientID == uid && !m.read {
				unread++
			}
		}
		out = append(out, api.ConversationDTO{
			ThreadID:     tid,
			Participants: []api.OwnerDTO{s.owner(msgs[0].senderID), s.owner(msgs[0].recipientID)},
			LastMessage:  &api.LastMessageDTO{Text: last.text, SentAt: &fecha},
			Messages:     []api.MessageDTO{},
			Total:        len(msgs),
			Unread:       unread,
		})
	}
	return success(c, fiber.StatusOK, "Conversaciones recuperadas", out)
}

func (s *Server) getThread(c *fiber.Ctx) error {
	uid := currentUser(c)
	other, err := strconv.Atoi(c.Params("user_id"))
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "Usuario inválido")
	}
	productID := c.QueryInt("producto_id", 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.MessageDTO{}
	for _, m := range s.messages {
		between := (m.senderID == uid && m.recipientID == other) || (m.senderID == other && m.recipientID == uid)
		if !between {
			continue
		}
		if productID != 0 && m.productID != productID {
			continue
		}
		out = append(out, s.toDTO(m))
	}
	return success(c, fiber.StatusOK, "Conversación recuperada", out)
}

func (s *Server) unread(c *fiber.Ctx) error {
	uid := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := []api.MessageDTO{}
	for _, m := range s.messages {
		if m.recipientID == uid && !m.read {
			msgs = append(msgs, s.toDTO(m))
		}
	}
	return success(c, fiber.StatusOK, "Mensajes recuperados", api.UnreadMessagesDTO{Total: len(msgs), Messages: msgs})
}

func (s *Server) sendMessage(c *fiber.Ctx) error {
	uid := currentUser(c)
	var req api.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "JSON inválido")
	}
	if req.Text == "" || req.RecipientID == 0 {
		return failure(c, fiber.StatusBadRequest, "Faltan campos obligatorios")
	}
	pid := 0
	if req.ProductID != nil {
		pid = *req.ProductID
	}
	m := s.append(&message{
		text: req.Text, senderID: uid, recipientID: req.RecipientID,
		productID: pid, msgType: "text",
	})
	s.publish(c.Context(), events.EventMessageSent, m)
	return success(c, fiber.StatusCreated, "Mensaje enviado", s.toDTO(m))
}

func (s *Server) markRead(c *fiber.Ctx) error {
	uid := currentUser(c)
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "Mensaje inválido")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.findLocked(id)
	if m == nil {
		return failure(c, fiber.StatusNotFound, "Mensaje no encontrado")
	}
	if m.recipientID != uid {
		return failure(c, fiber.StatusForbidden, "No tienes permiso")
	}
	m.read = true
	return success(c, fiber.StatusOK, "Mensaje marcado como leído", nil)
}

func (s *Server) sendOffer(c *fiber.Ctx) error {
	uid := currentUser(c)
	var req api.SendOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "JSON inválido")
	}
	if req.OfferedPrice < 0 {
		return failure(c, fiber.StatusBadRequest, "Precio inválido")
	}
	s.mu.Lock()
	p, ok := s.products[req.ProductID]
	s.mu.Unlock()
	if !ok {
		return failure(c, fiber.StatusNotFound, "Producto no encontrado")
	}
	m := s.append(&message{
		text:        fmt.Sprintf("Oferta de %.2f € por %s", req.OfferedPrice, p.name),
		senderID:    uid,
		recipientID: p.sellerID,
		productID:   req.ProductID,
		msgType:     "offer",
		offer: &offerData{
			productID:     req.ProductID,
			productName:   p.name,
			originalPrice: p.price,
			offeredPrice:  req.OfferedPrice,
		},
		offerStatus: offerPending,
	})
	s.publish(c.Context(), events.EventOfferSent, m)
	return success(c, fiber.StatusCreated, "Oferta enviada", s.toDTO(m))
}

func (s *Server) acceptOffer(c *fiber.Ctx) error {
	uid := currentUser(c)
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "Oferta inválida")
	}

	s.mu.Lock()
	o := s.findLocked(id)
	if o == nil || o.offer == nil {
		s.mu.Unlock()
		return failure(c, fiber.StatusNotFound, "Oferta no encontrada")
	}
	if o.recipientID != uid {
		s.mu.Unlock()
		return failure(c, fiber.StatusForbidden, "No tienes permiso")
	}
	if o.offerStatus != offerPending {
		s.mu.Unlock()
		return failure(c, fiber.StatusBadRequest, "Oferta ya procesada")
	}
	o.offerStatus = offerAccepted
	m := s.appendLocked(&message{
		text:        fmt.Sprintf("Oferta aceptada: %.2f €", o.offer.offeredPrice),
		senderID:    uid,
		recipientID: o.senderID,
		productID:   o.productID,
		msgType:     "offer_accepted",
		offer:       o.offer,
	})
	purchaseID := s.nextPurchaseID
	s.nextPurchaseID++
	fecha := m.sentAt.Format(time.RFC3339)
	estado := "pendiente_envio"
	purchase := api.PurchaseDTO{
		ID:          purchaseID,
		ProductID:   o.offer.productID,
		ProductName: o.offer.productName,
		Price:       o.offer.offeredPrice,
		Date:        &fecha,
		Status:      &estado,
	}
	s.mu.Unlock()

	s.publish(c.Context(), events.EventOfferAccepted, m)
	return success(c, fiber.StatusCreated, "Oferta aceptada", api.AcceptOfferDTO{Message: s.toDTO(m), Purchase: purchase})
}

func (s *Server) rejectOffer(c *fiber.Ctx) error {
	uid := currentUser(c)
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "Oferta inválida")
	}

	s.mu.Lock()
	o := s.findLocked(id)
	if o == nil || o.offer == nil {
		s.mu.Unlock()
		return failure(c, fiber.StatusNotFound, "Oferta no encontrada")
	}
	if o.recipientID != uid {
		s.mu.Unlock()
		return failure(c, fiber.StatusForbidden, "No tienes permiso")
	}
	if o.offerStatus != offerPending {
		s.mu.Unlock()
		return failure(c, fiber.StatusBadRequest, "Oferta ya procesada")
	}
	o.offerStatus = offerRejected
	m := s.appendLocked(&message{
		text:        fmt.Sprintf("Oferta rechazada: %.2f €", o.offer.offeredPrice),
		senderID:    uid,
		recipientID: o.senderID,
		productID:   o.productID,
		msgType:     "offer_rejected",
		offer:       o.offer,
	})
	s.mu.Unlock()

	s.publish(c.Context(), events.EventOfferRejected, m)
	return success(c, fiber.StatusOK, "Oferta rechazada", s.toDTO(m))
}

func (s *Server) counterOffer(c *fiber.Ctx) error {
	uid := currentUser(c)
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return failure(c, fiber.StatusBadRequest, "Oferta inválida")
	}
	var req api.SendCounterOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "JSON inválido")
	}
	if req.CounterPrice < 0 {
		return failure(c, fiber.StatusBadRequest, "Precio inválido")
	}

	s.mu.Lock()
	o := s.findLocked(id)
	if o == nil || o.offer == nil {
		s.mu.Unlock()
		return failure(c, fiber.StatusNotFound, "Oferta no encontrada")
	}
	if o.recipientID != uid {
		s.mu.Unlock()
		return failure(c, fiber.StatusForbidden, "No tienes permiso")
	}
	if o.offerStatus != offerPending {
		s.mu.Unlock()
		return failure(c, fiber.StatusBadRequest, "Oferta ya procesada")
	}
	o.offerStatus = offerCountered
	m := s.appendLocked(&message{
		text:        fmt.Sprintf("Contraoferta de %.2f € por %s", req.CounterPrice, o.offer.productName),
		senderID:    uid,
		recipientID: o.senderID,
		productID:   o.productID,
		msgType:     "counter_offer",
		offer: &offerData{
			productID:     o.offer.productID,
			productName:   o.offer.productName,
			originalPrice: o.offer.originalPrice,
			offeredPrice:  req.CounterPrice,
		},
		offerStatus: offerPending,
	})
	s.mu.Unlock()

	s.publish(c.Context(), events.EventOfferCountered, m)
	return success(c, fiber.StatusCreated, "Contraoferta enviada", s.toDTO(m))
}

func (s *Server) findLocked(id int) *message {
	for _, m := range s.messages {
		if m.id == id {
			return m
		}
	}
	return nil
}

func (s *Server) publish(ctx context.Context, evType string, m *message) {
	ev := events.NegotiationEvent{
		Type:      evType,
		MessageID: m.id,
		ThreadID:  m.threadID,
		ProductID: m.productID,
	}
	if m.offer != nil {
		ev.Price = m.offer.offeredPrice
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warnw("event publish failed", "type", evType, "err", err)
	}
}
