package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
	bookSlot "github.com/m04kA/SMC-TestDriveService/internal/usecase/book_slot"
	getDisabledSlots "github.com/m04kA/SMC-TestDriveService/internal/usecase/get_disabled_slots"
	"github.com/m04kA/SMC-TestDriveService/pkg/metrics"
	"github.com/m04kA/SMC-TestDriveService/pkg/types"
)

const maxFrameSize = 64 << 10

const (
	msgInvalidFrame  = "некорректный кадр запроса"
	msgUnknownMethod = "неизвестный метод"
	msgInvalidParams = "некорректные параметры"
	msgAmbiguousDate = "дата должна содержать часовой пояс (RFC 3339, например 2025-01-10T09:00:00Z)"
	msgInvalidDate   = "некорректный формат даты"
	msgInvalidRange  = "некорректный диапазон дат"
	msgInternal      = "внутренняя ошибка, попробуйте позже"
	msgBookingFailed = "не удалось забронировать тест-драйв"
)

// Options параметры websocket-соединений
type Options struct {
	SendBuffer     int
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string // пусто или "*" разрешает любой Origin
}

// Server обработчик GET /ws/test-drives
type Server struct {
	hub      *Hub
	slots    SlotService
	bookSlot BookSlotUseCase
	disabled GetDisabledSlotsUseCase

	opts     Options
	upgrader websocket.Upgrader
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   Logger
}

func NewServer(
	hub *Hub,
	slots SlotService,
	bookSlot BookSlotUseCase,
	disabled GetDisabledSlotsUseCase,
	opts Options,
	m *metrics.Metrics,
	logger Logger,
) *Server {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}

	s := &Server{
		hub:      hub,
		slots:    slots,
		bookSlot: bookSlot,
		disabled: disabled,
		opts:     opts,
		validate: validator.New(),
		metrics:  m,
		logger:   logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handle GET /ws/test-drives
func (s *Server) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		s.logger.Warn("GET /ws/test-drives - Upgrade failed: %v", err)
		return
	}

	c := newClient(uuid.NewString(), conn, s.opts.SendBuffer)
	s.hub.register(c)
	s.metrics.ConnectionOpened()
	s.logger.Info("Realtime: conn=%s opened from %s", c.id, r.RemoteAddr)

	go c.writePump(s.opts.PingInterval, s.opts.WriteTimeout)

	s.serve(c)
}

// serve читает и обрабатывает кадры соединения строго по очереди
func (s *Server) serve(c *client) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		s.slots.Disconnect(context.Background(), c.id)
		s.hub.unregister(c.id)
		c.close()
		s.metrics.ConnectionClosed()
		s.logger.Info("Realtime: conn=%s closed", c.id)
	}()

	pongWait := 2 * s.opts.PingInterval
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("Realtime: conn=%s read failed: %v", c.id, err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		reply, err := json.Marshal(s.dispatch(ctx, c.id, data))
		if err != nil {
			s.logger.Error("Realtime: conn=%s failed to encode reply: %v", c.id, err)
			continue
		}
		c.sendReply(reply)
	}
}

func (s *Server) dispatch(ctx context.Context, connID string, data []byte) replyFrame {
	var req requestFrame
	if err := json.Unmarshal(data, &req); err != nil || req.Method == "" {
		return replyFrame{ID: req.ID, Error: msgInvalidFrame}
	}

	s.logger.Debug("Realtime: conn=%s -> %s %s", connID, req.Method, req.Params)

	result, errMsg := s.call(ctx, connID, req.Method, req.Params)
	if errMsg != "" {
		s.logger.Warn("Realtime: conn=%s %s failed: %s", connID, req.Method, errMsg)
		return replyFrame{ID: req.ID, Error: errMsg}
	}
	return replyFrame{ID: req.ID, Result: result}
}

func (s *Server) call(ctx context.Context, connID, method string, raw json.RawMessage) (any, string) {
	switch method {
	case MethodJoinGroup, MethodLeaveGroup:
		var p groupParams
		if msg := s.decode(raw, &p); msg != "" {
			return nil, msg
		}
		if method == MethodJoinGroup {
			s.slots.JoinGroup(p.DealerID, p.ProductID, connID)
		} else {
			s.slots.LeaveGroup(p.DealerID, p.ProductID, connID)
		}
		return true, ""

	case MethodHoldSlot, MethodReleaseSlot:
		var p slotParams
		if msg := s.decode(raw, &p); msg != "" {
			return nil, msg
		}
		at, err := types.ParseInstant(p.ScheduledDate)
		if err != nil {
			return nil, dateMessage(err)
		}
		key := domain.NewSlotKey(p.DealerID, p.ProductID, at)
		if method == MethodHoldSlot {
			return s.slots.HoldSlot(ctx, key, connID), ""
		}
		return s.slots.ReleaseSlot(ctx, key, connID), ""

	case MethodBookSlot:
		var p bookParams
		if msg := s.decode(raw, &p); msg != "" {
			return nil, msg
		}
		at, err := types.ParseInstant(p.ScheduledDate)
		if err != nil {
			return bookResult{Success: false, Error: dateMessage(err)}, ""
		}
		return s.book(ctx, connID, &p, at), ""

	case MethodGetDisabledSlots:
		var p rangeParams
		if msg := s.decode(raw, &p); msg != "" {
			return nil, msg
		}
		return s.disabledSlots(ctx, &p)

	default:
		return nil, msgUnknownMethod
	}
}

func (s *Server) book(ctx context.Context, connID string, p *bookParams, at time.Time) bookResult {
	resp, err := s.bookSlot.Execute(ctx, &bookSlot.Request{
		RequesterID:   connID,
		CustomerName:  p.CustomerName,
		CustomerPhone: p.CustomerPhone,
		CustomerEmail: p.CustomerEmail,
		Notes:         p.Notes,
		ProductID:     p.ProductID,
		DealerID:      p.DealerID,
		ScheduledDate: at,
	})
	if resp == nil {
		s.logger.Error("Realtime: conn=%s BookSlot returned no result: %v", connID, err)
		return bookResult{Success: false, Error: msgBookingFailed}
	}
	if !resp.Success {
		return bookResult{Success: false, Error: resp.Error}
	}
	return bookResult{
		Success:       true,
		TestDriveID:   resp.TestDriveID,
		ScheduledDate: types.FormatInstant(resp.ScheduledDate),
	}
}

func (s *Server) disabledSlots(ctx context.Context, p *rangeParams) (any, string) {
	from, errFrom := types.ParseRangeBound(p.From)
	to, errTo := types.ParseRangeBound(p.To)
	if err := errors.Join(errFrom, errTo); err != nil {
		return nil, dateMessage(err)
	}

	resp, err := s.disabled.Execute(ctx, &getDisabledSlots.Request{
		DealerID:  p.DealerID,
		ProductID: p.ProductID,
		From:      from,
		To:        to,
	})
	if err != nil {
		if errors.Is(err, getDisabledSlots.ErrInvalidInput) {
			return nil, msgInvalidRange
		}
		return nil, msgInternal
	}

	slots := make([]string, 0, len(resp.Slots))
	for _, at := range resp.Slots {
		slots = append(slots, types.FormatInstant(at))
	}
	return slots, ""
}

func (s *Server) decode(raw json.RawMessage, dst any) string {
	if len(raw) == 0 {
		return msgInvalidParams
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return msgInvalidParams
	}
	if err := s.validate.Struct(dst); err != nil {
		return msgInvalidParams
	}
	return ""
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(s.opts.AllowedOrigins, "*") || slices.Contains(s.opts.AllowedOrigins, origin)
}

func dateMessage(err error) string {
	if errors.Is(err, types.ErrAmbiguousTimestamp) {
		return msgAmbiguousDate
	}
	return msgInvalidDate
}
