package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/splitpay/internal/domain/models"
	client "github.com/mamadbah2/splitpay/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// ErrEmptyMessage is returned for outbound requests without a recipient or body.
var ErrEmptyMessage = errors.New("recipient and message must not be empty")

// MessagingService pushes text notifications.
type MessagingService interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	client client.Client
	logger *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(c client.Client, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaWhatsAppService{client: c, logger: logger}
}

// SendOutbound delivers req within a bounded time.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	if req.To == "" || req.Message == "" {
		return ErrEmptyMessage
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         req.To,
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
	if err != nil {
		return fmt.Errorf("send outbound to %s: %w", req.To, err)
	}

	messageID := ""
	if len(resp.Messages) > 0 {
		messageID = resp.Messages[0].ID
	}
	s.logger.Info("outbound message sent", zap.String("to", req.To), zap.String("message_id", messageID))
	return nil
}

// LogOnlyService logs messages instead of sending them. Used when WhatsApp is not configured.
type LogOnlyService struct {
	logger *zap.Logger
}

// NewLogOnlyService builds a LogOnlyService.
func NewLogOnlyService(logger *zap.Logger) *LogOnlyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogOnlyService{logger: logger}
}

// SendOutbound logs req.
func (s *LogOnlyService) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	s.logger.Info("outbound message (not sent)", zap.String("to", req.To), zap.String("message", req.Message))
	return nil
}
