package service

import (
	"context"

	"github.com/google/uuid"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/logger"
)

// JSONPublisher is the slice of the message broker client the payment processor needs.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) (string, error)
}

// SettlementRequest is the message body published for the payment gateway.
type SettlementRequest struct {
	BookingID string `json:"booking_id"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

type logPaymentProcessor struct{}

// NewLogPaymentProcessor settles immediately and only records the settlement in the log.
// It stands in for a gateway in local runs.
func NewLogPaymentProcessor() PaymentProcessor {
	return logPaymentProcessor{}
}

func (logPaymentProcessor) ChargeOrSettle(ctx context.Context, bookingID string, amount int64) (PaymentResult, error) {
	ref := "local-" + uuid.NewString()
	logger.ExternalServiceCall("payment-log", "ChargeOrSettle", "bookingID", bookingID, "amount", amount)
	logger.ExternalServiceResult("payment-log", "ChargeOrSettle", nil, "reference", ref)
	return PaymentResult{Reference: ref, Status: domain.PaymentStatusPaid}, nil
}

type amqpPaymentProcessor struct {
	publisher  JSONPublisher
	routingKey string
}

// NewAMQPPaymentProcessor publishes settlement requests. The gateway answers later
// through the payment webhook, so the returned status stays pending.
func NewAMQPPaymentProcessor(publisher JSONPublisher, routingKey string) PaymentProcessor {
	if routingKey == "" {
		routingKey = "payment.settle"
	}
	return &amqpPaymentProcessor{publisher: publisher, routingKey: routingKey}
}

func (p *amqpPaymentProcessor) ChargeOrSettle(ctx context.Context, bookingID string, amount int64) (PaymentResult, error) {
	req := SettlementRequest{BookingID: bookingID, Amount: amount, Reference: uuid.NewString()}

	logger.ExternalServiceCall("amqp", "publish", "routingKey", p.routingKey, "bookingID", bookingID)
	_, err := p.publisher.PublishJSON(ctx, p.routingKey, req)
	logger.ExternalServiceResult("amqp", "publish", err, "bookingID", bookingID)
	if err != nil {
		return PaymentResult{}, err
	}
	return PaymentResult{Reference: req.Reference, Status: domain.PaymentStatusPending}, nil
}
