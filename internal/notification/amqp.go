package notification

import (
	"context"
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPNotifier publishes notices as JSON messages on a topic exchange; a
// downstream mailer consumes them and renders the actual emails.
type AMQPNotifier struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	log      *zap.Logger
}

// NewAMQPNotifier connects to the broker and declares the exchange.
func NewAMQPNotifier(url, exchange string, log *zap.Logger) (*AMQPNotifier, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	return &AMQPNotifier{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		log:      log.Named("notification.amqp"),
	}, nil
}

// Dispatch serializes the notice and publishes it with its type as routing key.
func (n *AMQPNotifier) Dispatch(ctx context.Context, notice Notice) error {
	if n == nil {
		return nil
	}
	body, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	return n.channel.PublishWithContext(ctx, n.exchange, notice.Type, false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// Close terminates the broker connection.
func (n *AMQPNotifier) Close() error {
	if n == nil {
		return nil
	}
	if err := n.channel.Close(); err != nil {
		n.log.Warn("close channel", zap.Error(err))
	}
	return n.conn.Close()
}
