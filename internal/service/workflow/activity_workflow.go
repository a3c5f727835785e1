package workflow

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/qs-lzh/movie-favorites/internal/mq"
)

// ActivityWorkflow consumes the activity queue and writes each event to the log.
type ActivityWorkflow struct {
	mqConn *amqp.Connection
	logger *zap.Logger
}

func NewActivityWorkflow(mqConn *amqp.Connection, logger *zap.Logger) *ActivityWorkflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityWorkflow{
		mqConn: mqConn,
		logger: logger,
	}
}

// Start begins consuming in the background until ctx is done or the broker
// closes the delivery channel.
func (w *ActivityWorkflow) Start(ctx context.Context) error {
	ch, err := mq.NewChannel(w.mqConn)
	if err != nil {
		return err
	}
	if err := ch.Qos(50, 0, false); err != nil {
		ch.Close()
		return err
	}

	msgs, err := ch.Consume(mq.ActivityQueue, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return err
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					w.logger.Warn("activity deliveries closed")
					return
				}
				w.handleDelivery(msg)
			}
		}
	}()

	return nil
}

func (w *ActivityWorkflow) handleDelivery(msg amqp.Delivery) {
	if err := w.handleActivity(msg.Body); err != nil {
		w.logger.Error("failed to handle activity message", zap.Error(err))
		// malformed messages would fail again; drop them
		msg.Nack(false, false)
		return
	}
	msg.Ack(false)
}

func (w *ActivityWorkflow) handleActivity(body []byte) error {
	msg, err := mq.DecodeActivityMessage(body)
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("kind", string(msg.Kind)),
		zap.Uint("user_id", msg.UserID),
		zap.Time("occurred_at", msg.OccurredAt),
	}
	switch msg.Kind {
	case mq.KindFavoriteAdded, mq.KindFavoriteRemoved:
		fields = append(fields,
			zap.Uint("movie_id", msg.MovieID),
			zap.Uint("favorite_id", msg.FavoriteID),
		)
	case mq.KindUserDeleted:
		fields = append(fields, zap.Int("removed_favorites", msg.RemovedFavorites))
	}
	w.logger.Info("activity", fields...)
	return nil
}
