package messaging

import (
	"context"
	"encoding/json"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
	amqp "github.com/rabbitmq/amqp091-go"
)

var _ ports.AppointmentEventPublisher = (*RabbitMQBroker)(nil)

func (rmq *RabbitMQBroker) PublishAppointmentBooked(ctx context.Context, evt ports.AppointmentBooked) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err = rmq.cb.Execute(func() (interface{}, error) {
		return nil, rmq.ch.PublishWithContext(
			ctx,
			"",            // default exchange
			rmq.queueName, // routing key == queue name
			false,         // mandatory
			false,         // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Type:         ports.AppointmentBookedEvent,
				MessageId:    evt.AppointmentID,
				Body:         body,
			},
		)
	})
	return err
}
