package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Message is a decoded job together with the delivery it arrived in
type Message struct {
	job      *Job
	delivery amqp.Delivery
}

func newMessage(job *Job, d amqp.Delivery) *Message {
	return &Message{job: job, delivery: d}
}

// Ack removes the delivery from the queue
func (m *Message) Ack() error {
	return m.delivery.Ack(false)
}

// Nack rejects the delivery. Without requeue it is dead-lettered.
func (m *Message) Nack(requeue bool) error {
	return m.delivery.Nack(false, requeue)
}

// GetJob returns the decoded job
func (m *Message) GetJob() *Job {
	return m.job
}

// Redelivered reports whether the broker has delivered this message before
func (m *Message) Redelivered() bool {
	return m.delivery.Redelivered
}

var _ MessageInterface = (*Message)(nil)
