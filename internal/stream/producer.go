// Package stream publishes registration activity to Kafka for
// downstream consumers. Publishing is best-effort: the bot never
// blocks or fails a user interaction on a broker error.
package stream

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"eventbot/internal/config"
	"eventbot/internal/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Record is the JSON payload written to every topic.
type Record struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	EventID   int64     `json:"event_id"`
	EventName string    `json:"event_name,omitempty"`
	UserID    int64     `json:"user_id,omitempty"`
	Seats     int       `json:"seats,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Producer struct {
	Writer *kafka.Writer
	Topics config.TopicConfig
}

func NewProducer(brokers []string, topics config.TopicConfig) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
	})
	return &Producer{Writer: writer, Topics: topics}
}

func (p *Producer) publish(topic string, rec Record) error {
	rec.ID = uuid.New().String()
	rec.Timestamp = time.Now().UTC()

	value, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(strconv.FormatInt(rec.EventID, 10)),
			Value: value,
		},
	)
}

func (p *Producer) RegistrationCreated(reg models.Registration, eventName string) error {
	return p.publish(p.Topics.RegistrationCreated, Record{
		Type:      "registration.created",
		EventID:   reg.EventID,
		EventName: eventName,
		UserID:    reg.UserID,
		Seats:     reg.Seats,
	})
}

func (p *Producer) RegistrationCancelled(reg models.Registration, eventName string) error {
	return p.publish(p.Topics.RegistrationCancelled, Record{
		Type:      "registration.cancelled",
		EventID:   reg.EventID,
		EventName: eventName,
		UserID:    reg.UserID,
		Seats:     reg.Seats,
	})
}

func (p *Producer) EventCreated(ev models.Event) error {
	return p.publish(p.Topics.EventCreated, Record{
		Type:      "event.created",
		EventID:   ev.ID,
		EventName: ev.Name,
	})
}

func (p *Producer) EventDeleted(eventID int64, name string) error {
	return p.publish(p.Topics.EventDeleted, Record{
		Type:      "event.deleted",
		EventID:   eventID,
		EventName: name,
	})
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
