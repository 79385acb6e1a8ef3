package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	paho "github.com/eclipse/paho.mqtt.golang"
	nuts "github.com/vaudience/go-nuts"
)

// Sink is where decoded readings go, normally the ingestion pipeline.
type Sink interface {
	Ingest(ctx context.Context, raw models.RawReading) (*models.SensorReading, error)
}

// ReadingSubscriber ingests readings published by field devices on
// <prefix>/readings. The payload is the same JSON object the HTTP endpoint takes.
type ReadingSubscriber struct {
	sink    Sink
	dedup   *Deduper
	topic   string
	qos     byte
	timeout time.Duration
}

func NewReadingSubscriber(sink Sink, prefix string, qos byte, dedup *Deduper) *ReadingSubscriber {
	return &ReadingSubscriber{
		sink:    sink,
		dedup:   dedup,
		topic:   ReadingsTopic(prefix),
		qos:     qos,
		timeout: 15 * time.Second,
	}
}

// Subscribe is meant to be used as the client's on-connect handler.
func (s *ReadingSubscriber) Subscribe(client paho.Client) {
	token := client.Subscribe(s.topic, s.qos, func(_ paho.Client, msg paho.Message) {
		s.HandleMessage(msg)
	})
	if token.Wait() && token.Error() != nil {
		nuts.L.Errorf("[MQTT] Subscribe to %s failed: %v", s.topic, token.Error())
		return
	}
	nuts.L.Infof("[MQTT] Subscribed to %s", s.topic)
}

// HandleMessage decodes and ingests one message. Rejected readings are logged;
// MQTT has no channel to report them back.
func (s *ReadingSubscriber) HandleMessage(msg paho.Message) {
	if s.dedup != nil && !s.dedup.ShouldProcess(MessageKey(msg.Topic(), msg.Payload())) {
		nuts.L.Debugf("[MQTT] Dropping duplicate message %d on %s", msg.MessageID(), msg.Topic())
		return
	}

	var raw models.RawReading
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		nuts.L.Warnf("[MQTT] Invalid reading payload on %s: %v", msg.Topic(), err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	reading, err := s.sink.Ingest(ctx, raw)
	if err != nil {
		nuts.L.Warnf("[MQTT] Reading on %s rejected: %v", msg.Topic(), err)
		return
	}
	nuts.L.Debugf("[MQTT] Ingested reading %s", reading.ID)
}

// Unsubscribe stops delivery before shutdown drains the pipeline.
func (s *ReadingSubscriber) Unsubscribe(client paho.Client) {
	if token := client.Unsubscribe(s.topic); token.WaitTimeout(2*time.Second) && token.Error() != nil {
		nuts.L.Warnf("[MQTT] Unsubscribe from %s failed: %v", s.topic, token.Error())
	}
}
