package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sony/gobreaker"
)

// tokenPublisher is the part of paho.Client the publisher needs.
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

type commandPayload struct {
	DeviceID   string            `json:"device_id"`
	DeviceType models.DeviceType `json:"device_type"`
	On         bool              `json:"on"`
	IssuedAt   time.Time         `json:"issued_at"`
}

// CommandPublisher sends actuator commands to <prefix>/devices/<id>/set as
// retained messages, so a device that reconnects picks up its last state.
// A circuit breaker stops waiting on a broker that keeps failing.
type CommandPublisher struct {
	client  tokenPublisher
	prefix  string
	qos     byte
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
}

func NewCommandPublisher(client tokenPublisher, prefix string, qos byte, timeout time.Duration) *CommandPublisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CommandPublisher{
		client:  client,
		prefix:  prefix,
		qos:     qos,
		timeout: timeout,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "mqtt-commands",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (p *CommandPublisher) PublishCommand(ctx context.Context, cmd models.DeviceCommand) error {
	payload, err := json.Marshal(commandPayload{
		DeviceID:   cmd.DeviceID,
		DeviceType: cmd.DeviceType,
		On:         cmd.DesiredOn,
		IssuedAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		token := p.client.Publish(CommandTopic(p.prefix, cmd.DeviceID), p.qos, true, payload)
		select {
		case <-token.Done():
			return nil, token.Error()
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.timeout):
			return nil, fmt.Errorf("publish to %s timed out", cmd.DeviceID)
		}
	})
	return err
}

// State exposes the breaker state for health reporting.
func (p *CommandPublisher) State() string {
	return p.cb.State().String()
}
