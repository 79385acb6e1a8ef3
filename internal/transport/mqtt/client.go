package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/config"
	"github.com/cenkalti/backoff/v4"
	paho "github.com/eclipse/paho.mqtt.golang"
	nuts "github.com/vaudience/go-nuts"
)

// Connect dials the broker with exponential backoff. onConnect runs after
// every (re)connect so subscriptions survive broker restarts.
func Connect(ctx context.Context, cfg config.MQTTConfig, onConnect func(paho.Client)) (paho.Client, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(false)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		nuts.L.Warnf("[MQTT] Connection lost: %v", err)
	})
	if onConnect != nil {
		opts.SetOnConnectHandler(onConnect)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	var client paho.Client
	err := backoff.Retry(func() error {
		client = paho.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			nuts.L.Warnf("[MQTT] Failed to connect to %s: %v", cfg.Broker, token.Error())
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, cfg.ConnectRetries), ctx))
	if err != nil {
		return nil, fmt.Errorf("could not establish MQTT connection after retries: %w", err)
	}

	nuts.L.Infof("[MQTT] Connected to %s as %s", cfg.Broker, cfg.ClientID)
	return client, nil
}

// Disconnect waits up to 250ms for in-flight work.
func Disconnect(client paho.Client) {
	if client != nil && client.IsConnected() {
		client.Disconnect(250)
		nuts.L.Infof("[MQTT] Disconnected")
	}
}

func ReadingsTopic(prefix string) string {
	return prefix + "/readings"
}

func CommandTopic(prefix, deviceID string) string {
	return prefix + "/devices/" + deviceID + "/set"
}
