// internal/publish/mqtt.go
//
// MQTT delivery for telemetry samples and alarm edges. Implements
// poller.Publisher. Publishes are fire-and-forget at QoS 1: delivery
// retries belong to the broker session, never to the poll loop.
package publish

import (
	"encoding/json"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/errors"

	"github.com/tamzrod/bms-telemetry/internal/telemetry"
)

const qosAtLeastOnce = 1

// Config is the broker connection and topic layout.
type Config struct {
	URL       string
	ClientID  string
	Keepalive time.Duration
	Username  string
	Password  string

	TopicTelemetry string
	TopicAlarms    string
}

// MQTT is one broker connection shared by both topics.
type MQTT struct {
	m mqtt.Client

	topicTelemetry string
	topicAlarms    string
}

// New connects to the broker in the background and returns
// immediately. A dead broker at startup is not fatal: the client keeps
// retrying, and publishes fail loudly until it gets through.
//
// The connection carries a will on the telemetry topic: a degraded
// sample with the connect time, so consumers see an ungraceful death
// as bad quality instead of silence.
func New(cfg Config) (*MQTT, error) {
	if cfg.URL == "" {
		return nil, errors.New("publish: broker url required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("publish: client id required")
	}
	if cfg.TopicTelemetry == "" || cfg.TopicAlarms == "" {
		return nil, errors.New("publish: both topics required")
	}
	if cfg.Keepalive <= 0 {
		cfg.Keepalive = 30 * time.Second
	}

	mqtt.ERROR = log.New(os.Stderr, "mqtt error: ", log.LstdFlags)
	mqtt.CRITICAL = log.New(os.Stderr, "mqtt critical: ", log.LstdFlags)

	will := telemetry.Degraded(time.Now(), errors.New("connection lost"))
	willPayload, err := json.Marshal(will)
	if err != nil {
		return nil, errors.Annotate(err, "publish: encode will")
	}

	opt := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(cfg.ClientID).
		SetKeepAlive(cfg.Keepalive).
		SetPingTimeout(cfg.Keepalive).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(cfg.Keepalive / 2).
		SetBinaryWill(cfg.TopicTelemetry, willPayload, qosAtLeastOnce, false).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Printf("mqtt connected to %s", cfg.URL)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("mqtt connection lost: %v", err)
		})
	if cfg.Username != "" {
		opt.SetUsername(cfg.Username)
		opt.SetPassword(cfg.Password)
	}

	p := &MQTT{
		m:              mqtt.NewClient(opt),
		topicTelemetry: cfg.TopicTelemetry,
		topicAlarms:    cfg.TopicAlarms,
	}

	if token := p.m.Connect(); token.Error() != nil {
		return nil, errors.Annotate(token.Error(), "publish: connect")
	}
	return p, nil
}

// Close lets in-flight publishes drain, then disconnects.
func (p *MQTT) Close() error {
	p.m.Disconnect(250)
	return nil
}

// Telemetry publishes one sample, good or degraded.
func (p *MQTT) Telemetry(s telemetry.Sample) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return errors.Annotate(err, "encode sample")
	}
	return p.publish(p.topicTelemetry, payload)
}

// Alarm publishes one alarm edge.
func (p *MQTT) Alarm(m telemetry.AlarmMessage) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return errors.Annotate(err, "encode alarm")
	}
	return p.publish(p.topicAlarms, payload)
}

func (p *MQTT) publish(topic string, payload []byte) error {
	tok := p.m.Publish(topic, qosAtLeastOnce, false, payload)
	// No Wait here. Only synchronous failures surface; QoS 1
	// completion is the session's problem.
	if err := tok.Error(); err != nil {
		return errors.Annotatef(err, "publish %s", topic)
	}
	return nil
}
