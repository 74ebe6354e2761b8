// Package publish pushes accepted samples to an MQTT broker as JSON,
// for dashboards and remote monitoring. It is optional and best-effort:
// a dropped broker connection never slows the acquisition loop.
package publish

import (
	"encoding/json"
	"math"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/twentefluids/dodecalog/internal/errors"
	"github.com/twentefluids/dodecalog/internal/logger"
	"github.com/twentefluids/dodecalog/internal/sample"
)

const (
	clientID       = "dodecalog"
	connectTimeout = 5 * time.Second
	publishTimeout = time.Second
	qos            = 0
)

var errFactory = errors.New()

// payload is the wire form of a sample. Missing readings (NaN) are
// encoded as null; encoding/json rejects NaN outright.
type payload struct {
	Time     float64  `json:"time"`
	DSTemp   *float64 `json:"ds_temp"`
	BMETemp  *float64 `json:"bme_temp"`
	BMEHumi  *float64 `json:"bme_humi"`
	BMEPres  *float64 `json:"bme_pres"`
	Setpoint *float64 `json:"julabo_setp"`
	BathTemp *float64 `json:"julabo_bath"`
}

func encode(s sample.Sample) ([]byte, error) {
	return json.Marshal(payload{
		Time:     s.Time,
		DSTemp:   optional(s.DSTemp),
		BMETemp:  optional(s.BMETemp),
		BMEHumi:  optional(s.BMEHumi),
		BMEPres:  optional(s.BMEPres),
		Setpoint: optional(s.Setpoint),
		BathTemp: optional(s.BathTemp),
	})
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// Publisher sends each accepted sample to <topic>/state. It satisfies
// the acquisition worker's sink contract.
type Publisher struct {
	client mqtt.Client
	topic  string
}

// NewPublisher connects to the broker. The connection retries in the
// background, so a broker that is down at startup is not fatal.
func NewPublisher(broker, topic string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.WaitTimeout(connectTimeout) && token.Error() != nil {
		return nil, errFactory.Wrap(errors.ErrBrokerUnavailable, token.Error())
	}

	logger.Info().Str("broker", broker).Str("topic", topic).Msg("MQTT publisher connected")

	return &Publisher{client: client, topic: topic + "/state"}, nil
}

// Consume publishes one sample. Publishing while disconnected is
// reported but never blocks beyond the publish timeout.
func (p *Publisher) Consume(s sample.Sample) error {
	data, err := encode(s)
	if err != nil {
		return errFactory.Wrap(errors.ErrPublishFailed, err)
	}

	token := p.client.Publish(p.topic, qos, false, data)
	if token.WaitTimeout(publishTimeout) && token.Error() != nil {
		return errFactory.Wrap(errors.ErrPublishFailed, token.Error())
	}

	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() error {
	p.client.Disconnect(250) //nolint:mnd // quiesce period in ms
	return nil
}
