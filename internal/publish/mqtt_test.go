package publish

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twentefluids/dodecalog/internal/errors"
	"github.com/twentefluids/dodecalog/internal/sample"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeClient struct {
	mqtt.Client

	topics     []string
	payloads   [][]byte
	publishErr error
}

func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload.([]byte))

	return &fakeToken{err: c.publishErr}
}

func (c *fakeClient) Disconnect(uint) {}

func testSample() sample.Sample {
	return sample.Sample{
		Time:     12.3,
		DSTemp:   21.4,
		BMETemp:  21.6,
		BMEHumi:  43.2,
		BMEPres:  1013.2,
		Setpoint: 22.0,
		BathTemp: 21.9,
	}
}

func TestConsumePublishesJSON(t *testing.T) {
	client := &fakeClient{}
	pub := &Publisher{client: client, topic: "dodecalog/state"}

	require.NoError(t, pub.Consume(testSample()))

	require.Len(t, client.payloads, 1)
	assert.Equal(t, "dodecalog/state", client.topics[0])

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(client.payloads[0], &got))
	assert.InDelta(t, 12.3, got["time"], 1e-9)
	assert.InDelta(t, 21.4, got["ds_temp"], 1e-9)
	assert.InDelta(t, 1013.2, got["bme_pres"], 1e-9)
}

func TestMissingReadingEncodesAsNull(t *testing.T) {
	s := testSample()
	s.DSTemp = math.NaN()

	data, err := encode(s)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))

	val, present := got["ds_temp"]
	assert.True(t, present)
	assert.Nil(t, val)
	assert.InDelta(t, 21.6, got["bme_temp"], 1e-9)
}

func TestConsumeReportsBrokerFailure(t *testing.T) {
	client := &fakeClient{publishErr: assert.AnError}
	pub := &Publisher{client: client, topic: "dodecalog/state"}

	err := pub.Consume(testSample())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrPublishFailed))
}

func TestCloseDisconnects(t *testing.T) {
	pub := &Publisher{client: &fakeClient{}, topic: "dodecalog/state"}
	assert.NoError(t, pub.Close())
}
