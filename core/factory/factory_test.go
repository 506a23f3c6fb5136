package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Topic   string
	QoS     int
	Timeout time.Duration
}

type sampleConf struct {
	Topic   string        `json:"topic"`
	QoS     int           `json:"qos"`
	Timeout time.Duration `json:"timeout"`
}

func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	require.NoError(t, reg.Register("s", func(conf map[string]any) (*sample, error) {
		var c sampleConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sample{Topic: c.Topic, QoS: c.QoS, Timeout: c.Timeout}, nil
	}))
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"topic": "fleet", "qos": "1", "timeout": "3s"}})
	require.NoError(t, err)
	assert.Equal(t, "fleet", inst.Topic)
	assert.Equal(t, 1, inst.QoS, "string values are weakly decoded")
	assert.Equal(t, 3*time.Second, inst.Timeout)

	inst, err = reg.Create(ModuleConfig{Type: "s"})
	require.NoError(t, err, "missing conf decodes to zero values")
	assert.Empty(t, inst.Topic)
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	require.NoError(t, reg.Register("x", func(map[string]any) (int, error) { return 1, nil }))
	assert.Error(t, reg.Register("x", func(map[string]any) (int, error) { return 2, nil }), "duplicate")
	assert.Error(t, reg.Register("y", nil), "nil factory")

	_, err := reg.Create(ModuleConfig{Type: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "known: x")
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry[int]()
	for _, n := range []string{"prometheus", "influx", "nop"} {
		require.NoError(t, reg.Register(n, func(map[string]any) (int, error) { return 0, nil }))
	}
	assert.Equal(t, []string{"influx", "nop", "prometheus"}, reg.Names())
}
