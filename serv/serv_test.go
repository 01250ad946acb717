package serv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewExplainService_MissingCredential(t *testing.T) {
	conf := &Config{AppName: "explaind"}

	// No upstream credential: the service must refuse to construct, so the
	// process fails before it starts serving.
	_, err := NewExplainService(conf, OptionSetZapLogger(zaptest.NewLogger(t)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestNewExplainService_HostPort(t *testing.T) {
	conf := &Config{
		Host:     "127.0.0.1",
		Port:     "9000",
		Upstream: UpstreamConfig{APIKey: "sk-test"},
	}

	s, err := NewExplainService(conf, OptionSetZapLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", s.conf.hostPort)
}

func TestNewExplainService_InvalidPort(t *testing.T) {
	conf := &Config{
		Host:     "127.0.0.1",
		Port:     "90:00",
		Upstream: UpstreamConfig{APIKey: "sk-test"},
	}

	_, err := NewExplainService(conf, OptionSetZapLogger(zaptest.NewLogger(t)))
	require.Error(t, err)
}
