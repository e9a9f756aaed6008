package discovery

import (
	"testing"

	"github.com/example/possales/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInstanceKey(t *testing.T) {
	instance := &ServiceInstance{Name: "possales-http", Host: "10.0.0.5", Port: 8080}
	assert.Equal(t, "/services/possales-http/10.0.0.5:8080", instanceKey("/services/", instance))
}

func TestParseInstance(t *testing.T) {
	tests := []struct {
		addr    string
		host    string
		port    int
		wantErr bool
	}{
		{"10.0.0.5:8080", "10.0.0.5", 8080, false},
		{"[::1]:9090", "[::1]", 9090, false},
		{"nohost", "", 0, true},
		{":80", "", 0, true},
		{"host:http", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			got, err := parseInstance("svc", tt.addr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, got.Host)
			assert.Equal(t, tt.port, got.Port)
			assert.Equal(t, tt.addr, got.Addr())
		})
	}
}

func TestNewServiceDiscoveryDisabled(t *testing.T) {
	sd, err := NewServiceDiscovery(&config.EtcdConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, sd)
}
