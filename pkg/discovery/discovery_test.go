package discovery

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getServiceDiscovery(t *testing.T) *ServiceDiscovery {
	endpoints := os.Getenv("ETCD_ENDPOINTS")
	if endpoints == "" {
		endpoints = "localhost:2379"
	}

	sd, err := NewServiceDiscovery(&config.EtcdConfig{
		Endpoints:   strings.Split(endpoints, ","),
		DialTimeout: 2 * time.Second,
		Prefix:      fmt.Sprintf("/test-%d/", time.Now().UnixNano()),
	}, zap.NewNop())
	if err != nil {
		t.Skipf("etcd not available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sd.Ping(ctx); err != nil {
		sd.Close()
		t.Skipf("etcd not available: %v", err)
	}
	t.Cleanup(func() { sd.Close() })
	return sd
}

func TestServiceInstanceAddr(t *testing.T) {
	assert.Equal(t, "10.0.0.1:3000", (&ServiceInstance{Host: "10.0.0.1", Port: 3000}).Addr())
	assert.Equal(t, "[::1]:4000", (&ServiceInstance{Host: "::1", Port: 4000}).Addr())
}

func TestRegisterDiscoverDeregister(t *testing.T) {
	sd := getServiceDiscovery(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	instance := &ServiceInstance{Name: "shop", Host: "127.0.0.1", Port: 3000}
	require.NoError(t, sd.Register(ctx, instance))

	found, err := sd.Discover(ctx, "shop")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, *instance, *found[0])

	require.NoError(t, sd.Deregister(ctx, instance))
	found, err = sd.Discover(ctx, "shop")
	require.NoError(t, err)
	assert.Empty(t, found)
}
