package discovery

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/possales/pkg/config"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

type ServiceDiscovery struct {
	client *clientv3.Client
	config *config.EtcdConfig
	logger *zap.Logger
	lease  clientv3.LeaseID
}

type ServiceInstance struct {
	Name string
	Host string
	Port int
}

func (i *ServiceInstance) Addr() string {
	return i.Host + ":" + strconv.Itoa(i.Port)
}

// NewServiceDiscovery connects to etcd. It returns nil, nil when no
// endpoints are configured.
func NewServiceDiscovery(cfg *config.EtcdConfig, logger *zap.Logger) (*ServiceDiscovery, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, nil
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	return &ServiceDiscovery{
		client: cli,
		config: cfg,
		logger: logger.Named("discovery"),
	}, nil
}

func instanceKey(prefix string, instance *ServiceInstance) string {
	return fmt.Sprintf("%s%s/%s", prefix, instance.Name, instance.Addr())
}

// Register publishes instance under a lease that is kept alive until ctx is
// cancelled or Deregister is called.
func (sd *ServiceDiscovery) Register(ctx context.Context, instance *ServiceInstance) error {
	ttl := sd.config.LeaseTTL
	if ttl <= 0 {
		ttl = 30
	}

	lease, err := sd.client.Grant(ctx, ttl)
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	_, err = sd.client.Put(ctx, instanceKey(sd.config.Prefix, instance), instance.Addr(), clientv3.WithLease(lease.ID))
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	ch, err := sd.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return fmt.Errorf("failed to keep alive: %w", err)
	}
	sd.lease = lease.ID

	go func() {
		for range ch {
		}
		sd.logger.Info("Service lease keep-alive ended", zap.String("name", instance.Name))
	}()

	return nil
}

func (sd *ServiceDiscovery) Discover(ctx context.Context, serviceName string) ([]*ServiceInstance, error) {
	key := fmt.Sprintf("%s%s/", sd.config.Prefix, serviceName)

	resp, err := sd.client.Get(ctx, key, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to discover service: %w", err)
	}

	instances := make([]*ServiceInstance, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		instance, err := parseInstance(serviceName, string(kv.Value))
		if err != nil {
			sd.logger.Warn("Skipping malformed service entry", zap.ByteString("key", kv.Key), zap.Error(err))
			continue
		}
		instances = append(instances, instance)
	}

	return instances, nil
}

func parseInstance(name, addr string) (*ServiceInstance, error) {
	i := strings.LastIndex(addr, ":")
	if i <= 0 {
		return nil, fmt.Errorf("address %q has no port", addr)
	}
	port, err := strconv.Atoi(addr[i+1:])
	if err != nil {
		return nil, fmt.Errorf("address %q has invalid port: %w", addr, err)
	}
	return &ServiceInstance{Name: name, Host: addr[:i], Port: port}, nil
}

func (sd *ServiceDiscovery) Deregister(ctx context.Context, instance *ServiceInstance) error {
	if _, err := sd.client.Delete(ctx, instanceKey(sd.config.Prefix, instance)); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	if sd.lease != 0 {
		if _, err := sd.client.Revoke(ctx, sd.lease); err != nil {
			return fmt.Errorf("failed to revoke lease: %w", err)
		}
	}
	return nil
}

func (sd *ServiceDiscovery) Close() error {
	return sd.client.Close()
}
