package discovery

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/consul/api"
	"google.golang.org/grpc/resolver"
)

const (
	consulScheme = "consul"

	// 健康实例列表的轮询间隔
	watchInterval = 5 * time.Second
)

// ConsulResolver Consul 服务解析器：按服务名轮询健康实例，
// 把地址列表推给 gRPC 的 ClientConn。
type ConsulResolver struct {
	client   *api.Client
	cc       resolver.ClientConn
	service  string
	watchers []*consulWatcher
	mu       sync.Mutex
}

type consulWatcher struct {
	client    *api.Client
	service   string
	addrs     []resolver.Address
	lastIndex uint64
	stop      chan struct{}
}

// NewConsulResolver 创建并注册 Consul 解析器
func NewConsulResolver(client *api.Client, service string, cc resolver.ClientConn) *ConsulResolver {
	r := &ConsulResolver{
		client:  client,
		cc:      cc,
		service: service,
	}
	resolver.Register(r)
	return r
}

// Build 构建解析器
func (r *ConsulResolver) Build(target resolver.Target, cc resolver.ClientConn, opts resolver.BuildOptions) (resolver.Resolver, error) {
	watcher := &consulWatcher{
		client:  r.client,
		service: r.service,
		stop:    make(chan struct{}),
	}
	r.mu.Lock()
	r.watchers = append(r.watchers, watcher)
	r.mu.Unlock()

	go watcher.watch(cc)
	return r, nil
}

// Scheme 返回 scheme
func (r *ConsulResolver) Scheme() string {
	return consulScheme
}

// ResolveNow 立即解析（轮询模式下无需处理）
func (r *ConsulResolver) ResolveNow(resolver.ResolveNowOptions) {}

// Close 停止全部 watcher
func (r *ConsulResolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.watchers {
		close(w.stop)
	}
	r.watchers = nil
}

func (w *consulWatcher) watch(cc resolver.ClientConn) {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	w.update(cc)
	for {
		select {
		case <-ticker.C:
			w.update(cc)
		case <-w.stop:
			return
		}
	}
}

func (w *consulWatcher) update(cc resolver.ClientConn) {
	services, meta, err := w.client.Health().Service(w.service, "", true, &api.QueryOptions{
		WaitIndex: w.lastIndex,
	})
	if err != nil {
		return
	}

	w.lastIndex = meta.LastIndex

	addrs := make([]resolver.Address, 0, len(services))
	for _, service := range services {
		addr := fmt.Sprintf("%s:%d", service.Service.Address, service.Service.Port)
		addrs = append(addrs, resolver.Address{
			Addr: addr,
		})
	}

	// 实例全挂时保留上一份地址，避免把连接池清空
	if len(addrs) > 0 {
		cc.UpdateState(resolver.State{
			Addresses: addrs,
		})
		w.addrs = addrs
	}
}

// ServiceRegistry Consul 服务注册
type ServiceRegistry struct {
	client    *api.Client
	serviceID string
	service   string
	address   string
	port      int
	tags      []string
	check     *api.AgentServiceCheck
}

// NewServiceRegistry 创建服务注册器（gRPC health check 探测）
func NewServiceRegistry(client *api.Client, serviceID, service, address string, port int, tags []string) *ServiceRegistry {
	return &ServiceRegistry{
		client:    client,
		serviceID: serviceID,
		service:   service,
		address:   address,
		port:      port,
		tags:      tags,
		check: &api.AgentServiceCheck{
			GRPC:                           fmt.Sprintf("%s:%d", address, port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}
}

// Register 注册服务
func (r *ServiceRegistry) Register() error {
	registration := &api.AgentServiceRegistration{
		ID:      r.serviceID,
		Name:    r.service,
		Tags:    r.tags,
		Address: r.address,
		Port:    r.port,
		Check:   r.check,
	}

	return r.client.Agent().ServiceRegister(registration)
}

// Deregister 注销服务
func (r *ServiceRegistry) Deregister() error {
	return r.client.Agent().ServiceDeregister(r.serviceID)
}

// NewConsulClient 创建 Consul 客户端
func NewConsulClient(host string, port int) (*api.Client, error) {
	config := api.DefaultConfig()
	config.Address = fmt.Sprintf("%s:%d", host, port)
	return api.NewClient(config)
}
