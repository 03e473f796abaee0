package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/blues/efs/internal/config"
	"github.com/blues/efs/internal/logger"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Manager 多链客户端管理器
type Manager struct {
	mu      sync.RWMutex
	clients map[int64]*ethclient.Client // chainId -> 客户端
	configs map[int64]config.ChainConfig
}

// NewManager 创建多链管理器，逐条链建立并验证连接
func NewManager(chains map[string]config.ChainConfig) (*Manager, error) {
	manager := &Manager{
		clients: make(map[int64]*ethclient.Client),
		configs: make(map[int64]config.ChainConfig),
	}

	for name, chainCfg := range chains {
		if chainCfg.RpcUrl == "" {
			return nil, fmt.Errorf("chain %s has no RPC URL configured", name)
		}

		logger.Info("Initializing chain client %s (id: %d, testnet: %v)",
			name, chainCfg.ChainId, chainCfg.Testnet)

		client, err := ethclient.Dial(chainCfg.RpcUrl)
		if err != nil {
			return nil, fmt.Errorf("failed to dial chain %s: %w", name, err)
		}

		// 测试连接
		if err := testClientConnection(client); err != nil {
			client.Close()
			return nil, fmt.Errorf("client connection test failed (%s): %w", name, err)
		}

		manager.clients[chainCfg.ChainId] = client
		manager.configs[chainCfg.ChainId] = chainCfg
		logger.Info("Successfully initialized chain client %s", name)
	}

	if len(manager.clients) == 0 {
		return nil, fmt.Errorf("no chains configured")
	}

	return manager, nil
}

// testClientConnection 测试客户端连接
func testClientConnection(client *ethclient.Client) error {
	_, err := client.BlockNumber(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get block number: %w", err)
	}
	return nil
}

// GetClient 按链ID获取客户端
func (m *Manager) GetClient(chainId int64) (*ethclient.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	client, exists := m.clients[chainId]
	if !exists {
		return nil, fmt.Errorf("chain %d not configured", chainId)
	}
	return client, nil
}

// GetConfig 按链ID获取链配置
func (m *Manager) GetConfig(chainId int64) (config.ChainConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, exists := m.configs[chainId]
	if !exists {
		return config.ChainConfig{}, fmt.Errorf("chain %d not configured", chainId)
	}
	return cfg, nil
}

// ChainIds 所有已配置链ID
func (m *Manager) ChainIds() []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, 0, len(m.clients))
	for id := range m.clients {
		ids = append(ids, id)
	}
	return ids
}

// GetHealthStatus 获取各链连接健康状态
func (m *Manager) GetHealthStatus() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	health := make(map[string]interface{})
	for chainId, client := range m.clients {
		status := "connected"
		if _, err := client.BlockNumber(context.TODO()); err != nil {
			status = "disconnected"
		}
		health[fmt.Sprintf("%d", chainId)] = map[string]interface{}{
			"status":  status,
			"testnet": m.configs[chainId].Testnet,
			"symbol":  m.configs[chainId].NativeSymbol,
		}
	}
	return health
}

// Close 关闭所有客户端
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, client := range m.clients {
		client.Close()
	}

	logger.Info("Chain manager closed")
	return nil
}
