package price

import (
	"sync"
	"time"

	"github.com/blues/efs/internal/model"
)

// Cache 进程内价格缓存，读多写少，读取永不阻塞在外部调用上。
// 显式注入构造（而不是包级全局），测试可以换新缓存和假时钟。
type Cache struct {
	mu     sync.RWMutex
	quotes map[string]model.PriceQuote
	now    func() time.Time
}

// NewCache 创建价格缓存
func NewCache() *Cache {
	return &Cache{
		quotes: make(map[string]model.PriceQuote),
		now:    time.Now,
	}
}

// Lookup 查找报价（不判断新鲜度，过期与否由调用方决定）
func (c *Cache) Lookup(symbol string) (model.PriceQuote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	quote, exists := c.quotes[symbol]
	return quote, exists
}

// Put 写入报价
func (c *Cache) Put(quote model.PriceQuote) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.quotes[quote.Symbol] = quote
}

// Age 报价距今时长
func (c *Cache) Age(quote model.PriceQuote) time.Duration {
	return c.now().Sub(quote.FetchedAt)
}

// Now 当前时间（经注入的时钟）
func (c *Cache) Now() time.Time {
	return c.now()
}
