package price

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/blues/efs/internal/config"
	"github.com/blues/efs/internal/fallback"
	"github.com/blues/efs/internal/logger"
	"github.com/blues/efs/internal/model"
)

// PriceFeed 实时行情能力（测试注入假行情）
type PriceFeed interface {
	FetchUsdPrices(ctx context.Context, symbols []string) (map[string]float64, error)
}

// Oracle 原生币价格服务：缓存 -> 实时行情 -> 静态兜底价。
// 行情失败对只需要价格的调用方静默兜底，用低置信度标记精度降级。
type Oracle struct {
	cache         *Cache
	feed          PriceFeed
	fallbackRates map[string]float64
	chains        map[int64]config.ChainConfig // chainId -> 币种与小数位
	liveTTL       time.Duration
	fallbackTTL   time.Duration
	feedTimeout   time.Duration
}

// NewOracle 创建价格服务
func NewOracle(cache *Cache, feed PriceFeed, cfg config.PriceConfig, chains map[string]config.ChainConfig) *Oracle {
	chainById := make(map[int64]config.ChainConfig, len(chains))
	for _, chainCfg := range chains {
		chainById[chainCfg.ChainId] = chainCfg
	}

	rates := make(map[string]float64, len(cfg.FallbackRates))
	for symbol, rate := range cfg.FallbackRates {
		rates[strings.ToUpper(symbol)] = rate
	}

	return &Oracle{
		cache:         cache,
		feed:          feed,
		fallbackRates: rates,
		chains:        chainById,
		liveTTL:       time.Duration(cfg.LiveTTL) * time.Second,
		fallbackTTL:   time.Duration(cfg.FallbackTTL) * time.Second,
		feedTimeout:   time.Duration(cfg.FeedTimeout) * time.Second,
	}
}

// GetPrice 解析单个币种的 USD 报价。
// 顺序：未过期缓存 -> 实时行情 -> 静态兜底价（confidence 0.5）。
// 行情失败不向调用方抛错，只降低置信度。
func (o *Oracle) GetPrice(ctx context.Context, symbol string, maxAge time.Duration) model.PriceQuote {
	symbol = strings.ToUpper(symbol)

	if quote, exists := o.cache.Lookup(symbol); exists {
		if o.cache.Age(quote) <= o.effectiveMaxAge(quote.Source, maxAge) {
			return quote
		}
	}

	quote, err := fallback.Do(ctx, o.feedTimeout,
		func(ctx context.Context) (model.PriceQuote, error) {
			return o.fetchLive(ctx, symbol)
		},
		func(ctx context.Context) (model.PriceQuote, error) {
			return o.staticFallback(symbol)
		},
	)
	if err != nil {
		// 连兜底价都没有：返回零价报价，置信度 0，由调用方决定是否可用
		logger.Error("No price available for %s: %v", symbol, err)
		return model.PriceQuote{
			Symbol:    symbol,
			FetchedAt: o.cache.Now(),
			Source:    model.PriceSourceFallback,
		}
	}

	o.cache.Put(quote)
	return quote
}

// WarmUp 批量预热缓存，一次行情请求覆盖全部币种
func (o *Oracle) WarmUp(ctx context.Context, symbols []string) error {
	prices, err := o.feed.FetchUsdPrices(ctx, symbols)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			logger.Warn("Price feed rate limited during warmup, keeping cached quotes")
			return nil
		}
		return fmt.Errorf("price warmup failed: %w", err)
	}

	for symbol, priceUsd := range prices {
		o.cache.Put(model.PriceQuote{
			Symbol:     strings.ToUpper(symbol),
			PriceUsd:   priceUsd,
			FetchedAt:  o.cache.Now(),
			Source:     model.PriceSourceLive,
			Confidence: 1.0,
		})
	}
	return nil
}

// Convert 把 USD 金额换算为链原生币最小单位整数。
// 向零截断（floor），保证不会因为进位多授权一分钱。
func (o *Oracle) Convert(ctx context.Context, amountUsd float64, chainId int64, maxAge time.Duration) (*big.Int, error) {
	chainCfg, exists := o.chains[chainId]
	if !exists {
		return nil, fmt.Errorf("chain %d not configured for conversion", chainId)
	}

	quote := o.GetPrice(ctx, chainCfg.NativeSymbol, maxAge)
	if quote.PriceUsd <= 0 {
		return nil, fmt.Errorf("no usable price for %s", chainCfg.NativeSymbol)
	}

	// native = usd / price * 10^decimals，big.Float.Int 向零截断
	value := new(big.Float).Quo(big.NewFloat(amountUsd), big.NewFloat(quote.PriceUsd))
	value.Mul(value, decimalsFactor(chainCfg.Decimals))
	result, _ := value.Int(nil)
	if result.Sign() < 0 {
		return nil, fmt.Errorf("negative usd amount %f", amountUsd)
	}
	return result, nil
}

// Display 把最小单位整数换算为 USD 显示金额，附带报价置信度
func (o *Oracle) Display(ctx context.Context, amountNative *big.Int, chainId int64, maxAge time.Duration) (float64, float64, error) {
	chainCfg, exists := o.chains[chainId]
	if !exists {
		return 0, 0, fmt.Errorf("chain %d not configured for conversion", chainId)
	}

	quote := o.GetPrice(ctx, chainCfg.NativeSymbol, maxAge)
	if quote.PriceUsd <= 0 {
		return 0, 0, fmt.Errorf("no usable price for %s", chainCfg.NativeSymbol)
	}

	value := new(big.Float).SetInt(amountNative)
	value.Quo(value, decimalsFactor(chainCfg.Decimals))
	value.Mul(value, big.NewFloat(quote.PriceUsd))
	display, _ := value.Float64()
	return display, quote.Confidence, nil
}

// NativeSymbols 所有已配置链的币种符号（供预热任务使用）
func (o *Oracle) NativeSymbols() []string {
	seen := make(map[string]bool)
	symbols := make([]string, 0, len(o.chains))
	for _, chainCfg := range o.chains {
		symbol := strings.ToUpper(chainCfg.NativeSymbol)
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		symbols = append(symbols, symbol)
	}
	return symbols
}

// fetchLive 单币种实时行情（接口本身是批量的）
func (o *Oracle) fetchLive(ctx context.Context, symbol string) (model.PriceQuote, error) {
	prices, err := o.feed.FetchUsdPrices(ctx, []string{symbol})
	if err != nil {
		return model.PriceQuote{}, err
	}

	priceUsd, exists := prices[symbol]
	if !exists || priceUsd <= 0 {
		return model.PriceQuote{}, fmt.Errorf("feed returned no price for %s", symbol)
	}

	return model.PriceQuote{
		Symbol:     symbol,
		PriceUsd:   priceUsd,
		FetchedAt:  o.cache.Now(),
		Source:     model.PriceSourceLive,
		Confidence: 1.0,
	}, nil
}

// staticFallback 静态兜底价
func (o *Oracle) staticFallback(symbol string) (model.PriceQuote, error) {
	rate, exists := o.fallbackRates[symbol]
	if !exists {
		return model.PriceQuote{}, fmt.Errorf("no fallback rate configured for %s", symbol)
	}

	return model.PriceQuote{
		Symbol:     symbol,
		PriceUsd:   rate,
		FetchedAt:  o.cache.Now(),
		Source:     model.PriceSourceFallback,
		Confidence: 0.5,
	}, nil
}

// effectiveMaxAge 缓存有效期取调用方上限与来源 TTL 的较小者
func (o *Oracle) effectiveMaxAge(source model.PriceSource, maxAge time.Duration) time.Duration {
	ttl := o.liveTTL
	if source == model.PriceSourceFallback {
		ttl = o.fallbackTTL
	}
	if maxAge > 0 && maxAge < ttl {
		return maxAge
	}
	return ttl
}

// decimalsFactor 10^decimals
func decimalsFactor(decimals int) *big.Float {
	factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Float).SetInt(factor)
}
