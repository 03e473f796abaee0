package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blues/efs/internal/logger"
)

// ErrRateLimited 行情接口限流，与其他失败区分开
var ErrRateLimited = errors.New("price feed rate limited")

// symbolIds 原生币符号到行情接口 coin id 的映射
var symbolIds = map[string]string{
	"ETH":   "ethereum",
	"MATIC": "matic-network",
	"BNB":   "binancecoin",
	"AVAX":  "avalanche-2",
	"OP":    "optimism",
	"ARB":   "arbitrum",
	"CELO":  "celo",
}

// Feed 实时 USD 行情客户端。
// 一次请求批量取多个币种，优于 N 次单币请求。
type Feed struct {
	baseUrl    string
	httpClient *http.Client
}

// NewFeed 创建行情客户端
func NewFeed(baseUrl string, timeout time.Duration) *Feed {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Feed{
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchUsdPrices 批量获取 USD 价格，返回 symbol -> price。
// 接口返回 429 时报 ErrRateLimited。
func (f *Feed) FetchUsdPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	if len(symbols) == 0 {
		return map[string]float64{}, nil
	}

	ids := make([]string, 0, len(symbols))
	idToSymbol := make(map[string]string, len(symbols))
	for _, symbol := range symbols {
		id, exists := symbolIds[strings.ToUpper(symbol)]
		if !exists {
			logger.Warn("No price feed id configured for symbol %s", symbol)
			continue
		}
		ids = append(ids, id)
		idToSymbol[id] = strings.ToUpper(symbol)
	}
	if len(ids) == 0 {
		return map[string]float64{}, nil
	}

	reqUrl := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd",
		f.baseUrl, url.QueryEscape(strings.Join(ids, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build price request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price feed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read price response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price feed status %d: %s", resp.StatusCode, string(body))
	}

	// 响应形如 {"ethereum":{"usd":2514.23}}
	var parsed map[string]struct {
		Usd float64 `json:"usd"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price response: %w", err)
	}

	prices := make(map[string]float64, len(parsed))
	for id, entry := range parsed {
		symbol, exists := idToSymbol[id]
		if !exists {
			continue
		}
		prices[symbol] = entry.Usd
	}
	return prices, nil
}
