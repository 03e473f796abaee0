package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blues/efs/internal/config"
)

// ErrUnauthorized token 无效或权限不足
var ErrUnauthorized = errors.New("unauthorized")

// Identity 鉴权协作方返回的身份
type Identity struct {
	UserId int64  `json:"user_id"`
	Role   string `json:"role"`
}

// IsAdmin 引擎入口要求 admin 或 super_admin
func (i Identity) IsAdmin() bool {
	return i.Role == "admin" || i.Role == "super_admin"
}

// Client 管理员 token 校验客户端（鉴权本身是外部协作方）
type Client struct {
	verifyUrl  string
	httpClient *http.Client
}

// NewClient 创建鉴权客户端
func NewClient(cfg config.AuthConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		verifyUrl:  cfg.VerifyUrl,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// VerifyAdminToken 校验管理员 token，非法返回 ErrUnauthorized
func (c *Client) VerifyAdminToken(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.verifyUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth service status %d: %s", resp.StatusCode, string(body))
	}

	var identity Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal auth response: %w", err)
	}
	return &identity, nil
}
