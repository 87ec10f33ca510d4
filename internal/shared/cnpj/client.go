package cnpj

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"
)

// =============================================================================
// Client — CNPJ公共查询客户端
// 查询巴西税号登记信息（公司名称、地址、状态），结果写入Redis缓存
// =============================================================================

var cnpjDigits = regexp.MustCompile(`\D`)

// CompanyInfo CNPJ登记信息
type CompanyInfo struct {
	CNPJ         string `json:"cnpj"`
	RazaoSocial  string `json:"razao_social"`   // 注册名称
	NomeFantasia string `json:"nome_fantasia"`  // 商号
	Situacao     string `json:"descricao_situacao_cadastral"`
	UF           string `json:"uf"`
	Municipio    string `json:"municipio"`
	Logradouro   string `json:"logradouro"`
	Numero       string `json:"numero"`
	CEP          string `json:"cep"`
	Email        string `json:"email"`
	Telefone     string `json:"ddd_telefone_1"`
}

// Client CNPJ查询客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
	redis      *redis.Client
	cacheTTL   time.Duration
}

// NewClient 创建CNPJ查询客户端
// redisClient为nil时不缓存，每次直接请求
func NewClient(baseURL string, timeout time.Duration, redisClient *redis.Client, cacheTTL time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://brasilapi.com.br/api/cnpj/v1"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		redis:      redisClient,
		cacheTTL:   cacheTTL,
	}
}

// Normalize 去除CNPJ中的格式字符，只保留14位数字
func Normalize(raw string) (string, error) {
	digits := cnpjDigits.ReplaceAllString(raw, "")
	if len(digits) != 14 {
		return "", fmt.Errorf("CNPJ必须包含14位数字")
	}
	return digits, nil
}

// Lookup 查询CNPJ登记信息
// 先查Redis缓存，未命中再请求公共API
func (c *Client) Lookup(ctx context.Context, rawCNPJ string) (*CompanyInfo, error) {
	digits, err := Normalize(rawCNPJ)
	if err != nil {
		return nil, err
	}

	cacheKey := "cnpj:" + digits
	if c.redis != nil {
		if cached, err := c.redis.Get(ctx, cacheKey).Result(); err == nil {
			var info CompanyInfo
			if err := json.Unmarshal([]byte(cached), &info); err == nil {
				return &info, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/"+digits, nil)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求CNPJ服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("CNPJ未登记: %s", digits)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CNPJ服务错误[%d]", resp.StatusCode)
	}

	var info CompanyInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("解析CNPJ响应失败: %w", err)
	}
	info.CNPJ = digits

	if c.redis != nil {
		if data, err := json.Marshal(&info); err == nil {
			c.redis.Set(ctx, cacheKey, data, c.cacheTTL)
		}
	}

	return &info, nil
}
