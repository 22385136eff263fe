package netsqr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("netsqr config invalid")
	ErrRequestFailed   = errors.New("netsqr request failed")
	ErrResponseInvalid = errors.New("netsqr response invalid")
	ErrQRRejected      = errors.New("netsqr qr request rejected")
)

const (
	defaultSandboxBaseURL = "https://sandbox.nets.openapipaas.com/api/v1"
	defaultTimeout        = 12 * time.Second

	// 网关应答码与交易状态
	responseCodeOK   = "00"
	txnStatusSuccess = 1
	txnStatusFailed  = 3
)

// Status 轮询归一化状态。
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Config NETS QR 渠道配置。
type Config struct {
	BaseURL       string `json:"base_url"`
	APIKey        string `json:"api_key"`
	ProjectID     string `json:"project_id"`
	MerchantTxnID string `json:"merchant_txn_id"`
}

// RequestResult 请求二维码返回。
type RequestResult struct {
	QRCode          string
	TxnRetrievalRef string
	NetworkStatus   int
	Raw             map[string]interface{}
}

// QueryResult 查询交易返回。
type QueryResult struct {
	Status Status
	Raw    map[string]interface{}
}

// ValidateConfig 校验配置。
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return fmt.Errorf("%w: api_key is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return fmt.Errorf("%w: project_id is required", ErrConfigInvalid)
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		if _, err := url.ParseRequestURI(base); err != nil {
			return fmt.Errorf("%w: base_url is invalid", ErrConfigInvalid)
		}
	}
	return nil
}

// RequestQR 请求生成付款二维码。
// 仅当 response_code 为 00、txn_status 为 1 且带有 qr_code 时视为成功。
func RequestQR(ctx context.Context, cfg *Config, amount string) (*RequestResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(amount) == "" {
		return nil, fmt.Errorf("%w: amount is empty", ErrConfigInvalid)
	}

	payload := map[string]interface{}{
		"txn_id":         strings.TrimSpace(cfg.MerchantTxnID),
		"amt_in_dollars": strings.TrimSpace(amount),
		"notify_mobile":  0,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request failed", ErrRequestFailed)
	}

	respBody, statusCode, err := doJSONRequest(ctx, cfg, http.MethodPost, "/common/payments/nets-qr/request", body)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: request status %d", ErrResponseInvalid, statusCode)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}

	data := readMap(raw, "result", "data")
	responseCode := strings.TrimSpace(readString(data, "response_code"))
	txnStatus := readInt(data, "txn_status")
	qrCode := strings.TrimSpace(readString(data, "qr_code"))

	if responseCode != responseCodeOK || txnStatus != txnStatusSuccess || qrCode == "" {
		message := strings.TrimSpace(readString(data, "error_message"))
		if message == "" {
			message = "qr request rejected"
		}
		return nil, fmt.Errorf("%w: %s", ErrQRRejected, message)
	}

	result := &RequestResult{
		QRCode:          qrCode,
		TxnRetrievalRef: strings.TrimSpace(readString(data, "txn_retrieval_ref")),
		NetworkStatus:   readInt(data, "network_status"),
		Raw:             raw,
	}
	if result.TxnRetrievalRef == "" {
		return nil, fmt.Errorf("%w: missing txn_retrieval_ref", ErrResponseInvalid)
	}
	return result, nil
}

// QueryStatus 查询交易状态（轮询用）。
func QueryStatus(ctx context.Context, cfg *Config, txnRetrievalRef string) (*QueryResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	txnRetrievalRef = strings.TrimSpace(txnRetrievalRef)
	if txnRetrievalRef == "" {
		return nil, fmt.Errorf("%w: txn_retrieval_ref is empty", ErrConfigInvalid)
	}

	endpoint := "/common/payments/nets/webhook?txn_retrieval_ref=" + url.QueryEscape(txnRetrievalRef)
	respBody, statusCode, err := doJSONRequest(ctx, cfg, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: query status %d", ErrResponseInvalid, statusCode)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}

	data := readMap(raw, "result", "data")
	responseCode := strings.TrimSpace(readString(data, "response_code"))
	txnStatus := readInt(data, "txn_status")

	result := &QueryResult{Raw: raw}
	switch {
	case responseCode == responseCodeOK && txnStatus == txnStatusSuccess:
		result.Status = StatusSuccess
	case txnStatus == txnStatusFailed, responseCode != "" && responseCode != responseCodeOK:
		result.Status = StatusFailed
	default:
		result.Status = StatusPending
	}
	return result, nil
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = defaultSandboxBaseURL
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.ProjectID = strings.TrimSpace(c.ProjectID)
	c.MerchantTxnID = strings.TrimSpace(c.MerchantTxnID)
}

func doJSONRequest(ctx context.Context, cfg *Config, method, endpoint string, body []byte) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	cfg.normalize()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, cfg.BaseURL+endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", cfg.APIKey)
	req.Header.Set("project-id", cfg.ProjectID)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: http request failed", ErrRequestFailed)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrRequestFailed)
	}
	return respBody, resp.StatusCode, nil
}

func withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultTimeout)
}

func readMap(raw map[string]interface{}, path ...string) map[string]interface{} {
	current := raw
	for _, seg := range path {
		next, ok := current[seg].(map[string]interface{})
		if !ok {
			return map[string]interface{}{}
		}
		current = next
	}
	return current
}

func readString(raw map[string]interface{}, key string) string {
	if raw == nil {
		return ""
	}
	value := raw[key]
	if value == nil {
		return ""
	}
	if str, ok := value.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", value)
}

func readInt(raw map[string]interface{}, key string) int {
	if raw == nil {
		return 0
	}
	switch v := raw[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if parsed, err := v.Int64(); err == nil {
			return int(parsed)
		}
	}
	return 0
}
