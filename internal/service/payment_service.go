package service

import (
	"context"
	"strings"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/payment/cardpay"
	"github.com/storefront-next/internal/payment/netsqr"
)

// QRStatusEvent QR 轮询状态事件,终态事件后通道关闭
type QRStatusEvent struct {
	Status  string                 `json:"status"`
	Attempt int                    `json:"attempt"`
	Raw     map[string]interface{} `json:"raw,omitempty"`
	Err     error                  `json:"-"`
}

// Terminal 是否为终态事件
func (e QRStatusEvent) Terminal() bool {
	return e.Status == constants.QRPaymentStatusSuccess ||
		e.Status == constants.QRPaymentStatusFailed ||
		e.Err != nil
}

// PaymentService 支付网关服务
type PaymentService struct {
	cfg *config.Config

	// queryQR 可注入,测试时替换真实网关查询
	queryQR func(ctx context.Context, cfg *netsqr.Config, ref string) (*netsqr.QueryResult, error)
}

// NewPaymentService 创建支付网关服务
func NewPaymentService(cfg *config.Config) *PaymentService {
	return &PaymentService{
		cfg:     cfg,
		queryQR: netsqr.QueryStatus,
	}
}

// QRPaymentResult 发起 QR 支付返回
type QRPaymentResult struct {
	QRCode          string                 `json:"qr_code"`
	TxnRetrievalRef string                 `json:"txn_retrieval_ref"`
	Raw             map[string]interface{} `json:"raw,omitempty"`
}

func (s *PaymentService) netsConfig() *netsqr.Config {
	return &netsqr.Config{
		BaseURL:       s.cfg.Payment.NETSQR.BaseURL,
		APIKey:        s.cfg.Payment.NETSQR.APIKey,
		ProjectID:     s.cfg.Payment.NETSQR.ProjectID,
		MerchantTxnID: s.cfg.Payment.NETSQR.MerchantTxnID,
	}
}

func (s *PaymentService) cardConfig() *cardpay.Config {
	return &cardpay.Config{
		BaseURL:      s.cfg.Payment.CardPay.BaseURL,
		ClientID:     s.cfg.Payment.CardPay.ClientID,
		ClientSecret: s.cfg.Payment.CardPay.ClientSecret,
		Currency:     s.cfg.Payment.CardPay.Currency,
	}
}

// RequestQRPayment 向网关申请二维码
func (s *PaymentService) RequestQRPayment(ctx context.Context, amount string) (*QRPaymentResult, error) {
	if strings.TrimSpace(amount) == "" {
		return nil, ErrValidation
	}
	result, err := netsqr.RequestQR(ctx, s.netsConfig(), amount)
	if err != nil {
		logger.Errorw("payment_qr_request_failed", "amount", amount, "error", err)
		return nil, ErrGatewayError
	}
	logger.Infow("payment_qr_requested", "txn_retrieval_ref", result.TxnRetrievalRef, "amount", amount)
	return &QRPaymentResult{
		QRCode:          result.QRCode,
		TxnRetrievalRef: result.TxnRetrievalRef,
		Raw:             result.Raw,
	}, nil
}

// StreamQRStatus 轮询 QR 支付状态。每个间隔查询一次网关,状态事件写入
// 有界通道;到达终态、超过次数上限或 ctx 取消时结束并关闭通道。
func (s *PaymentService) StreamQRStatus(ctx context.Context, txnRetrievalRef string) <-chan QRStatusEvent {
	events := make(chan QRStatusEvent, 4)

	interval := time.Duration(s.cfg.Payment.NETSQR.PollSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	maxTries := s.cfg.Payment.NETSQR.PollMaxTries
	if maxTries <= 0 {
		maxTries = 60
	}
	gatewayCfg := s.netsConfig()

	go func() {
		defer close(events)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for attempt := 1; attempt <= maxTries; attempt++ {
			result, err := s.queryQR(ctx, gatewayCfg, txnRetrievalRef)
			event := QRStatusEvent{Attempt: attempt}
			if err != nil {
				event.Status = constants.QRPaymentStatusFailed
				event.Err = err
			} else {
				event.Status = string(result.Status)
				event.Raw = result.Raw
			}

			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
			if event.Terminal() {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}

		timeout := QRStatusEvent{
			Status:  constants.QRPaymentStatusFailed,
			Attempt: maxTries,
			Err:     ErrPaymentTimeout,
		}
		select {
		case events <- timeout:
		case <-ctx.Done():
		}
	}()

	return events
}

// CreateCardOrder 创建卡/钱包支付订单,返回网关订单号与跳转链接
func (s *PaymentService) CreateCardOrder(ctx context.Context, referenceID, amount string) (*cardpay.CreateResult, error) {
	if strings.TrimSpace(referenceID) == "" || strings.TrimSpace(amount) == "" {
		return nil, ErrValidation
	}
	result, err := cardpay.CreateOrder(ctx, s.cardConfig(), cardpay.CreateInput{
		ReferenceID: referenceID,
		Amount:      amount,
	})
	if err != nil {
		logger.Errorw("payment_card_create_failed", "reference_id", referenceID, "error", err)
		return nil, ErrGatewayError
	}
	logger.Infow("payment_card_created", "reference_id", referenceID, "gateway_order_id", result.OrderID)
	return result, nil
}

// CaptureCardOrder 捕获卡/钱包支付。未到 COMPLETED 终态视为支付未完成。
func (s *PaymentService) CaptureCardOrder(ctx context.Context, gatewayOrderID string) (*cardpay.CaptureResult, error) {
	if strings.TrimSpace(gatewayOrderID) == "" {
		return nil, ErrValidation
	}
	result, err := cardpay.CaptureOrder(ctx, s.cardConfig(), gatewayOrderID)
	if err != nil {
		logger.Errorw("payment_card_capture_failed", "gateway_order_id", gatewayOrderID, "error", err)
		return nil, ErrGatewayError
	}
	if !result.Completed() {
		logger.Warnw("payment_card_capture_incomplete",
			"gateway_order_id", gatewayOrderID,
			"status", result.Status,
		)
		return nil, ErrPaymentNotCompleted
	}
	logger.Infow("payment_card_captured",
		"gateway_order_id", gatewayOrderID,
		"capture_id", result.CaptureID,
		"amount", result.Amount,
	)
	return result, nil
}
