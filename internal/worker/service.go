package worker

import (
	"context"
	"errors"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	autoConfirmInterval = time.Hour
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
	client   *queue.Client
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer, client *queue.Client) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
		client:   client,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.client.Enabled() {
		go s.runAutoConfirmLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runAutoConfirmLoop 周期性投递自动确认收货巡检任务
func (s *Service) runAutoConfirmLoop(ctx context.Context) {
	runOnce := func() {
		payload := queue.OrderAutoConfirmPayload{RequestedAt: time.Now().Unix()}
		if err := s.client.EnqueueOrderAutoConfirm(payload); err != nil {
			logger.Warnw("worker_auto_confirm_enqueue_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(autoConfirmInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
