// Package expiry runs the background sweep that marks cards whose expiration
// date has passed as EXPIRED.
package expiry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/avoronov/bankcards/internal/config"
	"github.com/avoronov/bankcards/internal/domain"
)

const sweepLimit = 1000

var sweepingCards sync.Map

type CardRepo interface {
	FindExpired(ctx context.Context, before time.Time, limit int) ([]domain.Card, error)
	UpdateStatus(ctx context.Context, id int64, status domain.CardStatus) (*domain.Card, error)
}

type Service struct {
	cardRepo      CardRepo
	workerPool    WorkerPoolI
	sweepInterval time.Duration
}

func New(cfg *config.Config, cardRepo CardRepo) *Service {
	return &Service{
		cardRepo:      cardRepo,
		workerPool:    NewWorkerPool(10),
		sweepInterval: cfg.SweepInterval,
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("Expiry sweep started", zap.Duration("interval", s.sweepInterval))
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping expiry sweep")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	cards, err := s.cardRepo.FindExpired(ctx, time.Now().UTC(), sweepLimit)
	if err != nil {
		zap.L().Error("Failed to fetch expired cards", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, card := range cards {
		card := card

		if _, loaded := sweepingCards.LoadOrStore(card.ID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer sweepingCards.Delete(card.ID)
				return s.expireCard(ctx, card)
			})
			if err != nil {
				sweepingCards.Delete(card.ID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Error sweeping expired cards", zap.Error(err))
	}
}

func (s *Service) expireCard(ctx context.Context, card domain.Card) error {
	updated, err := s.cardRepo.UpdateStatus(ctx, card.ID, domain.CardStatusExpired)
	if err != nil {
		return fmt.Errorf("failed to expire card %d: %w", card.ID, err)
	}
	if updated == nil {
		zap.L().Warn("Card vanished before expiry sweep reached it", zap.Int64("cardID", card.ID))
		return nil
	}
	zap.L().Info("Card expired",
		zap.Int64("cardID", card.ID),
		zap.Time("expiration", card.Expiration))
	return nil
}
