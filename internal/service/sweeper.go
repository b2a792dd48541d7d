package service

import (
	"context"
	"time"

	"dacsanviet/internal/repository"

	"github.com/sirupsen/logrus"
)

// Sweeper is the background maintenance loop: on a fixed interval it deletes
// expired or stale one-time codes and expired or revoked sessions. It runs on
// its own pool connections and never blocks request traffic.
type Sweeper struct {
	otps     repository.OTPRepository
	sessions repository.SessionRepository
	clock    Clock
	interval time.Duration
	log      *logrus.Logger
}

func NewSweeper(
	otps repository.OTPRepository,
	sessions repository.SessionRepository,
	clock Clock,
	interval time.Duration,
	log *logrus.Logger,
) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		otps:     otps,
		sessions: sessions,
		clock:    clock,
		interval: interval,
		log:      log,
	}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) {
	now := s.clock.Now()

	otpCount, err := s.otps.SweepExpired(ctx, now)
	if err != nil {
		s.log.WithError(err).Error("otp sweep failed")
	}
	sessionCount, err := s.sessions.SweepExpired(ctx, now)
	if err != nil {
		s.log.WithError(err).Error("session sweep failed")
	}

	s.log.WithFields(logrus.Fields{
		"otp_codes": otpCount,
		"sessions":  sessionCount,
	}).Info("sweep completed")
}
