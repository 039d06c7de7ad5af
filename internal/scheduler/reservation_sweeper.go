package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/umichkisa/pocha-backend/pkg/logger"
)

// ReservationReleaser 만료된 재고 예약 해제
type ReservationReleaser interface {
	ReleaseExpiredReservations(reservedBefore time.Time) (int, error)
}

// ReservationSweeper returns stock held by carts that reserved but never
// reported a payment result within the TTL.
type ReservationSweeper struct {
	cron     *cron.Cron
	releaser ReservationReleaser
	ttl      time.Duration
	schedule string
	now      func() time.Time
}

// NewReservationSweeper 예약 정리 스케줄러 생성
func NewReservationSweeper(releaser ReservationReleaser, ttl time.Duration, schedule string) *ReservationSweeper {
	return &ReservationSweeper{
		cron:     cron.New(),
		releaser: releaser,
		ttl:      ttl,
		schedule: schedule,
		now:      time.Now,
	}
}

// Start 스케줄러 시작
func (s *ReservationSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.Sweep() }); err != nil {
		logger.Error("Failed to add cron job for reservation sweep", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Reservation sweeper started", map[string]interface{}{
		"schedule": s.schedule,
		"ttl":      s.ttl.String(),
	})
	return nil
}

// Sweep runs one pass and returns the number of released carts
func (s *ReservationSweeper) Sweep() int {
	cutoff := s.now().Add(-s.ttl)
	released, err := s.releaser.ReleaseExpiredReservations(cutoff)
	if err != nil {
		logger.Error("Reservation sweep failed", err, map[string]interface{}{
			"cutoff": cutoff,
		})
	}
	if released > 0 {
		logger.Info("Reservation sweep finished", map[string]interface{}{
			"released": released,
		})
	}
	return released
}

// Stop 스케줄러 중지. 실행 중인 작업은 끝까지 기다림
func (s *ReservationSweeper) Stop() {
	logger.Info("Stopping reservation sweeper...")
	<-s.cron.Stop().Done()
	logger.Info("Reservation sweeper stopped")
}
