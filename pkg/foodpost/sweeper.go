package foodpost

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically runs the expiry sweep. It is optional: the lifecycle
// works without it because the donor dashboard sweeps on read, but a
// schedule keeps listings fresh for browsers who never open a dashboard.
type Sweeper struct {
	cron    *cron.Cron
	service FoodPostService
}

// NewSweeper builds a sweeper for the given cron expression. Returns nil
// when the schedule is empty, which disables the job entirely.
func NewSweeper(schedule string, service FoodPostService) (*Sweeper, error) {
	if schedule == "" {
		return nil, nil
	}

	s := &Sweeper{cron: cron.New(), service: service}
	_, err := s.cron.AddFunc(schedule, func() {
		expired, err := s.service.SweepExpired(context.Background())
		if err != nil {
			log.Printf("scheduled expiry sweep failed: %v", err)
			return
		}
		if expired > 0 {
			log.Printf("scheduled expiry sweep marked %d posts expired", expired)
		}
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}
