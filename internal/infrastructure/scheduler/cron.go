package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"ArticleHistoryBot/internal/ports"
)

// CronScheduler runs the merge job on a cron expression.
type CronScheduler struct {
	spec     string
	location *time.Location
	cron     *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler for the given cron expression and
// timezone.
func NewCronScheduler(spec string, location *time.Location) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	return &CronScheduler{spec: spec, location: location}
}

// Start registers the job and begins ticking; the job also runs once
// immediately. Stops when ctx is cancelled.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if c.cron != nil {
		return nil
	}

	runner := cron.New(cron.WithLocation(c.location))
	if _, err := runner.AddFunc(c.spec, func() { job(time.Now().In(c.location)) }); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", c.spec, err)
	}

	c.cron = runner
	job(time.Now().In(c.location))
	runner.Start()

	go func() {
		<-ctx.Done()
		runner.Stop()
	}()
	return nil
}

// Stop halts scheduling; a running job finishes first.
func (c *CronScheduler) Stop(context.Context) error {
	if c.cron == nil {
		return nil
	}
	<-c.cron.Stop().Done()
	c.cron = nil
	return nil
}
