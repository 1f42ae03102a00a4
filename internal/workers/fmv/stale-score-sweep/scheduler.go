// internal/workers/fmv/stale-score-sweep/scheduler.go
package stalescoresweep

import (
	"context"
	"fmt"

	"chatnil-workers/internal/common/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a Sweeper on its cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron    *cron.Cron
	sweeper *Sweeper
	config  *Config
	logger  logger.Logger
	entryID cron.EntryID
}

func NewScheduler(config *Config, sweeper *Sweeper, log logger.Logger) (*Scheduler, error) {
	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	s := &Scheduler{cron: c, sweeper: sweeper, config: config, logger: log}
	id, err := c.AddFunc(config.Schedule, s.runOnce)
	if err != nil {
		return nil, fmt.Errorf("invalid stale sweep schedule %q: %w", config.Schedule, err)
	}
	s.entryID = id
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("stale score sweep scheduled", map[string]interface{}{
		"schedule": s.config.Schedule,
		"next":     s.cron.Entry(s.entryID).Next,
	})
}

// Stop halts scheduling and returns a context that is done once a running
// sweep completes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	if _, err := s.sweeper.Run(ctx); err != nil {
		s.logger.Error("stale score sweep failed", map[string]interface{}{
			"error": err,
		})
	}
}

// cronLogger adapts logger.Logger to cron's key/value logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, kvFields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kvFields(keysAndValues)
	fields["error"] = err
	l.log.Error(msg, fields)
}

func kvFields(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields[key] = kv[i+1]
	}
	return fields
}
