package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"video-recommender/shared/logging"
	"video-recommender/shared/monitoring"
)

// Metrics defines the common interface for agent metrics
type Metrics interface {
	// GetSummary returns a human-readable summary of the run
	GetSummary() string
}

// AgentEvents provides callbacks for monitoring agent execution
type AgentEvents struct {
	OnSuccess         func(metrics Metrics, duration time.Duration)
	OnPartialFailure  func(err error, duration time.Duration)
	OnCriticalFailure func(err error, duration time.Duration)
}

// Agent defines the interface that all agents must implement
type Agent interface {
	Name() string
	RunOnce(ctx context.Context, events *AgentEvents) error
	Initialize() error
}

// Scheduler runs an agent on a cron schedule and feeds the outcome of each
// run to a Monitor.
type Scheduler struct {
	schedule string
	monitor  *monitoring.Monitor
	agent    Agent
	cron     *cron.Cron
}

func New(schedule string, agent Agent, monitor *monitoring.Monitor) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		monitor:  monitor,
		agent:    agent,
		// Prevent overlapping runs
		cron: cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Start runs the agent once immediately, then on every tick of the schedule
// until ctx is cancelled. With an empty schedule it only waits for ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.RunOnce(ctx); err != nil {
		logging.Error().Err(err).Str("agent", s.agent.Name()).Msg("Initial run failed")
	}
	return s.Schedule(ctx)
}

// Schedule runs the agent on every tick of the schedule until ctx is
// cancelled, without an initial run.
func (s *Scheduler) Schedule(ctx context.Context) error {
	if s.schedule == "" {
		logging.Info().Str("agent", s.agent.Name()).Msg("No schedule configured, skipping periodic runs")
		<-ctx.Done()
		return ctx.Err()
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			logging.Error().Err(err).Str("agent", s.agent.Name()).Msg("Scheduled run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	logging.Info().Str("agent", s.agent.Name()).Str("schedule", s.schedule).Msg("Scheduler started")
	s.cron.Start()

	<-ctx.Done()
	logging.Info().Str("agent", s.agent.Name()).Msg("Scheduler stopped")
	<-s.cron.Stop().Done()
	return ctx.Err()
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	startTime := time.Now()
	agentName := s.agent.Name()
	log := logging.With().Str("agent", agentName).Str("run_id", uuid.NewString()).Logger()

	log.Info().Msg("Starting run")

	events := &AgentEvents{
		OnSuccess: func(metrics Metrics, duration time.Duration) {
			log.Debug().Dur("duration", duration).Msg("Run finished")
			s.monitor.RecordSuccess(metrics.GetSummary(), duration)
		},
		OnPartialFailure: func(err error, duration time.Duration) {
			s.monitor.RecordPartialFailure(fmt.Errorf("%s partial failure: %w", agentName, err), duration)
		},
		OnCriticalFailure: func(err error, duration time.Duration) {
			s.monitor.RecordCriticalFailure(fmt.Errorf("%s critical failure: %w", agentName, err), duration)
		},
	}

	if err := s.agent.RunOnce(ctx, events); err != nil {
		duration := time.Since(startTime)
		s.monitor.RecordCriticalFailure(fmt.Errorf("%s failed: %w", agentName, err), duration)
		return fmt.Errorf("%s run failed: %w", agentName, err)
	}

	return nil
}
