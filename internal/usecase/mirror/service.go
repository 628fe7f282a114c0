package mirror

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bankeu-backend/internal/domain/mirrorjob"
	"bankeu-backend/internal/domain/proposal"
	"bankeu-backend/internal/domain/uow"
	"bankeu-backend/internal/domain/workflowerr"
	"bankeu-backend/internal/infrastructure/filestore"
	"bankeu-backend/internal/infrastructure/logging"
	"bankeu-backend/internal/infrastructure/metrics"
	"bankeu-backend/pkg/id"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
)

// Outcome of one attempt to process a mirror job.
type Outcome string

const (
	OutcomeDone    Outcome = "ok"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
	OutcomeNoop    Outcome = "noop"
)

type Config struct {
	// Timeout bounds one copy, retries included.
	Timeout time.Duration
	// CopyAttempts is the in-call retry budget for a single copy.
	CopyAttempts int
	// MaxAttempts is how many times a job is processed before it is marked failed.
	MaxAttempts int
	BatchSize   int
}

func DefaultConfig() Config {
	return Config{Timeout: 5 * time.Second, CopyAttempts: 3, MaxAttempts: 5, BatchSize: 50}
}

// Service copies working files into the reference store and records the
// result on the proposal.
type Service struct {
	working   filestore.Store
	reference filestore.Store
	uow       uow.UnitOfWork
	metrics   *metrics.Metrics
	cfg       Config
	retrier   retry.Retry[int]
	breaker   circuitbreaker.CircuitBreaker[int]
	now       func() time.Time
}

func NewService(working, reference filestore.Store, tx uow.UnitOfWork, m *metrics.Metrics, cfg Config) *Service {
	d := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	if cfg.CopyAttempts <= 0 {
		cfg.CopyAttempts = d.CopyAttempts
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = d.MaxAttempts
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = d.BatchSize
	}
	return &Service{
		working:   working,
		reference: reference,
		uow:       tx,
		metrics:   m,
		cfg:       cfg,
		retrier: retry.New[int](retry.Config{
			MaxAttempts:   cfg.CopyAttempts,
			InitialDelay:  50 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    2.0,
			// a missing source file will not appear by retrying
			NonRetryableErrors: []error{filestore.ErrNotFound, filestore.ErrInvalidName},
		}),
		breaker: circuitbreaker.New[int](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(c circuitbreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
		}),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// NewJob builds the outbox row for p. It must be created in the same
// transaction as the department approval.
func NewJob(p *proposal.Proposal) *mirrorjob.Job {
	return &mirrorjob.Job{
		JobID:      id.NewID32(),
		ProposalID: p.ProposalID,
		FileName:   p.WorkingFile,
		Status:     mirrorjob.StatusPending,
	}
}

// Copy mirrors one working file into the reference store under the same
// name. Running it twice yields the same bytes.
func (s *Service) Copy(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	_, err := s.breaker.Execute(ctx, func(ctx context.Context) (int, error) {
		return s.retrier.Do(ctx, func(ctx context.Context) (int, error) {
			data, err := s.working.Read(ctx, name)
			if err != nil {
				return 0, err
			}
			if err := s.reference.Write(ctx, name, data); err != nil {
				return 0, err
			}
			return len(data), nil
		})
	})
	s.metrics.ObserveMirror(time.Since(start))
	return err
}

// Process runs one job. Failures never propagate: they are logged,
// counted, and left on the job for the drainer.
func (s *Service) Process(ctx context.Context, jobID string) Outcome {
	ctx = context.WithoutCancel(ctx)
	log := logging.Get()

	var job *mirrorjob.Job
	var current *proposal.Proposal
	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		j, err := r.MirrorJobs.GetByJobID(ctx, jobID)
		if err != nil {
			return err
		}
		job = j
		if j.Status != mirrorjob.StatusPending {
			return nil
		}
		current, err = r.Proposals.GetByProposalID(ctx, j.ProposalID)
		if errors.Is(err, proposal.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		log.Warn().Str("job_id", jobID).Err(err).Msg("mirror: load job failed")
		s.metrics.IncMirror(string(OutcomeFailed))
		return OutcomeFailed
	}
	if job.Status != mirrorjob.StatusPending {
		return OutcomeNoop
	}
	if !stillEligible(current, job) {
		return s.skip(ctx, job)
	}

	if err := s.Copy(ctx, job.FileName); err != nil {
		return s.fail(ctx, job, err)
	}

	outcome := OutcomeDone
	finished := *job
	err = s.uow.WithinProposalTx(ctx, job.ProposalID, func(r uow.Repos, p *proposal.Proposal) error {
		at := s.now()
		// re-checked under the row lock: a return or re-upload may have
		// committed while the copy ran
		if !stillEligible(p, job) {
			outcome = OutcomeSkipped
			finished.Status = mirrorjob.StatusSkipped
		} else {
			if err := r.Proposals.SetReference(ctx, p.ID, job.FileName, at); err != nil {
				return err
			}
			finished.Status = mirrorjob.StatusDone
		}
		finished.Attempts++
		finished.LastError = ""
		finished.CompletedAt = &at
		return r.MirrorJobs.Save(ctx, &finished)
	})
	if err != nil {
		return s.fail(ctx, job, err)
	}

	s.metrics.IncMirror(string(outcome))
	log.Info().Str("job_id", job.JobID).Str("proposal_id", job.ProposalID).
		Str("file", job.FileName).Str("outcome", string(outcome)).Msg("mirror: job processed")
	return outcome
}

// stillEligible: the department approval still stands and the working file
// has not been replaced since the job was written.
func stillEligible(p *proposal.Proposal, j *mirrorjob.Job) bool {
	return p != nil &&
		p.DepartmentStatus == proposal.TrackApproved &&
		p.WorkingFile == j.FileName
}

func (s *Service) skip(ctx context.Context, job *mirrorjob.Job) Outcome {
	at := s.now()
	job.Status = mirrorjob.StatusSkipped
	job.CompletedAt = &at
	if err := s.uow.WithinTx(ctx, func(r uow.Repos) error { return r.MirrorJobs.Save(ctx, job) }); err != nil {
		logging.Get().Warn().Str("job_id", job.JobID).Err(err).Msg("mirror: save skipped job failed")
	}
	s.metrics.IncMirror(string(OutcomeSkipped))
	return OutcomeSkipped
}

func (s *Service) fail(ctx context.Context, job *mirrorjob.Job, cause error) Outcome {
	sideEffect := workflowerr.New(workflowerr.KindSideEffect, cause, "reference mirror")
	job.Attempts++
	job.LastError = sideEffect.Error()
	if job.Attempts >= s.cfg.MaxAttempts {
		job.Status = mirrorjob.StatusFailed
	}
	if err := s.uow.WithinTx(ctx, func(r uow.Repos) error { return r.MirrorJobs.Save(ctx, job) }); err != nil {
		logging.Get().Warn().Str("job_id", job.JobID).Err(err).Msg("mirror: save failed job failed")
	}
	s.metrics.IncMirror(string(OutcomeFailed))
	logging.Get().Warn().
		Str("job_id", job.JobID).
		Str("proposal_id", job.ProposalID).
		Str("file", job.FileName).
		Int("attempts", job.Attempts).
		Err(sideEffect).
		Msg("mirror: copy failed, approval kept")
	return OutcomeFailed
}

// DrainResult counts what one drain pass did.
type DrainResult struct {
	Processed int `json:"processed"`
	Done      int `json:"done"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Drain processes pending jobs, oldest first, until none are left or the
// batch is used up.
func (s *Service) Drain(ctx context.Context) (DrainResult, error) {
	var res DrainResult
	var jobs []*mirrorjob.Job
	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		jobs, err = r.MirrorJobs.ListPending(ctx, s.cfg.MaxAttempts, s.cfg.BatchSize)
		return err
	})
	if err != nil {
		return res, fmt.Errorf("mirror: list pending: %w", err)
	}
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Processed++
		switch s.Process(ctx, j.JobID) {
		case OutcomeDone:
			res.Done++
		case OutcomeFailed:
			res.Failed++
		case OutcomeSkipped:
			res.Skipped++
		}
	}
	return res, nil
}
