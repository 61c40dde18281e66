// Package session coordinates repeated solves of a changing problem so that only
// the most recent request's result is ever committed.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rgehrsitz/glidepath/internal/calculation"
	"github.com/rgehrsitz/glidepath/internal/domain"
)

// ErrSuperseded is returned to a request that a newer request replaced.
var ErrSuperseded = errors.New("solve superseded by a newer request")

// Solver is the pipeline a Session drives. *calculation.CalculationEngine implements it.
type Solver interface {
	Solve(ctx context.Context, p *domain.Problem) (*calculation.Result, error)
}

// Outcome is a committed solve.
type Outcome struct {
	RequestID  string
	Generation uint64
	Result     *calculation.Result
}

// Reply is delivered by Submit.
type Reply struct {
	Outcome *Outcome
	Err     error
}

// Session runs solves last-request-wins: starting a request cancels the one in
// flight, and a request that finishes after a newer one started is discarded.
type Session struct {
	solver Solver
	logger calculation.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	latest     *Outcome
}

// New creates a session around solver.
func New(solver Solver) *Session {
	return &Session{solver: solver, logger: calculation.NopLogger{}}
}

// SetLogger sets the logger. nil restores the no-op logger.
func (s *Session) SetLogger(l calculation.Logger) {
	if l == nil {
		l = calculation.NopLogger{}
	}
	s.mu.Lock()
	s.logger = l
	s.mu.Unlock()
}

// Solve supersedes any in-flight request and solves p. It returns ErrSuperseded,
// leaving Latest unchanged, if another request starts before this one finishes.
func (s *Session) Solve(ctx context.Context, p *domain.Problem) (*Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	id := uuid.NewString()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	s.cancel = cancel
	logger := s.logger
	s.mu.Unlock()

	logger.Debugf("request %s (generation %d) started", id, gen)
	result, err := s.solver.Solve(ctx, p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		logger.Debugf("request %s (generation %d) discarded, generation %d is current", id, gen, s.generation)
		return nil, ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		return nil, err
	}
	s.latest = &Outcome{RequestID: id, Generation: gen, Result: result}
	return s.latest, nil
}

// Submit starts Solve on its own goroutine and delivers the reply on the returned channel.
func (s *Session) Submit(ctx context.Context, p *domain.Problem) <-chan Reply {
	ch := make(chan Reply, 1)
	go func() {
		out, err := s.Solve(ctx, p)
		ch <- Reply{Outcome: out, Err: err}
	}()
	return ch
}

// Latest returns the most recently committed outcome, or nil.
func (s *Session) Latest() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Cancel supersedes the in-flight request, if any, without starting a new one.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
}
