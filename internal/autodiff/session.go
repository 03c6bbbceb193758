package autodiff

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// Session scopes one evaluation of a graph.
//
// Node caches are keyed by the session identifier: the first access from a
// new session discards whatever a node remembered from the previous one.
// A Session is not safe for concurrent use, and neither are the nodes it
// evaluates.
type Session struct {
	id       uuid.UUID
	training bool
	rng      *rand.Rand
}

// NewSession creates a session with a fresh identifier.
// Dropout nodes are only active in training sessions.
func NewSession(training bool) *Session {
	return &Session{id: uuid.New(), training: training}
}

// NewSessionWithRand creates a session that draws dropout gates from rng.
// Passing a nil rng is equivalent to NewSession.
func NewSessionWithRand(training bool, rng *rand.Rand) *Session {
	return &Session{id: uuid.New(), training: training, rng: rng}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Training reports whether the session is a training session.
func (s *Session) Training() bool {
	return s.training
}

// Float64 returns a uniform draw in [0, 1).
func (s *Session) Float64() float64 {
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s.rng.Float64()
}
