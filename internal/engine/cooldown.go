package engine

import (
	"slices"
	"time"

	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

// DispatchLog records when each rule last delivered a notification.
type DispatchLog interface {
	LastDispatch(rule string) (time.Time, bool)
	SetLastDispatch(rule string, at time.Time)
}

// Admission is the gate's verdict for one rule in one cycle.
type Admission struct {
	// Batches are the payloads to send, in order.
	Batches [][]domain.Candidate
	// Deferred candidates are left unrecorded so the next cycle classifies
	// them again.
	Deferred []domain.Candidate
	// Wait is the cooldown left when candidates were deferred.
	Wait time.Duration
}

// Gate enforces per-rule cooldowns and splits admitted candidates into
// payloads.
type Gate struct {
	log DispatchLog
}

// NewGate creates a Gate backed by the given dispatch log.
func NewGate(log DispatchLog) *Gate {
	return &Gate{log: log}
}

// Admit decides which candidates of rule may be sent at now. While the
// rule's cooldown is running everything is deferred. Otherwise batching
// rules get chunks of at most MaxBatchSize and other rules one payload per
// candidate.
func (g *Gate) Admit(rule *domain.Rule, candidates []domain.Candidate, now time.Time) Admission {
	if len(candidates) == 0 {
		return Admission{}
	}

	if last, ok := g.log.LastDispatch(rule.Name); ok && rule.Cooldown > 0 {
		if elapsed := now.Sub(last); elapsed < rule.Cooldown {
			return Admission{Deferred: candidates, Wait: rule.Cooldown - elapsed}
		}
	}

	size := 1
	if rule.Batch {
		size = max(rule.MaxBatchSize, 1)
	}

	batches := make([][]domain.Candidate, 0, (len(candidates)+size-1)/size)
	for chunk := range slices.Chunk(candidates, size) {
		batches = append(batches, chunk)
	}
	return Admission{Batches: batches}
}

// MarkDispatched starts the rule's cooldown. Call it only after a payload
// for the rule was delivered.
func (g *Gate) MarkDispatched(rule string, at time.Time) {
	g.log.SetLastDispatch(rule, at)
}
