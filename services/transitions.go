package services

import (
	"fmt"
	"slices"

	"github.com/anjiri1684/drive_tutor/models"
)

// TransitionTable maps a status to the statuses it may move to.
type TransitionTable[S ~string] map[S][]S

var PackageTransitions = TransitionTable[models.PackageStatus]{
	models.PackagePending:    {models.PackageConfirmed, models.PackageCancelled},
	models.PackageConfirmed:  {models.PackageInProgress, models.PackageCancelled},
	models.PackageInProgress: {models.PackageCompleted},
	models.PackageCompleted:  {},
	models.PackageCancelled:  {},
}

var LessonTransitions = TransitionTable[models.LessonStatus]{
	models.LessonProposed:  {models.LessonConfirmed, models.LessonCancelled},
	models.LessonConfirmed: {models.LessonDone, models.LessonCancelled},
	models.LessonDone:      {},
	models.LessonCancelled: {},
}

func (t TransitionTable[S]) CanTransition(from, to S) bool {
	return slices.Contains(t[from], to)
}

// Sources lists the statuses from which to is reachable in one step.
func (t TransitionTable[S]) Sources(to S) []S {
	var out []S
	for from, next := range t {
		if slices.Contains(next, to) {
			out = append(out, from)
		}
	}
	slices.Sort(out)
	return out
}

func (t TransitionTable[S]) Terminal(s S) bool {
	next, ok := t[s]
	return ok && len(next) == 0
}

// transition is the single guard every mutating operation goes through.
func transition[S ~string](t TransitionTable[S], current, requested S) error {
	if !t.CanTransition(current, requested) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, requested)
	}
	return nil
}
