// Package onboarding models the four-step affiliate onboarding flow:
// welcome, profile, share and first sale. The OnboardingSession aggregate is
// the single source of truth for a user's progress through those steps.
package onboarding

import (
	"sort"
	"time"
)

// Step is one of the sequential onboarding stages
type Step int

const (
	StepWelcome  Step = 1
	StepProfile  Step = 2
	StepShare    Step = 3
	StepSale     Step = 4
	StepFinished Step = 5
)

// Timing constants for transient UI state
const (
	// NotificationDuration is how long a points notification stays visible
	NotificationDuration = 1500 * time.Millisecond
	// ShareConfirmationDelay is how long the share confirmation is shown
	// before the flow advances to the sale step
	ShareConfirmationDelay = 1500 * time.Millisecond
	// PendingLease is how long an in-flight marker blocks re-invocation
	PendingLease = 30 * time.Second
)

// stepRewards is the immutable step -> points table
var stepRewards = map[Step]int{
	StepWelcome: 50,
	StepProfile: 100,
	StepShare:   75,
	StepSale:    200,
}

// RewardFor returns the points awarded for completing a step
func RewardFor(step Step) int {
	return stepRewards[step]
}

// RewardTable returns a copy of the step reward table
func RewardTable() map[Step]int {
	out := make(map[Step]int, len(stepRewards))
	for k, v := range stepRewards {
		out[k] = v
	}
	return out
}

// Steps lists the onboarding steps in order
func Steps() []Step {
	return []Step{StepWelcome, StepProfile, StepShare, StepSale}
}

// IsValid checks if the step is one of the four onboarding steps
func (s Step) IsValid() bool {
	return s >= StepWelcome && s <= StepSale
}

// String returns the state name of the step
func (s Step) String() string {
	switch s {
	case StepWelcome:
		return "WELCOME"
	case StepProfile:
		return "PROFILE"
	case StepShare:
		return "SHARE"
	case StepSale:
		return "SALE"
	case StepFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// StepSet is a set of steps kept sorted and free of duplicates
type StepSet []Step

// Contains reports whether the step is a member
func (s StepSet) Contains(step Step) bool {
	for _, v := range s {
		if v == step {
			return true
		}
	}
	return false
}

// Add returns the set with step included
func (s StepSet) Add(step Step) StepSet {
	if s.Contains(step) {
		return s
	}
	out := append(s, step)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Ints converts the set for serialization in responses
func (s StepSet) Ints() []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[i] = int(v)
	}
	return out
}
