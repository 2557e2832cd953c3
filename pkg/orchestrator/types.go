//go:generate mockgen -destination=./mocks/orchestrator.go . Verifier,ArtifactPublisher,HookExecutor

package orchestrator

import (
	"context"

	"github.com/glorpus-work/plugpub/pkg/hooks"
	"github.com/glorpus-work/plugpub/pkg/publish"
)

// Verifier checks that a library exports the symbols a host binds to.
type Verifier interface {
	Verify(path string, required []string) error
}

// ArtifactPublisher is the subset of the publisher used by the orchestrator.
type ArtifactPublisher interface {
	Publish(ctx context.Context, artifact publish.BuildArtifact) (*publish.PublishResult, error)
}

// HookExecutor runs hook scripts.
type HookExecutor interface {
	ExecuteHook(ctx context.Context, hookPath string, hookCtx *hooks.HookContext) error
}

// Orchestrator ties export verification, publishing and post-publish hooks together.
type Orchestrator struct {
	Verifier  Verifier
	Publisher ArtifactPublisher
	Hooks     HookExecutor
	Events    Events // Callbacks for progress notifications
}

// Phases reported through Event.Phase.
const (
	PhasePlanning   = "planning"
	PhaseVerifying  = "verifying"
	PhasePublishing = "publishing"
	PhaseHook       = "hook"
	PhaseDone       = "done"
	PhaseError      = "error"
)

// Event represents a simple progress notification.
type Event struct {
	Phase string
	Msg   string
}

// Events carries callbacks for progress events.
type Events struct {
	OnEvent func(Event)
}

// PublishOptions control a single orchestrated publish.
type PublishOptions struct {
	VerifyExports bool
	Exports       []string
	HookScript    string // Post-publish hook, empty for none
	DryRun        bool
}
