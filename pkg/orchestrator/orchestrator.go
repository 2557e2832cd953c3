// Package orchestrator drives one publish from export verification through the
// post-publish hook.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/glorpus-work/plugpub/pkg/hooks"
	"github.com/glorpus-work/plugpub/pkg/publish"
)

func emit(e Events, ev Event) {
	if e.OnEvent != nil {
		e.OnEvent(ev)
	}
}

// Publish verifies, publishes and runs the post-publish hook for artifact.
// In dry-run mode nothing is written and the result carries the destination
// the artifact would be published to; the source must still exist.
// If the hook fails the artifact stays published and the result is returned
// together with the error.
func (o *Orchestrator) Publish(ctx context.Context, artifact publish.BuildArtifact, opts PublishOptions) (*publish.PublishResult, error) {
	res, err := o.publish(ctx, artifact, opts)
	if err != nil {
		emit(o.Events, Event{Phase: PhaseError, Msg: err.Error()})
	}
	return res, err
}

func (o *Orchestrator) publish(ctx context.Context, artifact publish.BuildArtifact, opts PublishOptions) (*publish.PublishResult, error) {
	if o.Publisher == nil && !opts.DryRun {
		return nil, fmt.Errorf("publisher is not configured")
	}

	destination, err := publish.DestinationPath(artifact.LogicalName, artifact.TargetPlatform, artifact.DestinationDir)
	if err != nil {
		return nil, err
	}
	emit(o.Events, Event{Phase: PhasePlanning, Msg: artifact.SourcePath + " -> " + destination})

	if opts.VerifyExports {
		if err := o.verify(artifact, opts.Exports); err != nil {
			return nil, err
		}
	}

	if opts.DryRun {
		if err := publish.CheckSource(artifact.SourcePath); err != nil {
			return nil, err
		}
		emit(o.Events, Event{Phase: PhaseDone, Msg: "dry-run"})
		return &publish.PublishResult{DestinationPath: destination}, nil
	}

	emit(o.Events, Event{Phase: PhasePublishing, Msg: destination})
	res, err := o.Publisher.Publish(ctx, artifact)
	if err != nil {
		return nil, err
	}

	if opts.HookScript != "" {
		if err := o.runHook(ctx, artifact, res, opts.HookScript); err != nil {
			return res, fmt.Errorf("published %s but post-publish hook failed: %w", res.DestinationPath, err)
		}
	}

	emit(o.Events, Event{Phase: PhaseDone, Msg: res.DestinationPath})
	return res, nil
}

func (o *Orchestrator) verify(artifact publish.BuildArtifact, exports []string) error {
	if o.Verifier == nil {
		return fmt.Errorf("export verifier is not configured")
	}
	if len(exports) == 0 {
		return nil
	}
	emit(o.Events, Event{Phase: PhaseVerifying, Msg: fmt.Sprintf("%d exports in %s", len(exports), artifact.SourcePath)})

	if err := o.Verifier.Verify(artifact.SourcePath, exports); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return publish.NewNotFoundError(artifact.SourcePath, err)
		}
		return err
	}
	return nil
}

func (o *Orchestrator) runHook(ctx context.Context, artifact publish.BuildArtifact, res *publish.PublishResult, hookPath string) error {
	if o.Hooks == nil {
		return fmt.Errorf("hook executor is not configured")
	}
	emit(o.Events, Event{Phase: PhaseHook, Msg: hookPath})

	return o.Hooks.ExecuteHook(ctx, hookPath, &hooks.HookContext{
		HookType:        hooks.PostPublish,
		LogicalName:     artifact.LogicalName,
		Platform:        artifact.TargetPlatform.String(),
		SourcePath:      artifact.SourcePath,
		DestinationPath: res.DestinationPath,
		BytesCopied:     res.BytesCopied,
	})
}
