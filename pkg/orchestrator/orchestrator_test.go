package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/plugpub/pkg/hooks"
	ocmocks "github.com/glorpus-work/plugpub/pkg/orchestrator/mocks"
	"github.com/glorpus-work/plugpub/pkg/platform"
	"github.com/glorpus-work/plugpub/pkg/publish"
	"github.com/glorpus-work/plugpub/pkg/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testArtifact() publish.BuildArtifact {
	return publish.BuildArtifact{
		SourcePath:     filepath.FromSlash("build/robotpy_sim_core.so"),
		LogicalName:    "robotpy_sim_core",
		TargetPlatform: platform.POSIX,
		DestinationDir: filepath.FromSlash("../Plugins"),
	}
}

// builtArtifact is testArtifact with a source file that exists.
func builtArtifact(t *testing.T) publish.BuildArtifact {
	t.Helper()
	artifact := testArtifact()
	artifact.SourcePath = filepath.Join(t.TempDir(), "robotpy_sim_core.so")
	require.NoError(t, os.WriteFile(artifact.SourcePath, []byte("\x7fELF"), 0o755))
	return artifact
}

func recordEvents(o *Orchestrator) *[]Event {
	var events []Event
	o.Events = Events{OnEvent: func(e Event) { events = append(events, e) }}
	return &events
}

func phases(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Phase)
	}
	return out
}

func TestPublish_FullFlow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	artifact := testArtifact()
	exports := []string{"load_robot", "robot_step"}
	destination := filepath.FromSlash("../Plugins/robotpy_sim_core.so")

	verifier := ocmocks.NewMockVerifier(ctrl)
	publisher := ocmocks.NewMockArtifactPublisher(ctrl)
	hookExec := ocmocks.NewMockHookExecutor(ctrl)

	gomock.InOrder(
		verifier.EXPECT().Verify(artifact.SourcePath, exports).Return(nil),
		publisher.EXPECT().Publish(gomock.Any(), artifact).Return(&publish.PublishResult{
			DestinationPath: destination,
			BytesCopied:     1024,
		}, nil),
		hookExec.EXPECT().ExecuteHook(gomock.Any(), "notify.tengo", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, hookCtx *hooks.HookContext) error {
				assert.Equal(t, hooks.PostPublish, hookCtx.HookType)
				assert.Equal(t, "robotpy_sim_core", hookCtx.LogicalName)
				assert.Equal(t, "posix", hookCtx.Platform)
				assert.Equal(t, destination, hookCtx.DestinationPath)
				assert.Equal(t, int64(1024), hookCtx.BytesCopied)
				return nil
			}),
	)

	orch := &Orchestrator{Verifier: verifier, Publisher: publisher, Hooks: hookExec}
	events := recordEvents(orch)

	res, err := orch.Publish(context.Background(), artifact, PublishOptions{
		VerifyExports: true,
		Exports:       exports,
		HookScript:    "notify.tengo",
	})
	require.NoError(t, err)
	assert.Equal(t, destination, res.DestinationPath)
	assert.Equal(t, []string{PhasePlanning, PhaseVerifying, PhasePublishing, PhaseHook, PhaseDone}, phases(*events))
}

func TestPublish_NoVerifyNoHook(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	artifact := testArtifact()
	publisher := ocmocks.NewMockArtifactPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), artifact).Return(&publish.PublishResult{DestinationPath: "x"}, nil).Times(1)

	// Verifier and hook executor must not be touched.
	orch := &Orchestrator{
		Verifier:  ocmocks.NewMockVerifier(ctrl),
		Publisher: publisher,
		Hooks:     ocmocks.NewMockHookExecutor(ctrl),
	}
	_, err := orch.Publish(context.Background(), artifact, PublishOptions{Exports: []string{"robot_step"}})
	require.NoError(t, err)
}

func TestPublish_DryRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	artifact := builtArtifact(t)
	orch := &Orchestrator{
		Publisher: ocmocks.NewMockArtifactPublisher(ctrl),
		Hooks:     ocmocks.NewMockHookExecutor(ctrl),
	}
	events := recordEvents(orch)

	res, err := orch.Publish(context.Background(), artifact, PublishOptions{DryRun: true, HookScript: "notify.tengo"})
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("../Plugins/robotpy_sim_core.so"), res.DestinationPath)
	assert.Zero(t, res.BytesCopied)
	require.Len(t, *events, 2)
	assert.Equal(t, Event{Phase: PhaseDone, Msg: "dry-run"}, (*events)[1])
}

func TestPublish_DryRunWithoutPublisher(t *testing.T) {
	orch := &Orchestrator{}
	res, err := orch.Publish(context.Background(), builtArtifact(t), PublishOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("../Plugins/robotpy_sim_core.so"), res.DestinationPath)
}

func TestPublish_DryRunMissingSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	artifact := testArtifact()
	artifact.SourcePath = filepath.Join(t.TempDir(), "missing.so")
	orch := &Orchestrator{Publisher: ocmocks.NewMockArtifactPublisher(ctrl)}
	events := recordEvents(orch)

	res, err := orch.Publish(context.Background(), artifact, PublishOptions{DryRun: true})
	assert.Nil(t, res)
	var notFound *publish.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, artifact.SourcePath, notFound.Path)
	assert.Equal(t, []string{PhasePlanning, PhaseError}, phases(*events))
}

func TestPublish_InvalidNameBeforeVerify(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	artifact := testArtifact()
	artifact.LogicalName = "bad/name"

	orch := &Orchestrator{
		Verifier:  ocmocks.NewMockVerifier(ctrl),
		Publisher: ocmocks.NewMockArtifactPublisher(ctrl),
	}
	events := recordEvents(orch)

	_, err := orch.Publish(context.Background(), artifact, PublishOptions{VerifyExports: true, Exports: []string{"robot_step"}})
	assert.ErrorIs(t, err, publish.ErrInvalidName)
	assert.Equal(t, []string{PhaseError}, phases(*events))
}

func TestPublish_MissingExportsStopsPublish(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	artifact := testArtifact()
	verifier := ocmocks.NewMockVerifier(ctrl)
	verifier.EXPECT().Verify(artifact.SourcePath, gomock.Any()).Return(&symbols.MissingExportsError{
		Path:    artifact.SourcePath,
		Missing: []string{"robot_step"},
	})

	orch := &Orchestrator{Verifier: verifier, Publisher: ocmocks.NewMockArtifactPublisher(ctrl)}
	_, err := orch.Publish(context.Background(), artifact, PublishOptions{VerifyExports: true, Exports: []string{"robot_step"}})
	assert.ErrorIs(t, err, symbols.ErrMissingExports)
}

func TestPublish_VerifyMissingSourceIsNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	artifact := testArtifact()
	verifier := ocmocks.NewMockVerifier(ctrl)
	verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(
		&os.PathError{Op: "open", Path: artifact.SourcePath, Err: os.ErrNotExist})

	orch := &Orchestrator{Verifier: verifier, Publisher: ocmocks.NewMockArtifactPublisher(ctrl)}
	_, err := orch.Publish(context.Background(), artifact, PublishOptions{VerifyExports: true, Exports: []string{"robot_step"}})
	assert.ErrorIs(t, err, publish.ErrNotFound)
}

func TestPublish_VerifyWithoutVerifier(t *testing.T) {
	orch := &Orchestrator{}
	_, err := orch.Publish(context.Background(), testArtifact(), PublishOptions{VerifyExports: true, DryRun: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verifier is not configured")
}

func TestPublish_PublisherError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	artifact := testArtifact()
	copyErr := publish.NewCopyError(artifact.SourcePath, "dest", errors.New("disk full"))
	publisher := ocmocks.NewMockArtifactPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), artifact).Return(nil, copyErr)

	orch := &Orchestrator{Publisher: publisher, Hooks: ocmocks.NewMockHookExecutor(ctrl)}
	events := recordEvents(orch)

	res, err := orch.Publish(context.Background(), artifact, PublishOptions{HookScript: "notify.tengo"})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, publish.ErrCopy)
	last := (*events)[len(*events)-1]
	assert.Equal(t, PhaseError, last.Phase)
	assert.Contains(t, last.Msg, "disk full")
}

func TestPublish_HookFailureKeepsResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	artifact := testArtifact()
	result := &publish.PublishResult{DestinationPath: "../Plugins/robotpy_sim_core.so", BytesCopied: 10}

	publisher := ocmocks.NewMockArtifactPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), artifact).Return(result, nil)
	hookExec := ocmocks.NewMockHookExecutor(ctrl)
	hookExec.EXPECT().ExecuteHook(gomock.Any(), "notify.tengo", gomock.Any()).
		Return(fmt.Errorf("%w: plugin rejected", hooks.ErrHookScript))

	orch := &Orchestrator{Publisher: publisher, Hooks: hookExec}
	res, err := orch.Publish(context.Background(), artifact, PublishOptions{HookScript: "notify.tengo"})
	require.Error(t, err)
	assert.ErrorIs(t, err, hooks.ErrHookScript)
	assert.Contains(t, err.Error(), "published ../Plugins/robotpy_sim_core.so")
	assert.Same(t, result, res)
}

func TestPublish_HookWithoutExecutor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	publisher := ocmocks.NewMockArtifactPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(&publish.PublishResult{DestinationPath: "x"}, nil)

	orch := &Orchestrator{Publisher: publisher}
	res, err := orch.Publish(context.Background(), testArtifact(), PublishOptions{HookScript: "notify.tengo"})
	require.Error(t, err)
	assert.NotNil(t, res)
}

func TestPublish_NoPublisher(t *testing.T) {
	orch := &Orchestrator{}
	_, err := orch.Publish(context.Background(), testArtifact(), PublishOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publisher is not configured")
}

func TestPublish_EndToEnd(t *testing.T) {
	root := t.TempDir()
	buildDir := filepath.Join(root, "build")
	require.NoError(t, os.Mkdir(buildDir, 0o755))
	source := filepath.Join(buildDir, "robotpy_sim_core.so")
	require.NoError(t, os.WriteFile(source, []byte("shared library bytes"), 0o644))

	hookPath := filepath.Join(root, "notify.tengo")
	require.NoError(t, os.WriteFile(hookPath, []byte(`
ctx := import("context")
err := ""
if ctx.bytes_copied != 20 {
	err = "unexpected size"
}
`), 0o644))

	orch := &Orchestrator{
		Verifier:  symbols.NewVerifier(),
		Publisher: publish.NewPublisher(),
		Hooks:     hooks.NewHookExecutor(),
	}
	artifact := publish.BuildArtifact{
		SourcePath:     source,
		LogicalName:    "robotpy_sim_core",
		TargetPlatform: platform.POSIX,
		DestinationDir: filepath.Join(root, "Plugins"),
	}

	res, err := orch.Publish(context.Background(), artifact, PublishOptions{HookScript: hookPath})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Plugins", "robotpy_sim_core.so"), res.DestinationPath)
	assert.Equal(t, int64(20), res.BytesCopied)

	content, err := os.ReadFile(res.DestinationPath)
	require.NoError(t, err)
	assert.Equal(t, "shared library bytes", string(content))
}
