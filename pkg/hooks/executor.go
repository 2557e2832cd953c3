// Package hooks runs Tengo scripts at fixed points of the publish flow.
package hooks

import (
	"context"
	"fmt"
	"os"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/glorpus-work/plugpub/internal/logger"
	"github.com/glorpus-work/plugpub/pkg/errors"
)

// HookExecutor manages the execution of Tengo script hooks.
type HookExecutor interface {
	ExecuteHook(ctx context.Context, hookPath string, hookCtx *HookContext) error
}

// TengoExecutor is the default implementation of HookExecutor.
type TengoExecutor struct{}

// NewHookExecutor creates a new hook executor instance.
func NewHookExecutor() *TengoExecutor {
	return &TengoExecutor{}
}

// ExecuteHook executes the Tengo script at hookPath with the provided context.
// A script reports failure by assigning a non-empty string or an error value
// to a global named err.
func (e *TengoExecutor) ExecuteHook(ctx context.Context, hookPath string, hookCtx *HookContext) error {
	if hookCtx == nil {
		return errors.Wrap(ErrHookExecution, "hook context is nil")
	}
	if hookCtx.HookType == "" {
		return ErrHookTypeEmpty
	}

	scriptContent, err := os.ReadFile(hookPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrHookLoad, hookPath, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	logger.Debug("Executing hook script", logger.Fields{
		"hook_path":   hookPath,
		"hook_type":   string(hookCtx.HookType),
		"plugin":      hookCtx.LogicalName,
		"destination": hookCtx.DestinationPath,
	})

	moduleMap := stdlib.GetModuleMap(stdlib.AllModuleNames()...)
	setupScriptContext(moduleMap, hookCtx)

	script := tengo.NewScript(scriptContent)
	script.SetImports(moduleMap)

	compiled, err := script.RunContext(ctx)
	if err != nil {
		return fmt.Errorf("%s hook %s: %w: %w", hookCtx.HookType, hookPath, ErrHookExecution, err)
	}

	if msg := scriptError(compiled); msg != "" {
		return fmt.Errorf("%s hook %s: %w: %s", hookCtx.HookType, hookPath, ErrHookScript, msg)
	}

	logger.Debug("Hook script executed successfully", logger.Fields{
		"hook_path": hookPath,
		"hook_type": string(hookCtx.HookType),
		"plugin":    hookCtx.LogicalName,
	})

	return nil
}

func setupScriptContext(moduleMap *tengo.ModuleMap, hookCtx *HookContext) {
	moduleMap.AddBuiltinModule("context", map[string]tengo.Object{
		"hook_type":        &tengo.String{Value: string(hookCtx.HookType)},
		"logical_name":     &tengo.String{Value: hookCtx.LogicalName},
		"platform":         &tengo.String{Value: hookCtx.Platform},
		"source_path":      &tengo.String{Value: hookCtx.SourcePath},
		"destination_path": &tengo.String{Value: hookCtx.DestinationPath},
		"bytes_copied":     &tengo.Int{Value: hookCtx.BytesCopied},
	})
}

func scriptError(compiled *tengo.Compiled) string {
	if compiled == nil || !compiled.IsDefined("err") {
		return ""
	}
	switch v := compiled.Get("err").Object().(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Error:
		if s, ok := v.Value.(*tengo.String); ok {
			return s.Value
		}
		return v.Value.String()
	default:
		return ""
	}
}
