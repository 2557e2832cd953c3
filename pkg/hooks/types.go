package hooks

// HookType represents the point in the publish flow a hook runs at.
type HookType string

// Supported hook types.
const (
	PostPublish HookType = "post-publish"
)

// HookContext provides context information to hook scripts.
// Scripts read it through the "context" module.
type HookContext struct {
	HookType        HookType
	LogicalName     string
	Platform        string
	SourcePath      string
	DestinationPath string
	BytesCopied     int64
}
