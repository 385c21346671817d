package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

const pulumiTimeout = 5 * time.Second

// defaults holds hardcoded fallbacks for keys that have one.
var defaults = map[string]string{
	"AUTH0_CALLBACK_URL": "http://localhost:8003/auth/callback",
	"POSTHOG_HOST":       "https://us.i.posthog.com",
}

// Resolver resolves configuration values with a fixed precedence:
// provisioner stack outputs (loaded once per process), then environment
// variables, then a hardcoded default where one exists.
//
// A failed or timed-out stack-output fetch is swallowed and treated as
// "no provisioned outputs available" so local development works without
// the provisioning backend.
type Resolver struct {
	stackDir string
	runner   func(ctx context.Context, dir string) ([]byte, error)

	mu      sync.Mutex
	loaded  bool
	outputs map[string]string
}

// NewResolver creates a Resolver that reads stack outputs from the given
// directory. An empty directory disables the provisioner lookup entirely.
func NewResolver(stackDir string) *Resolver {
	return &Resolver{stackDir: stackDir, runner: runPulumiOutput}
}

func runPulumiOutput(ctx context.Context, dir string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "pulumi", "stack", "output", "--json")
	cmd.Dir = dir
	return cmd.Output()
}

// Get returns the resolved value for key, or empty string if the key is
// unknown everywhere.
func (r *Resolver) Get(key string) string {
	outputs := r.loadOutputs()
	if value, ok := outputs[key]; ok {
		return value
	}
	if value, ok := outputs[strings.ToLower(key)]; ok {
		return value
	}
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaults[key]
}

// loadOutputs fetches the stack outputs at most once per process. The
// result (including "nothing available") is cached for the process
// lifetime and never refreshed.
func (r *Resolver) loadOutputs() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return r.outputs
	}
	r.loaded = true
	r.outputs = map[string]string{}

	if r.stackDir == "" {
		return r.outputs
	}
	if _, err := os.Stat(r.stackDir); err != nil {
		return r.outputs
	}

	ctx, cancel := context.WithTimeout(context.Background(), pulumiTimeout)
	defer cancel()

	raw, err := r.runner(ctx, r.stackDir)
	if err != nil {
		// Provisioner not installed, not logged in, or stack not
		// selected. All of these mean "run on env vars alone".
		return r.outputs
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return r.outputs
	}

	for key, value := range decoded {
		if value == nil {
			continue
		}
		r.outputs[key] = stringifyOutput(value)
	}
	return r.outputs
}

func stringifyOutput(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
