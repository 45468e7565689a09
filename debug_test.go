package tabletop

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func debugEnv(buf *bytes.Buffer) *Env {
	env := NewEnv()
	env.Debug = true
	env.Logger = slog.New(slog.NewTextHandler(buf, nil))
	return env
}

func TestDebugMode_TreeDepthWarning(t *testing.T) {
	var buf bytes.Buffer
	env := debugEnv(&buf)

	// Build a chain deeper than debugMaxTreeDepth (32).
	current := NewPane(env, "root")
	for i := 0; i < debugMaxTreeDepth+5; i++ {
		child := NewPane(env, fmt.Sprintf("depth_%d", i))
		if err := current.Add(child); err != nil {
			t.Fatal(err)
		}
		current = child
	}

	output := buf.String()
	if !strings.Contains(output, "tree depth exceeds threshold") {
		t.Errorf("expected tree depth warning, got: %q", output)
	}
}

func TestDebugMode_ChildCountWarning(t *testing.T) {
	var buf bytes.Buffer
	env := debugEnv(&buf)

	parent := NewArea[*TokenView](env, "many_children")
	for i := 0; i < debugMaxChildCount+1; i++ {
		if err := parent.Add(newToken(env, fmt.Sprintf("c_%d", i))); err != nil {
			t.Fatal(err)
		}
	}

	output := buf.String()
	if !strings.Contains(output, "child count exceeds threshold") || !strings.Contains(output, "many_children") {
		t.Errorf("expected child count warning, got: %q", output)
	}
}

func TestReleaseMode_NoWarnings(t *testing.T) {
	var buf bytes.Buffer
	env := debugEnv(&buf)
	env.Debug = false

	current := NewPane(env, "root")
	for i := 0; i < debugMaxTreeDepth+5; i++ {
		child := NewPane(env, fmt.Sprintf("depth_%d", i))
		_ = current.Add(child)
		current = child
	}

	if buf.Len() != 0 {
		t.Errorf("release mode logged: %q", buf.String())
	}
}

func TestEnvDefaultLoggerDiscards(t *testing.T) {
	env := NewEnv()
	env.Debug = true
	parent := NewPane(env, "root")
	for range debugMaxChildCount + 1 {
		_ = parent.Add(newToken(env, "t"))
	}
	// Nothing to assert beyond not panicking with the discarding logger.
	env.Logger = nil
	if env.logger() == nil {
		t.Error("nil Logger did not fall back to the default")
	}
}
