package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"schemepp/internal/trace"
)

// setupTracing initializes the tracer from the resolved settings and attaches
// it to the command context. It returns a cleanup function.
func setupTracing(cmd *cobra.Command, s settings) (func(), error) {
	// If level is off, skip tracing
	if s.TraceLevel == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	tracer, err := trace.New(trace.Config{
		Level:      s.TraceLevel,
		OutputPath: s.TraceOutput,
		Heartbeat:  s.TraceHeartbeat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	heartbeat := trace.StartHeartbeat(tracer, s.TraceHeartbeat)

	cleanup := func() {
		// Stop heartbeat first
		heartbeat.Stop()

		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}
