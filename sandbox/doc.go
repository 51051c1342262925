// Package sandbox provides secure code execution capabilities.
//
// The sandbox package implements the execution engine for running untrusted
// snippets in a container runtime (podman by default). A Profile carries the
// resource limits; BuildCommand turns it into a runtime invocation with
// hardening flags; PayloadCommand base64-encodes the snippet for the
// in-container bootstrap program; the Supervisor spawns the command and
// enforces the wall-clock limit.
//
// Every run ends in exactly one Outcome: Completed, TimedOut or LaunchFailed.
// Failures never escape as Go errors. The one exception is ImagePreparer,
// whose error is meant to abort startup.
//
// Usage:
//
//	executor, err := sandbox.NewExecutor(logger, profile)
//	outcome := executor.Execute(profile, "fn main() { println!(\"hi\"); }")
//	if outcome.Status == sandbox.StatusCompleted {
//	    fmt.Printf("%s", outcome.Stdout)
//	}
package sandbox
