// Package terminal runs shell commands inside the working directory.
//
// Every command is interpreted by the platform shell (sh -c, or cmd /C on
// Windows) with standard error merged into standard output. Two modes share
// one lifecycle (Idle -> Running -> Completed or TimedOut):
//
//   - Execute collects the combined output and reports the exit code.
//   - Stream yields output line by line as it arrives and finishes with a
//     synthetic status line such as "status 0 in 12.34 millis".
//
// Once a command's output closes, the executor waits a bounded join period
// for it to exit and then kills its process group. An overall timeout and
// the caller's context bound the whole run; both kill the process group.
//
// Example Usage:
//
//	exec := terminal.NewExecutor(root, terminal.WithTimeout(time.Minute))
//	s, err := exec.Stream(ctx, "make test")
//	if err != nil { ... }
//	defer s.Close()
//	for line := range s.Chunks() { ... }
//
// Optional PTY mode (unix only) runs the command on a pseudo-terminal so that
// programs which check for a terminal behave as they would interactively.
package terminal
