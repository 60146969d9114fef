package commandmanager

import (
	"context"
	"time"
)

// Credentials holds the authentication material used for remote execution
// and privilege escalation.
type Credentials struct {
	User          string
	Password      string
	KeyPassphrase string
	SudoPassword  string
}

// CommandConfig describes a single command invocation.
type CommandConfig struct {
	Command string
	Args    []string
	Env     []string
	Sudo    bool
}

// CommandResult encapsulates the results from a command execution.
type CommandResult struct {
	Command   string
	STDOUT    string
	STDERR    string
	ExitCode  int
	Duration  time.Duration
	Timestamp time.Time
}

// CommandManager provides methods to execute commands, both locally and
// remotely. Every operation in this module that touches the host environment
// (package installs, OCR conversion) goes through this interface so it can be
// faked in tests.
type CommandManager interface {
	// RunLocal executes a command on the local system.
	RunLocal(ctx context.Context, config CommandConfig) (CommandResult, error)

	// RunRemote executes a command on a remote system via SSH.
	RunRemote(ctx context.Context, config CommandConfig) (CommandResult, error)

	// Run dispatches to RunLocal or RunRemote based on the target hostname.
	Run(ctx context.Context, config CommandConfig) (CommandResult, error)
}
