package acp

// TerminalID identifies one agent-requested terminal session, scoped to
// the ACP session that created it.
type TerminalID string

// TerminalCreateParams asks the client to spawn a command and attach a
// terminal the agent can poll or release later.
type TerminalCreateParams struct {
	SessionID   SessionID     `json:"sessionId" validate:"required"`
	Command     string        `json:"command" validate:"required"`
	Args        []string      `json:"args,omitempty"`
	Env         []EnvVariable `json:"env,omitempty"`
	Cwd         string        `json:"cwd,omitempty"`
	OutputByteLimit *int      `json:"outputByteLimit,omitempty"`
	Meta        Meta          `json:"_meta,omitempty"`
}

// TerminalCreateResult carries the new terminal's id.
type TerminalCreateResult struct {
	TerminalID TerminalID `json:"terminalId"`
	Meta       Meta       `json:"_meta,omitempty"`
}

// TerminalOutputParams polls the current buffered output of a terminal.
type TerminalOutputParams struct {
	SessionID  SessionID  `json:"sessionId"`
	TerminalID TerminalID `json:"terminalId"`
	Meta       Meta       `json:"_meta,omitempty"`
}

// ExitStatus reports how a terminal's command ended.
type ExitStatus struct {
	ExitCode *int    `json:"exitCode,omitempty"`
	Signal   *string `json:"signal,omitempty"`
}

// TerminalOutputResult carries the output collected so far, whether it was
// truncated against the byte limit, and the exit status if the command has
// already finished.
type TerminalOutputResult struct {
	Output     string      `json:"output"`
	Truncated  bool        `json:"truncated"`
	ExitStatus *ExitStatus `json:"exitStatus,omitempty"`
	Meta       Meta        `json:"_meta,omitempty"`
}

// TerminalWaitForExitParams blocks (on the client side) until the
// terminal's command exits.
type TerminalWaitForExitParams struct {
	SessionID  SessionID  `json:"sessionId"`
	TerminalID TerminalID `json:"terminalId"`
	Meta       Meta       `json:"_meta,omitempty"`
}

// TerminalWaitForExitResult carries the exit status once the command has
// finished.
type TerminalWaitForExitResult struct {
	ExitStatus ExitStatus `json:"exitStatus"`
	Meta       Meta       `json:"_meta,omitempty"`
}

// TerminalKillParams sends SIGTERM (then SIGKILL after a grace period) to
// a terminal's command without releasing the terminal itself.
type TerminalKillParams struct {
	SessionID  SessionID  `json:"sessionId"`
	TerminalID TerminalID `json:"terminalId"`
	Meta       Meta       `json:"_meta,omitempty"`
}

// TerminalReleaseParams frees a terminal's resources. Further references
// to TerminalID are invalid after this call.
type TerminalReleaseParams struct {
	SessionID  SessionID  `json:"sessionId"`
	TerminalID TerminalID `json:"terminalId"`
	Meta       Meta       `json:"_meta,omitempty"`
}
