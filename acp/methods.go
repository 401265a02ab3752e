package acp

// Method names, grouped by which peer role receives them.
const (
	MethodInitialize   = "initialize"
	MethodAuthenticate = "authenticate"

	MethodSessionNew          = "session/new"
	MethodSessionLoad         = "session/load"
	MethodSessionPrompt       = "session/prompt"
	MethodSessionCancel       = "session/cancel"
	MethodSessionSetMode      = "session/set_mode"

	// Unstable session family (spec.md §6 "as typed" — request/response,
	// the same as every stable session/* method except the session/cancel
	// notification).
	MethodSessionList           = "session/list"
	MethodSessionFork           = "session/fork"
	MethodSessionResume         = "session/resume"
	MethodSessionSetConfigOption = "session/set_config_option"
	MethodSessionSetModel       = "session/set_model"

	MethodSessionUpdate = "session/update"

	MethodFSReadTextFile  = "fs/read_text_file"
	MethodFSWriteTextFile = "fs/write_text_file"

	MethodTerminalCreate      = "terminal/create"
	MethodTerminalOutput      = "terminal/output"
	MethodTerminalWaitForExit = "terminal/wait_for_exit"
	MethodTerminalKill        = "terminal/kill"
	MethodTerminalRelease     = "terminal/release"

	MethodSessionRequestPermission = "session/request_permission"
)

// extMethodPrefix is the convention for vendor extension methods: any
// method name beginning with "_" is passed through to a generic handler
// as opaque JSON rather than failing method_not_found (spec.md §4.4).
const extMethodPrefix = "_"

// isExtMethod reports whether method follows the underscore-prefixed
// extension convention.
func isExtMethod(method string) bool {
	return len(method) > 0 && method[0] == '_'
}
