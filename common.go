package doublefork

const (
	// RoleNone is the role of a process image that has not daemonized,
	// or that failed to.
	RoleNone Role = iota

	// RoleOriginal is the foreground process that started the
	// daemonization.
	RoleOriginal

	// RoleIntermediate is the session leader created by the first
	// fork. Its only job is to perform the second fork.
	RoleIntermediate

	// RoleDaemon is the fully detached process created by the
	// second fork.
	RoleDaemon
)

const (
	StepFirstFork   Step = "first fork"
	StepSession     Step = "create session"
	StepSecondFork  Step = "second fork"
	StepChdir       Step = "change directory"
	StepUmask       Step = "change umask"
	StepCloseStdin  Step = "close stdin"
	StepCloseStdout Step = "close stdout"
	StepCloseStderr Step = "close stderr"
	StepPidFile     Step = "lock pid file"
)

// Role identifies which process image of the double fork the current
// process is.
type Role int

func (o Role) String() string {
	switch o {
	case RoleOriginal:
		return "original"
	case RoleIntermediate:
		return "intermediate"
	case RoleDaemon:
		return "daemon"
	}

	return "none"
}

// Step names a step of the daemonization sequence.
type Step string

func (o Step) string() string {
	return string(o)
}
