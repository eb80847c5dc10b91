package models

// CommandType is the parsed intent behind a normalized event
type CommandType string

const (
	CommandTypeRegister   CommandType = "register"
	CommandTypeDeregister CommandType = "deregister"
	CommandTypeSync       CommandType = "sync"
	CommandTypeNoOp       CommandType = "noop"
)

// Command is the intent extracted from an event by a pure parsing step,
// decoupled from execution. Args hold the whitespace-separated words after
// the command keyword; handlers validate their count and format.
type Command struct {
	Type CommandType
	Args []string
}
