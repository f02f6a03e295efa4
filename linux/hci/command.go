package hci

// Command is anything that can be marshalled onto the HCI command channel.
// The wire format of any given command is a code-generated collaborator
// (explicitly out of scope, §1); the core only needs enough of the shape
// to frame and send it.
type Command interface {
	OpCode() uint16
	Len() int
	Marshal([]byte) error
}

// CommandRP unmarshals the return parameters of a Command-Complete event.
type CommandRP interface {
	Unmarshal(b []byte) error
}

// NoRP is used where a command's return parameters carry nothing beyond
// the status byte, which the handler checks itself before Unmarshal runs.
type NoRP struct{}

func (NoRP) Unmarshal([]byte) error { return nil }
