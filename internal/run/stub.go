package run

import "context"

// Stub is a Runner used by tests. It records every invocation and returns
// scripted results instead of spawning processes.
type Stub struct {
	// Commands accumulates every command passed to Run or Output, in order.
	Commands []Command
	// RunFunc, when set, supplies the result of Run.
	RunFunc func(Command) error
	// OutputFunc, when set, supplies the result of Output.
	OutputFunc func(Command) (string, error)
}

// Run records the command and returns the scripted result.
func (s *Stub) Run(_ context.Context, cmd Command) error {
	s.Commands = append(s.Commands, cmd)
	if s.RunFunc != nil {
		return s.RunFunc(cmd)
	}
	return nil
}

// Output records the command and returns the scripted output.
func (s *Stub) Output(_ context.Context, cmd Command) (string, error) {
	s.Commands = append(s.Commands, cmd)
	if s.OutputFunc != nil {
		return s.OutputFunc(cmd)
	}
	return "", nil
}

// Named returns the recorded commands whose binary matches name.
func (s *Stub) Named(name string) []Command {
	var out []Command
	for _, c := range s.Commands {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}
