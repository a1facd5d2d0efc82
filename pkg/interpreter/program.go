package interpreter

import (
	"fmt"

	"sumcore/interpreter-go/pkg/driver"
)

// LoadProgram loads the modules of prog in order. Loading stops at the first
// module that fails; the program's entry, if any, replaces the current one.
func (i *Interpreter) LoadProgram(prog *driver.Program) error {
	if prog == nil {
		return fmt.Errorf("load: program is nil")
	}
	for idx, module := range prog.Modules {
		if err := i.LoadModule(module); err != nil {
			if idx < len(prog.Files) {
				return fmt.Errorf("%s: %w", prog.Files[idx], err)
			}
			return err
		}
	}
	if prog.Entry != "" {
		i.entry = prog.Entry
	}
	return nil
}
