package runtime

import (
	"fmt"
	"io"
)

// RegisterBuiltins adds built-in functions to the given environment.
// hawk_tuah is a statement, so gimme is the only callable builtin.
func RegisterBuiltins(env *Environment, w io.Writer, in InputSource) {
	env.Define("gimme", &BuiltinVal{
		Name: "gimme",
		Fn: func(args []Value) (Value, error) {
			if len(args) > 1 {
				return nil, &RuntimeError{
					Kind:    ErrArity,
					Message: fmt.Sprintf("gimme() expects at most 1 argument, got %d", len(args)),
				}
			}
			prompt := ""
			if len(args) == 1 {
				prompt = args[0].String()
			}

			var line string
			var err error
			if pi, ok := in.(PromptedInput); ok {
				line, err = pi.ReadLineWithPrompt(prompt)
			} else {
				fmt.Fprint(w, prompt)
				line, err = in.ReadLine()
			}
			if err != nil {
				return nil, err
			}
			return StringVal(line), nil
		},
	})
}
