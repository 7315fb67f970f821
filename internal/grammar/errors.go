package grammar

import "fmt"

// LoadError reports a problem compiling grammar text.
type LoadError struct {
	Grammar string
	Line    int
	Message string
}

func (e *LoadError) Error() string {
	switch {
	case e.Grammar != "" && e.Line > 0:
		return fmt.Sprintf("grammar %s: line %d: %s", e.Grammar, e.Line, e.Message)
	case e.Grammar != "":
		return fmt.Sprintf("grammar %s: %s", e.Grammar, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

func newLoadError(line int, format string, args ...any) *LoadError {
	return &LoadError{Line: line, Message: fmt.Sprintf(format, args...)}
}
