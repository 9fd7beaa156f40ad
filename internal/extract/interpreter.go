package extract

// Interpreter turns one document's text into structured claim fields. An
// implementation may be backed by an external AI service; availability is
// checked once per call, not assumed.
type Interpreter interface {
	// Name identifies the interpreter in logs and results.
	Name() string
	// Available reports whether the interpreter can serve requests right now.
	Available() bool
	// Interpret parses the text. Best effort; unmatched fields stay empty.
	Interpret(text string) (Fields, error)
}

// HeuristicInterpreter is the regex-based interpreter. It is always
// available and never returns an error.
type HeuristicInterpreter struct {
	extractor *Extractor
}

// NewHeuristicInterpreter wraps an Extractor as an Interpreter.
func NewHeuristicInterpreter(extractor *Extractor) *HeuristicInterpreter {
	return &HeuristicInterpreter{extractor: extractor}
}

func (h *HeuristicInterpreter) Name() string { return "heuristic" }

func (h *HeuristicInterpreter) Available() bool { return true }

func (h *HeuristicInterpreter) Interpret(text string) (Fields, error) {
	return h.extractor.Extract(text), nil
}

// Select returns the first available interpreter. Callers list candidates in
// preference order and put the always-available heuristic last.
func Select(interpreters ...Interpreter) Interpreter {
	for _, it := range interpreters {
		if it.Available() {
			return it
		}
	}
	return nil
}
