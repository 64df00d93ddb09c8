package report

import "fmt"

// Kind classifies the outcome of a summarize call.
type Kind int

const (
	Success Kind = iota
	Disabled
	ConnectionFailed
	TimedOut
	TransportError
	Unexpected
	Canceled
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Disabled:
		return "disabled"
	case ConnectionFailed:
		return "connection-failed"
	case TimedOut:
		return "timed-out"
	case TransportError:
		return "transport-error"
	case Unexpected:
		return "unexpected"
	case Canceled:
		return "canceled"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// NoResponseText stands in for a reply that lacks a response field.
const NoResponseText = "No response from LLM"

// Result is the outcome of one summarize call.
type Result struct {
	Kind Kind
	// Text is the generated report on Success.
	Text string
	// Detail carries the underlying error for TransportError and Unexpected.
	Detail string
	// Chunked is set when the log was cut down to fit the chunk size.
	Chunked bool
	// StartCommand is the remediation shown for ConnectionFailed.
	StartCommand string
}

// OK reports whether a report was generated.
func (r Result) OK() bool {
	return r.Kind == Success
}

// Message renders the result for display.
func (r Result) Message() string {
	switch r.Kind {
	case Success:
		return r.Text
	case Disabled:
		return "LLM processing is disabled in context.yml"
	case ConnectionFailed:
		return "❌ Cannot connect to LLM API. Make sure Ollama is running:\n\nRun: " + r.StartCommand
	case TimedOut:
		return "❌ LLM request timed out. The model might be loading..."
	case TransportError:
		return "❌ LLM API error: " + r.Detail
	case Canceled:
		return "Report request canceled."
	default:
		return "❌ Unexpected error: " + r.Detail
	}
}
