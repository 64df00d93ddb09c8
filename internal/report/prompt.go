package report

// PromptMargin is reserved for the wrapping text when the log is cut down to
// fit the chunk size.
const PromptMargin = 100

// BuildPrompt wraps the work log in the prompt template. When the result
// would exceed chunkSize characters, only the most recent part of the log is
// kept and the framing says so. It reports whether the log was cut.
func BuildPrompt(template, worklog string, chunkSize int) (string, bool) {
	full := template + "\n\nWork logs:\n" + worklog
	if chunkSize <= 0 || runeLen(full) <= chunkSize {
		return full, false
	}

	budget := chunkSize - runeLen(template) - PromptMargin
	return template + "\n\nWork logs (most recent):\n" + tail(worklog, budget), true
}

func runeLen(s string) int {
	return len([]rune(s))
}

// tail returns the last n characters of s.
func tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
