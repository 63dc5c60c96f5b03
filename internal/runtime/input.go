package runtime

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// InputSource supplies lines to the gimme builtin.
type InputSource interface {
	ReadLine() (string, error)
}

// PromptedInput is implemented by sources that display the gimme prompt
// themselves, such as a line editor. gimme then skips writing the prompt
// to the program output.
type PromptedInput interface {
	InputSource
	ReadLineWithPrompt(prompt string) (string, error)
}

// ReaderInput reads lines from an io.Reader. At end of input it returns the
// empty string rather than an error.
type ReaderInput struct {
	r *bufio.Reader
}

// NewReaderInput wraps r, typically os.Stdin.
func NewReaderInput(r io.Reader) *ReaderInput {
	return &ReaderInput{r: bufio.NewReader(r)}
}

func (in *ReaderInput) ReadLine() (string, error) {
	line, err := in.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// QueueInput serves pre-supplied lines in order and fails with ErrInput once
// they run out. Hosts without a terminal use it in place of ReaderInput.
type QueueInput struct {
	lines []string
}

// NewQueueInput creates a queue holding lines.
func NewQueueInput(lines ...string) *QueueInput {
	return &QueueInput{lines: append([]string(nil), lines...)}
}

// Push appends lines to the end of the queue.
func (q *QueueInput) Push(lines ...string) {
	q.lines = append(q.lines, lines...)
}

// Len returns the number of lines still queued.
func (q *QueueInput) Len() int {
	return len(q.lines)
}

func (q *QueueInput) ReadLine() (string, error) {
	if len(q.lines) == 0 {
		return "", &RuntimeError{Kind: ErrInput, Message: "no input available in queue"}
	}
	line := q.lines[0]
	q.lines = q.lines[1:]
	return line, nil
}
