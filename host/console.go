package host

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/peterh/liner"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("basil.host")

const clearScreen = "\x1b[2J\x1b[H"

type readResult struct {
	line string
	eof  bool
}

// Console implements vm.Console. Lines are read on a background goroutine
// so ReadLine never blocks the scheduler. On a terminal, input goes through
// liner for editing and history, and unterminated output is held back to
// become the liner prompt.
type Console struct {
	out io.Writer
	tty bool

	line *liner.State
	in   *bufio.Reader

	mu      sync.Mutex
	partial strings.Builder
	lines   chan readResult
	reading bool
	eof     bool

	// OnInterrupt runs when the user presses Ctrl-C at a prompt.
	OnInterrupt func()
}

// NewConsole returns a console on stdin and stdout, using liner when both
// are terminals.
func NewConsole() *Console {
	if IsTerminal(os.Stdin) && IsTerminal(os.Stdout) {
		l := liner.NewLiner()
		l.SetCtrlCAborts(true)
		return &Console{out: os.Stdout, tty: true, line: l, lines: make(chan readResult, 1)}
	}
	return NewPipeConsole(os.Stdin, os.Stdout)
}

// NewPipeConsole returns a console on plain streams.
func NewPipeConsole(r io.Reader, w io.Writer) *Console {
	return &Console{out: w, in: bufio.NewReader(r), lines: make(chan readResult, 1)}
}

// Write implements vm.Console.
func (c *Console) Write(s string) {
	if c.line == nil {
		io.WriteString(c.out, s)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := strings.LastIndexByte(s, '\n')
	if i < 0 {
		c.partial.WriteString(s)
		return
	}
	io.WriteString(c.out, c.partial.String()+s[:i+1])
	c.partial.Reset()
	c.partial.WriteString(s[i+1:])
}

// Flush writes any held-back output.
func (c *Console) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.partial.Len() > 0 {
		io.WriteString(c.out, c.partial.String())
		c.partial.Reset()
	}
}

// ReadLine implements vm.Console. The first call starts a read; later
// calls report the line once it arrives. At end of input every read
// yields an empty line.
func (c *Console) ReadLine() (string, bool) {
	select {
	case r := <-c.lines:
		c.reading = false
		c.eof = r.eof
		return r.line, true
	default:
	}
	if c.eof {
		return "", true
	}
	if !c.reading {
		c.reading = true
		c.mu.Lock()
		prompt := c.partial.String()
		c.partial.Reset()
		c.mu.Unlock()
		go c.read(prompt)
	}
	return "", false
}

func (c *Console) read(prompt string) {
	var (
		l   string
		err error
		eof bool
	)
	if c.line != nil {
		l, err = c.line.Prompt(prompt)
		if err == nil && l != "" {
			c.line.AppendHistory(l)
		}
	} else {
		l, err = c.in.ReadString('\n')
		if err == io.EOF && l != "" {
			err = nil
		}
		l = strings.TrimRight(l, "\r\n")
	}

	switch {
	case err == nil:
	case errors.Is(err, liner.ErrPromptAborted):
		log.Info("input interrupted")
		if c.OnInterrupt != nil {
			c.OnInterrupt()
		}
		l = ""
	default:
		if err != io.EOF {
			log.Warningf("console read: %v", err)
		}
		eof = true
		l = ""
	}
	c.lines <- readResult{line: l, eof: eof}
}

// Clear implements vm.Console.
func (c *Console) Clear() {
	if c.tty {
		c.Flush()
		io.WriteString(c.out, clearScreen)
	}
}

// Close restores the terminal.
func (c *Console) Close() error {
	c.Flush()
	if c.line != nil {
		return c.line.Close()
	}
	return nil
}
