package cli

import (
	"bufio"
	"context"
	"io"
	"sync"
)

type inputResult struct {
	text string
	err  error
}

// console reads lines on a background goroutine so a read can be abandoned
// when the context ends.
type console struct {
	reader *bufio.Reader

	lines     chan inputResult
	startOnce sync.Once
}

func newConsole(r io.Reader) *console {
	return &console{reader: bufio.NewReader(r)}
}

func (c *console) pump() {
	for {
		text, err := c.reader.ReadString('\n')
		if text != "" {
			c.lines <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				c.lines <- inputResult{err: err}
			}
			close(c.lines)
			return
		}
	}
}

// ReadLine blocks for the next line. It returns io.EOF once input is
// exhausted and ctx.Err() when ctx ends first.
func (c *console) ReadLine(ctx context.Context) (string, error) {
	c.startOnce.Do(func() {
		c.lines = make(chan inputResult)
		go c.pump()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	}
}
