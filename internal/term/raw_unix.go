//go:build unix

package term

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	xterm "golang.org/x/term"
)

type rawInput struct {
	fd       int
	oldState *xterm.State
	nonblock bool
	stopCh   chan struct{}
	done     chan struct{}
	stopped  sync.Once
}

// Start puts stdin into raw mode and reads keys on a goroutine until Stop.
func (k *Keyboard) Start() error {
	fd := int(os.Stdin.Fd())
	if !xterm.IsTerminal(fd) {
		return ErrNotTerminal
	}

	oldState, err := xterm.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("term: raw mode: %w", err)
	}
	if err := syscall.SetNonblock(fd, true); err != nil {
		_ = xterm.Restore(fd, oldState)
		return fmt.Errorf("term: nonblocking stdin: %w", err)
	}

	k.raw = rawInput{
		fd:       fd,
		oldState: oldState,
		nonblock: true,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go k.readLoop(k.raw.stopCh, k.raw.done)
	return nil
}

func (k *Keyboard) readLoop(stop, done chan struct{}) {
	defer close(done)
	buf := make([]byte, 16)
	for {
		select {
		case <-stop:
			return
		default:
		}

		n, err := syscall.Read(k.raw.fd, buf)
		for _, b := range buf[:max(n, 0)] {
			k.feed(b)
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK || (err == nil && n == 0) {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			return
		}
	}
}

// Stop ends the reader and restores the terminal.
func (k *Keyboard) Stop() {
	if k.raw.done == nil {
		return
	}
	k.raw.stopped.Do(func() { close(k.raw.stopCh) })
	<-k.raw.done
	if k.raw.nonblock {
		_ = syscall.SetNonblock(k.raw.fd, false)
		k.raw.nonblock = false
	}
	if k.raw.oldState != nil {
		_ = xterm.Restore(k.raw.fd, k.raw.oldState)
		k.raw.oldState = nil
	}
}

// Width returns the terminal width in columns, or fallback.
func Width(fallback int) int {
	w, _, err := xterm.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
