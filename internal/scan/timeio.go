package scan

import (
	"errors"
	"os"
	"time"
)

// errTimedOut marks a filesystem call that exceeded its deadline. Callers
// treat it exactly like any other I/O error: the entry becomes a skip.
var errTimedOut = errors.New("filesystem operation timed out")

// readDirTimeout lists a directory, racing the call against a timer. A call
// that loses the race keeps running in its goroutine until the kernel
// returns; its result is discarded.
func readDirTimeout(path string, timeout time.Duration) ([]os.DirEntry, error) {
	type result struct {
		entries []os.DirEntry
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		entries, err := os.ReadDir(path)
		ch <- result{entries, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r.entries, r.err
	case <-timer.C:
		return nil, errTimedOut
	}
}

// statTimeout stats a path with a bounded deadline, mirroring
// readDirTimeout's discard-on-timeout behavior.
func statTimeout(path string, timeout time.Duration) (os.FileInfo, error) {
	type result struct {
		info os.FileInfo
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		info, err := os.Stat(path)
		ch <- result{info, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r.info, r.err
	case <-timer.C:
		return nil, errTimedOut
	}
}
