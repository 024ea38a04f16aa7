// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"slices"
	"sync"
)

type (
	// StartCall is one RecordingOpener.Start invocation.
	StartCall struct {
		Path string
		Args []string
	}

	// RecordingOpener records what would have been handed to the desktop
	// instead of launching anything. It is safe for concurrent use.
	RecordingOpener struct {
		mu     sync.Mutex
		opened []string
		runs   []string
		starts []StartCall
	}
)

func (o *RecordingOpener) Open(target string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, target)
	return nil
}

func (o *RecordingOpener) Run(command string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runs = append(o.runs, command)
	return nil
}

func (o *RecordingOpener) Start(path string, args ...string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.starts = append(o.starts, StartCall{Path: path, Args: args})
	return nil
}

// Opened returns the targets passed to Open, in call order.
func (o *RecordingOpener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.opened)
}

// Runs returns the commands passed to Run, in call order.
func (o *RecordingOpener) Runs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.runs)
}

// Starts returns the Start invocations, in call order.
func (o *RecordingOpener) Starts() []StartCall {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.starts)
}
