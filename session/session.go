// Package session drives one discover, connect and PTZ-recall run against an
// NDI runtime.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/thxssio/ndiptz/libndi"
)

const (
	PollTimeout   = 1000 * time.Millisecond
	SessionBudget = 30 * time.Second
	PresetIndex   = 3
	PresetSpeed   = float32(1.0)
	ReceiverName  = "Example PTZ Receiver"
)

var ErrNoSources = errors.New("no NDI sources found before exit was requested")

// Controller owns the runtime for the duration of Run. Required progress
// lines go to out; secondary diagnostics go to logger.
type Controller struct {
	lib    libndi.Library
	out    io.Writer
	logger *log.Logger
	now    func() time.Time
}

func New(lib libndi.Library, out io.Writer, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Controller{
		lib:    lib,
		out:    out,
		logger: logger,
		now:    time.Now,
	}
}

// Run returns once the capture budget is spent, ctx is done, or a step
// fails. Cancelling ctx is observed after the in-flight poll returns.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.lib.Initialize(); err != nil {
		fmt.Fprintln(c.out, "Cannot run NDI.")
		return abort(libndi.ErrNotInitialized, err)
	}
	defer c.lib.Destroy()

	finder, err := c.lib.FindCreate()
	if err != nil {
		return abort(libndi.ErrNoFinder, err)
	}

	sources := c.waitForSources(ctx, finder)
	if len(sources) == 0 {
		finder.Destroy()
		return ErrNoSources
	}

	recv, err := c.lib.RecvCreate(libndi.RecvConfig{
		Source: sources[0],
		Name:   ReceiverName,
	})
	finder.Destroy()
	if err != nil {
		return abort(libndi.ErrNoReceiver, err)
	}
	defer recv.Destroy()

	c.capture(ctx, recv)
	return nil
}

func (c *Controller) waitForSources(ctx context.Context, finder libndi.Finder) []libndi.Source {
	var sources []libndi.Source
	for ctx.Err() == nil && len(sources) == 0 {
		fmt.Fprintln(c.out, "Looking for sources ...")
		finder.WaitForSources(PollTimeout)
		sources = finder.CurrentSources()
	}
	return sources
}

func (c *Controller) capture(ctx context.Context, recv libndi.Receiver) {
	start := c.now()
	for ctx.Err() == nil && c.now().Sub(start) < SessionBudget {
		switch frameType := recv.Capture(PollTimeout); frameType {
		case libndi.FrameTypeStatusChange:
			if !recv.PTZIsSupported() {
				continue
			}
			fmt.Fprintf(c.out, "This source supports PTZ functionality. Moving to preset #%d.\n", PresetIndex)
			if err := recv.PTZRecallPreset(PresetIndex, PresetSpeed); err != nil {
				c.logger.Printf("ERROR recalling preset %d: %s\n", PresetIndex, err)
			}
		case libndi.FrameTypeError:
			c.logger.Printf("Receiver reported %s frame\n", frameType)
		}
	}
}

// abort tags err with the step that failed so callers can match it with errors.Is.
func abort(step, err error) error {
	if errors.Is(err, step) {
		return err
	}
	return fmt.Errorf("%w: %v", step, err)
}
