package libndi

import (
	"errors"
	"fmt"
	"time"
)

// FrameType is the kind of event returned by Receiver.Capture
type FrameType int

const (
	FrameTypeNone         FrameType = 0
	FrameTypeVideo        FrameType = 1
	FrameTypeAudio        FrameType = 2
	FrameTypeMetadata     FrameType = 3
	FrameTypeError        FrameType = 4
	FrameTypeStatusChange FrameType = 100
)

func (t FrameType) String() string {
	switch t {
	case FrameTypeNone:
		return "none"
	case FrameTypeVideo:
		return "video"
	case FrameTypeAudio:
		return "audio"
	case FrameTypeMetadata:
		return "metadata"
	case FrameTypeError:
		return "error"
	case FrameTypeStatusChange:
		return "status_change"
	}
	return fmt.Sprintf("FrameType(%d)", int(t))
}

var (
	ErrNotInitialized = errors.New("NDI runtime could not be initialized")
	ErrNoFinder       = errors.New("NDI finder could not be created")
	ErrNoReceiver     = errors.New("NDI receiver could not be created")
	ErrSDKRequired    = errors.New("receiving requires the NDI SDK (build with -tags ndi)")
)

// Source is one discovered NDI endpoint. It is a plain value and stays valid
// after the Finder that produced it is destroyed.
type Source struct {
	Name       string
	URLAddress string
}

func (s Source) String() string {
	if s.URLAddress == "" {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.URLAddress)
}

// RecvConfig describes the receiver to create.
type RecvConfig struct {
	Source Source
	Name   string
}

type Library interface {
	Initialize() error
	FindCreate() (Finder, error)
	RecvCreate(config RecvConfig) (Receiver, error)
	// Destroy shuts the runtime down. Nothing created from it may be used afterwards.
	Destroy()
}

type Finder interface {
	// WaitForSources blocks for at most timeout and reports whether the
	// source list changed.
	WaitForSources(timeout time.Duration) bool
	CurrentSources() []Source
	Destroy()
}

type Receiver interface {
	Capture(timeout time.Duration) FrameType
	PTZIsSupported() bool
	PTZRecallPreset(index int, speed float32) error
	Destroy()
}
