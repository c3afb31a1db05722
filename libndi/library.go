//go:build !ndi
// +build !ndi

package libndi

// NewLibrary returns the pure-Go runtime. It discovers sources over mDNS but
// cannot open receivers; build with -tags ndi to link the NDI SDK.
func NewLibrary() Library {
	return &mdnsLibrary{}
}

type mdnsLibrary struct{}

func (l *mdnsLibrary) Initialize() error {
	return nil
}

func (l *mdnsLibrary) FindCreate() (Finder, error) {
	f, err := newMDNSFinder()
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (l *mdnsLibrary) RecvCreate(config RecvConfig) (Receiver, error) {
	return nil, ErrSDKRequired
}

func (l *mdnsLibrary) Destroy() {}
