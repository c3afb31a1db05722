package libndi

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	ServiceType   = "_ndi._tcp"
	ServiceDomain = "local."
)

// mdnsFinder browses the LAN for NDI senders without the SDK. Sources are
// kept in the order they were first seen.
type mdnsFinder struct {
	cancel  context.CancelFunc
	done    chan struct{}
	changed chan struct{}

	mu      sync.Mutex
	sources []Source
	seen    map[string]struct{}
}

func newMDNSFinder() (*mdnsFinder, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("creating mDNS resolver: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	f := newCollector(cancel)
	entries := make(chan *zeroconf.ServiceEntry, 16)
	go f.collect(ctx, entries)

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		cancel()
		<-f.done
		return nil, fmt.Errorf("browsing %s: %w", ServiceType, err)
	}
	return f, nil
}

func newCollector(cancel context.CancelFunc) *mdnsFinder {
	return &mdnsFinder{
		cancel:  cancel,
		done:    make(chan struct{}),
		changed: make(chan struct{}, 1),
		seen:    make(map[string]struct{}),
	}
}

func (f *mdnsFinder) collect(ctx context.Context, entries <-chan *zeroconf.ServiceEntry) {
	defer close(f.done)
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-entries:
			if !ok {
				return
			}
			f.add(entry)
		}
	}
}

func (f *mdnsFinder) add(entry *zeroconf.ServiceEntry) {
	source, ok := sourceFromEntry(entry)
	if !ok {
		return
	}

	f.mu.Lock()
	if _, exists := f.seen[source.Name]; exists {
		f.mu.Unlock()
		return
	}
	f.seen[source.Name] = struct{}{}
	f.sources = append(f.sources, source)
	f.mu.Unlock()

	select {
	case f.changed <- struct{}{}:
	default:
	}
}

func (f *mdnsFinder) WaitForSources(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.changed:
		return true
	case <-timer.C:
		return false
	}
}

func (f *mdnsFinder) CurrentSources() []Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Source(nil), f.sources...)
}

func (f *mdnsFinder) Destroy() {
	f.cancel()
	<-f.done
}

// BrowseSources collects the NDI sources announced within timeout.
func BrowseSources(ctx context.Context, timeout time.Duration) ([]Source, error) {
	finder, err := newMDNSFinder()
	if err != nil {
		return nil, err
	}
	defer finder.Destroy()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
	return finder.CurrentSources(), nil
}

func sourceFromEntry(entry *zeroconf.ServiceEntry) (Source, bool) {
	if entry == nil || entry.Instance == "" {
		return Source{}, false
	}

	source := Source{Name: unescapeInstance(entry.Instance)}

	var host string
	switch {
	case len(entry.AddrIPv4) > 0:
		host = entry.AddrIPv4[0].String()
	case len(entry.AddrIPv6) > 0:
		host = entry.AddrIPv6[0].String()
	default:
		host = strings.TrimSuffix(entry.HostName, ".")
	}
	if host != "" && entry.Port > 0 {
		source.URLAddress = net.JoinHostPort(host, strconv.Itoa(entry.Port))
	}
	return source, true
}

// unescapeInstance undoes DNS-SD label escaping ("\ ", "\(", "\032").
func unescapeInstance(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		if i+3 < len(s) && isDigit(s[i+1]) && isDigit(s[i+2]) && isDigit(s[i+3]) {
			if v, err := strconv.Atoi(s[i+1 : i+4]); err == nil && v < 256 {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i+1])
		i++
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
