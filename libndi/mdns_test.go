package libndi

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func entry(instance string, ip string, port int) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	e.HostName = "studio.local."
	e.Port = port
	if ip != "" {
		if parsed := net.ParseIP(ip); parsed.To4() != nil {
			e.AddrIPv4 = []net.IP{parsed}
		} else {
			e.AddrIPv6 = []net.IP{parsed}
		}
	}
	return e
}

func TestSourceFromEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry *zeroconf.ServiceEntry
		want  Source
		ok    bool
	}{
		{"nil", nil, Source{}, false},
		{"no instance", entry("", "10.0.0.5", 5961), Source{}, false},
		{"ipv4", entry("STUDIO (PTZ Cam 1)", "10.0.0.5", 5961), Source{"STUDIO (PTZ Cam 1)", "10.0.0.5:5961"}, true},
		{"ipv6", entry("STUDIO (PTZ Cam 1)", "fe80::1", 5961), Source{"STUDIO (PTZ Cam 1)", "[fe80::1]:5961"}, true},
		{"hostname only", entry("STUDIO (PTZ Cam 1)", "", 5961), Source{"STUDIO (PTZ Cam 1)", "studio.local:5961"}, true},
		{"no port", entry("STUDIO (PTZ Cam 1)", "10.0.0.5", 0), Source{"STUDIO (PTZ Cam 1)", ""}, true},
		{"escaped", entry(`STUDIO\ \(PTZ\ Cam\0321\)`, "10.0.0.5", 5961), Source{"STUDIO (PTZ Cam 1)", "10.0.0.5:5961"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := sourceFromEntry(tt.entry)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUnescapeInstance(t *testing.T) {
	tests := map[string]string{
		"plain":               "plain",
		`a\ b`:                "a b",
		`\(x\)`:               "(x)",
		`tab\009end`:          "tab\tend",
		`back\\slash`:         `back\slash`,
		`trailing\`:           `trailing\`,
		`\999`:                "999",
		`HOST\ \(Cam\ 2\)`:    "HOST (Cam 2)",
		`dot\.separated\.nm`:  "dot.separated.nm",
		`short\03`:            "short03",
		`mixed\032and\ space`: "mixed and space",
	}

	for in, want := range tests {
		if got := unescapeInstance(in); got != want {
			t.Errorf("unescapeInstance(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCollectorKeepsFirstSeenOrder(t *testing.T) {
	f := newCollector(func() {})

	f.add(entry("B (one)", "10.0.0.2", 5961))
	f.add(entry("A (two)", "10.0.0.1", 5961))
	f.add(entry("B (one)", "10.0.0.9", 5962))

	got := f.CurrentSources()
	want := []Source{
		{"B (one)", "10.0.0.2:5961"},
		{"A (two)", "10.0.0.1:5961"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d sources, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("source %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	got[0].Name = "changed"
	if f.CurrentSources()[0].Name != "B (one)" {
		t.Error("CurrentSources must return a copy")
	}
}

func TestWaitForSources(t *testing.T) {
	f := newCollector(func() {})

	start := time.Now()
	if f.WaitForSources(20 * time.Millisecond) {
		t.Error("expected no change on an empty network")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("returned after %s, before the timeout", elapsed)
	}

	f.add(entry("CAM (1)", "10.0.0.1", 5961))
	f.add(entry("CAM (2)", "10.0.0.2", 5961))
	if !f.WaitForSources(time.Second) {
		t.Error("expected a change after new sources")
	}
	if f.WaitForSources(10 * time.Millisecond) {
		t.Error("changes already reported must not be reported again")
	}

	f.add(entry("CAM (1)", "10.0.0.1", 5961))
	if f.WaitForSources(10 * time.Millisecond) {
		t.Error("a repeated announcement is not a change")
	}
}

func TestCollectStopsWhenBrowsingEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newCollector(cancel)
	entries := make(chan *zeroconf.ServiceEntry)
	go f.collect(ctx, entries)

	entries <- entry("CAM (1)", "10.0.0.1", 5961)
	f.Destroy()

	select {
	case <-f.done:
	default:
		t.Fatal("collector still running after Destroy")
	}
	if n := len(f.CurrentSources()); n != 1 {
		t.Errorf("got %d sources, want 1", n)
	}

	f2 := newCollector(func() {})
	closed := make(chan *zeroconf.ServiceEntry)
	go f2.collect(context.Background(), closed)
	close(closed)

	select {
	case <-f2.done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop when entries closed")
	}
}
