//go:build ndi
// +build ndi

package libndi

/*
#cgo CFLAGS: -I${SRCDIR}/include
#cgo darwin CFLAGS: -I/Library/NDI\ SDK\ for\ Apple/include
#cgo darwin LDFLAGS: -L/Library/NDI\ SDK\ for\ Apple/lib/macOS -lndi
#cgo linux LDFLAGS: -L/usr/lib -lndi
#cgo windows LDFLAGS: -L"C:/Program Files/NDI/NDI 5 SDK/Lib/x64" -lProcessing.NDI.Lib.x64

#include <stdlib.h>
#include <string.h>
#include <Processing.NDI.Lib.h>

static const char* source_url(const NDIlib_source_t* sources, uint32_t i) {
	return sources[i].p_url_address;
}

static const char* source_name(const NDIlib_source_t* sources, uint32_t i) {
	return sources[i].p_ndi_name;
}

static NDIlib_recv_instance_t recv_create(const char* name, const char* url, const char* recv_name) {
	NDIlib_recv_create_v3_t desc;
	memset(&desc, 0, sizeof(desc));
	desc.source_to_connect_to.p_ndi_name = name;
	desc.source_to_connect_to.p_url_address = url;
	desc.color_format = NDIlib_recv_color_format_UYVY_BGRA;
	desc.bandwidth = NDIlib_recv_bandwidth_highest;
	desc.allow_video_fields = true;
	desc.p_ndi_recv_name = recv_name;
	return NDIlib_recv_create_v3(&desc);
}

// Frames are released immediately; only the event type is reported.
static int recv_capture(NDIlib_recv_instance_t recv, uint32_t timeout_ms) {
	NDIlib_video_frame_v2_t video;
	NDIlib_audio_frame_v2_t audio;
	NDIlib_metadata_frame_t metadata;

	NDIlib_frame_type_e t = NDIlib_recv_capture_v2(recv, &video, &audio, &metadata, timeout_ms);
	switch (t) {
	case NDIlib_frame_type_video:
		NDIlib_recv_free_video_v2(recv, &video);
		break;
	case NDIlib_frame_type_audio:
		NDIlib_recv_free_audio_v2(recv, &audio);
		break;
	case NDIlib_frame_type_metadata:
		NDIlib_recv_free_metadata(recv, &metadata);
		break;
	default:
		break;
	}
	return (int)t;
}
*/
import "C"

import (
	"errors"
	"time"
	"unsafe"
)

// NewLibrary returns the runtime backed by the NDI SDK.
func NewLibrary() Library {
	return &sdkLibrary{}
}

type sdkLibrary struct{}

func (l *sdkLibrary) Initialize() error {
	if !bool(C.NDIlib_initialize()) {
		return ErrNotInitialized
	}
	return nil
}

func (l *sdkLibrary) FindCreate() (Finder, error) {
	instance := C.NDIlib_find_create_v2(nil)
	if instance == nil {
		return nil, ErrNoFinder
	}
	return &sdkFinder{instance: instance}, nil
}

func (l *sdkLibrary) RecvCreate(config RecvConfig) (Receiver, error) {
	name := C.CString(config.Source.Name)
	defer C.free(unsafe.Pointer(name))
	recvName := C.CString(config.Name)
	defer C.free(unsafe.Pointer(recvName))

	var url *C.char
	if config.Source.URLAddress != "" {
		url = C.CString(config.Source.URLAddress)
		defer C.free(unsafe.Pointer(url))
	}

	instance := C.recv_create(name, url, recvName)
	if instance == nil {
		return nil, ErrNoReceiver
	}
	return &sdkReceiver{instance: instance}, nil
}

func (l *sdkLibrary) Destroy() {
	C.NDIlib_destroy()
}

type sdkFinder struct {
	instance C.NDIlib_find_instance_t
}

func (f *sdkFinder) WaitForSources(timeout time.Duration) bool {
	return bool(C.NDIlib_find_wait_for_sources(f.instance, C.uint32_t(timeout.Milliseconds())))
}

func (f *sdkFinder) CurrentSources() []Source {
	var count C.uint32_t
	list := C.NDIlib_find_get_current_sources(f.instance, &count)
	if list == nil || count == 0 {
		return nil
	}

	sources := make([]Source, 0, int(count))
	for i := C.uint32_t(0); i < count; i++ {
		sources = append(sources, Source{
			Name:       C.GoString(C.source_name(list, i)),
			URLAddress: C.GoString(C.source_url(list, i)),
		})
	}
	return sources
}

func (f *sdkFinder) Destroy() {
	C.NDIlib_find_destroy(f.instance)
	f.instance = nil
}

type sdkReceiver struct {
	instance C.NDIlib_recv_instance_t
}

func (r *sdkReceiver) Capture(timeout time.Duration) FrameType {
	return FrameType(C.recv_capture(r.instance, C.uint32_t(timeout.Milliseconds())))
}

func (r *sdkReceiver) PTZIsSupported() bool {
	return bool(C.NDIlib_recv_ptz_is_supported(r.instance))
}

func (r *sdkReceiver) PTZRecallPreset(index int, speed float32) error {
	if !bool(C.NDIlib_recv_ptz_recall_preset(r.instance, C.int(index), C.float(speed))) {
		return errors.New("PTZ preset recall was rejected")
	}
	return nil
}

func (r *sdkReceiver) Destroy() {
	C.NDIlib_recv_destroy(r.instance)
	r.instance = nil
}
