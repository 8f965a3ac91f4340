//go:build pico

// Package pico binds the SVOX Pico synthesizer (libttspico) to the engine
// contract.
package pico

/*
#cgo LDFLAGS: -lttspico
#include <stdlib.h>
#include <picoapi.h>

static int nt_put_text(pico_Engine e, const char *text, int size, int *put)
{
	pico_Int16 sent = 0;
	pico_Status s = pico_putTextUtf8(e, (const pico_Char *)text, (pico_Int16)size, &sent);
	*put = sent;
	return s;
}

static int nt_get_data(pico_Engine e, void *buf, int size, int *recv, int *busy)
{
	pico_Int16 n = 0, type = 0;
	pico_Status s = pico_getData(e, buf, (pico_Int16)size, &n, &type);
	*recv = n;
	*busy = s == PICO_STEP_BUSY;
	if (s == PICO_STEP_BUSY || s == PICO_STEP_IDLE)
		return 0;
	return s;
}

static void nt_status_message(pico_System sys, int code, char *out)
{
	pico_getSystemStatusMessage(sys, (pico_Status)code, out);
}

static int nt_resource_name(pico_System sys, pico_Resource r, char *out)
{
	return pico_getResourceName(sys, r, out);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"github.com/nanotts/nanotts/internal/engine"
)

const (
	memSize       = 2500000
	retStringSize = 200
	voiceName     = "PicoVoice"
)

// Available reports whether this binary was built with Pico support.
const Available = true

// Config selects the lingware files for one voice.
type Config struct {
	TAPath string
	SGPath string
}

// Engine is one Pico system with a single voice and engine loaded.
type Engine struct {
	mem    unsafe.Pointer
	system C.pico_System
	ta     C.pico_Resource
	sg     C.pico_Resource
	eng    C.pico_Engine
	voice  *C.char

	hasVoice bool
	closed   bool
}

// Open initialises the synthesizer, loads both resources and creates the
// engine. Anything acquired before a failing step is released again.
func Open(cfg Config) (*Engine, error) {
	for _, p := range []string{cfg.TAPath, cfg.SGPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, engine.Wrap("open lingware", err)
		}
	}

	e := &Engine{
		mem:   C.malloc(memSize),
		voice: C.CString(voiceName),
	}
	if e.mem == nil {
		C.free(unsafe.Pointer(e.voice))
		return nil, engine.Wrap("pico_initialize", errors.New("out of memory"))
	}

	if rc := C.pico_initialize(e.mem, memSize, &e.system); rc != 0 {
		err := e.statusError("pico_initialize", int(rc))
		e.release()
		return nil, err
	}

	if err := e.load(cfg); err != nil {
		e.release()
		return nil, err
	}
	return e, nil
}

func (e *Engine) load(cfg Config) error {
	taPath := C.CString(cfg.TAPath)
	defer C.free(unsafe.Pointer(taPath))
	if rc := C.pico_loadResource(e.system, (*C.pico_Char)(unsafe.Pointer(taPath)), &e.ta); rc != 0 {
		return e.statusError("pico_loadResource(ta)", int(rc))
	}

	sgPath := C.CString(cfg.SGPath)
	defer C.free(unsafe.Pointer(sgPath))
	if rc := C.pico_loadResource(e.system, (*C.pico_Char)(unsafe.Pointer(sgPath)), &e.sg); rc != 0 {
		return e.statusError("pico_loadResource(sg)", int(rc))
	}

	var taName, sgName [retStringSize]C.char
	if rc := C.nt_resource_name(e.system, e.ta, &taName[0]); rc != 0 {
		return e.statusError("pico_getResourceName(ta)", int(rc))
	}
	if rc := C.nt_resource_name(e.system, e.sg, &sgName[0]); rc != 0 {
		return e.statusError("pico_getResourceName(sg)", int(rc))
	}

	voice := (*C.pico_Char)(unsafe.Pointer(e.voice))
	if rc := C.pico_createVoiceDefinition(e.system, voice); rc != 0 {
		return e.statusError("pico_createVoiceDefinition", int(rc))
	}
	e.hasVoice = true

	if rc := C.pico_addResourceToVoiceDefinition(e.system, voice, (*C.pico_Char)(unsafe.Pointer(&taName[0]))); rc != 0 {
		return e.statusError("pico_addResourceToVoiceDefinition(ta)", int(rc))
	}
	if rc := C.pico_addResourceToVoiceDefinition(e.system, voice, (*C.pico_Char)(unsafe.Pointer(&sgName[0]))); rc != 0 {
		return e.statusError("pico_addResourceToVoiceDefinition(sg)", int(rc))
	}

	if rc := C.pico_newEngine(e.system, voice, &e.eng); rc != 0 {
		return e.statusError("pico_newEngine", int(rc))
	}
	return nil
}

// PushText hands text to pico_putTextUtf8.
func (e *Engine) PushText(text []byte) (int, error) {
	if e.closed {
		return 0, engine.ErrClosed
	}
	if len(text) > engine.MaxPushBytes {
		return 0, engine.ErrPushTooLarge
	}
	if len(text) == 0 {
		return 0, nil
	}

	var put C.int
	rc := C.nt_put_text(e.eng, (*C.char)(unsafe.Pointer(&text[0])), C.int(len(text)), &put)
	if rc != 0 {
		return 0, e.statusError("pico_putTextUtf8", int(rc))
	}
	return int(put), nil
}

// PullAudio reads one burst with pico_getData.
func (e *Engine) PullAudio(buf []byte) (int, engine.Status, error) {
	if e.closed {
		return 0, engine.StatusIdle, engine.ErrClosed
	}
	if len(buf) == 0 {
		return 0, engine.StatusIdle, nil
	}
	if len(buf) > engine.MaxPushBytes {
		buf = buf[:engine.MaxPushBytes]
	}

	var recv, busy C.int
	if rc := C.nt_get_data(e.eng, unsafe.Pointer(&buf[0]), C.int(len(buf)), &recv, &busy); rc != 0 {
		return 0, engine.StatusIdle, e.statusError("pico_getData", int(rc))
	}
	if busy != 0 {
		return int(recv), engine.StatusBusy, nil
	}
	return int(recv), engine.StatusIdle, nil
}

// SampleRate is fixed at 16 kHz for every Pico voice.
func (e *Engine) SampleRate() int {
	return engine.DefaultSampleRate
}

// Close tears the session down in reverse order of construction.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.release()
	return nil
}

func (e *Engine) release() {
	e.closed = true
	if e.eng != nil {
		C.pico_disposeEngine(e.system, &e.eng)
		e.eng = nil
	}
	if e.hasVoice {
		C.pico_releaseVoiceDefinition(e.system, (*C.pico_Char)(unsafe.Pointer(e.voice)))
		e.hasVoice = false
	}
	if e.sg != nil {
		C.pico_unloadResource(e.system, &e.sg)
		e.sg = nil
	}
	if e.ta != nil {
		C.pico_unloadResource(e.system, &e.ta)
		e.ta = nil
	}
	if e.system != nil {
		C.pico_terminate(&e.system)
		e.system = nil
	}
	if e.mem != nil {
		C.free(e.mem)
		e.mem = nil
	}
	if e.voice != nil {
		C.free(unsafe.Pointer(e.voice))
		e.voice = nil
	}
}

func (e *Engine) statusError(op string, code int) error {
	var msg [retStringSize]C.char
	if e.system != nil {
		C.nt_status_message(e.system, C.int(code), &msg[0])
	}
	text := C.GoString(&msg[0])
	if text == "" {
		text = fmt.Sprintf("status %d", code)
	}
	return engine.NewError(op, code, text)
}
