package lpkf

import (
	"bytes"
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/mastercactapus/pcbmill/machine"
	"github.com/mastercactapus/pcbmill/spjs"
)

var lastID int64

func nextID() string {
	id := atomic.AddInt64(&lastID, 1)
	return "cmd_" + strconv.FormatInt(id, 36)
}

// Bridge is the part of an SPJS client the adapter needs.
type Bridge interface {
	Messages() chan interface{}
	SendJSON(spjs.JSON)
	Open(port string, baud int)
}

var _ Bridge = &spjs.SPJS{}

// SPJSAdapter reaches the machine through a serial-port-json-server.
type SPJSAdapter struct {
	sp   Bridge
	port string
	baud int

	mx  sync.Mutex
	buf bytes.Buffer
}

var _ machine.Transport = &SPJSAdapter{}

func NewSPJSAdapter(sp Bridge, port string, baud int) *SPJSAdapter {
	adapter := &SPJSAdapter{
		sp:   sp,
		port: port,
		baud: baud,
	}
	go adapter.loop()

	return adapter
}

func (adapter *SPJSAdapter) loop() {
	for resp := range adapter.sp.Messages() {
		switch msg := resp.(type) {
		case *spjs.DataFrame:
			if msg.Port != "" && msg.Port != adapter.port {
				continue
			}
			adapter.mx.Lock()
			adapter.buf.WriteString(msg.Data)
			adapter.mx.Unlock()
		case *spjs.SerialPortList:
			for _, port := range msg.SerialPorts {
				if port.Name != adapter.port {
					continue
				}
				if !port.IsOpen {
					adapter.sp.Open(adapter.port, adapter.baud)
				}
			}
		case *spjs.ErrorMessage:
			log.Println("ERROR: spjs:", msg.Error)
		}
	}
}

func (adapter *SPJSAdapter) Write(p []byte) (int, error) {
	adapter.sp.SendJSON(spjs.JSON{
		Port: adapter.port,
		Data: []spjs.Data{{Data: string(p), ID: nextID()}},
	})
	return len(p), nil
}

func (adapter *SPJSAdapter) Available() (int, error) {
	adapter.mx.Lock()
	defer adapter.mx.Unlock()
	return adapter.buf.Len(), nil
}

func (adapter *SPJSAdapter) Read(p []byte) (int, error) {
	adapter.mx.Lock()
	defer adapter.mx.Unlock()
	if adapter.buf.Len() == 0 {
		return 0, nil
	}
	return adapter.buf.Read(p)
}
