package spjs

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SPJS is a client of serial-port-json-server. It reconnects until
// closed.
type SPJS struct {
	url string

	outgoing  chan message
	incomming chan interface{}
	closeCh   chan struct{}
	closeOnce sync.Once
}

type message struct {
	done    chan struct{}
	payload []byte
}

type DataFrame struct {
	Port string `json:"P"`
	Data string `json:"D"`
}
type CmdStatus struct {
	Cmd        string
	QueueCount int `json:"QCnt"`
	Type       []string
	Data       []string `json:"D"`
	ID         string   `json:"Id"`
}

type ErrorMessage struct {
	Error string
}
type SerialPortList struct {
	SerialPorts []SerialPort
}
type SerialPort struct {
	Name   string
	IsOpen bool
	Baud   int
}

func NewSPJS(url string) *SPJS {
	sp := &SPJS{
		url:       url,
		outgoing:  make(chan message, 1000),
		incomming: make(chan interface{}, 1000),
		closeCh:   make(chan struct{}),
	}

	go sp.loop()

	return sp
}

// Messages returns every decoded message from the server.
func (sp *SPJS) Messages() chan interface{} {
	return sp.incomming
}

func parseMessage(data []byte) (val interface{}, err error) {
	var msg map[string]json.RawMessage
	err = json.Unmarshal(data, &msg)
	if err != nil {
		return nil, err
	}
	check := func(fieldName string, v interface{}) bool {
		if msg[fieldName] == nil {
			return false
		}
		val = v
		err = json.Unmarshal(data, val)
		return true
	}
	if check("Error", &ErrorMessage{}) {
		return
	}
	if check("SerialPorts", &SerialPortList{}) {
		return
	}
	if check("Type", &CmdStatus{}) {
		return
	}
	if check("D", &DataFrame{}) {
		return
	}

	return nil, errors.New("unknown message: " + string(data))
}

func (sp *SPJS) readLoop(ws *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			log.Println("ERROR: spjs read:", err)
			return
		}
		if !bytes.HasPrefix(data, []byte("{")) {
			// ignore echo messages
			continue
		}
		val, err := parseMessage(data)
		if err != nil {
			log.Println("ERROR: spjs parse:", err)
			continue
		}
		sp.incomming <- val
	}
}

func (sp *SPJS) loop() {
	var nextUp message

reconnect:
	for {
		select {
		case <-sp.closeCh:
			return
		default:
		}
		log.Println("Connecting to", sp.url)
		ws, _, err := websocket.DefaultDialer.Dial(sp.url, nil)
		if err != nil {
			log.Println("ERROR: spjs connect:", err)
			time.Sleep(3 * time.Second)
			continue
		}
		log.Println("Connected.")
		ch := make(chan struct{})
		go sp.readLoop(ws, ch)
		go sp.WriteString("list") // refresh list on reconnect

		for {
			if nextUp.done != nil {
				err = ws.WriteMessage(websocket.TextMessage, nextUp.payload)
				if err != nil {
					log.Println("ERROR: spjs send:", err)
					ws.Close()
					continue reconnect
				}
				close(nextUp.done)
				nextUp.done = nil
			}

			select {
			case <-sp.closeCh:
				ws.Close()
				return
			case <-ch:
				continue reconnect
			case nextUp = <-sp.outgoing:
			}
		}
	}
}

type JSON struct {
	Port string `json:"P"`
	Data []Data
}
type Data struct {
	Data string `json:"D"`
	ID   string `json:"Id"`
}

func (sp *SPJS) send(payload []byte) {
	ch := make(chan struct{})
	select {
	case sp.outgoing <- message{done: ch, payload: payload}:
	case <-sp.closeCh:
		return
	}
	select {
	case <-ch:
	case <-sp.closeCh:
	}
}

// SendJSON queues data for a port and returns once it was handed to the
// server.
func (sp *SPJS) SendJSON(v JSON) {
	data, err := json.Marshal(v)
	if err != nil {
		// shouldn't happen since we control everything that's sent out
		log.Panicln("ERROR: sendjson (marshal):", err)
		return
	}

	sp.send(append([]byte("sendjson "), data...))
}

func (sp *SPJS) WriteString(data string) {
	sp.send([]byte(data))
}

// Open asks the server to open port at baud with the default buffer.
func (sp *SPJS) Open(port string, baud int) {
	sp.WriteString("open " + port + " " + strconv.Itoa(baud) + " default")
}

func (sp *SPJS) Close() error {
	sp.closeOnce.Do(func() { close(sp.closeCh) })
	return nil
}
