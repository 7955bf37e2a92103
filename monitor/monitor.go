// Package monitor serves replay progress over HTTP.
package monitor

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"strconv"
	"sync"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mastercactapus/pcbmill/hpgl"
	"github.com/mastercactapus/pcbmill/machine/lpkf"
)

var states = []lpkf.State{
	lpkf.Idle,
	lpkf.Streaming,
	lpkf.ToolChangeWait,
	lpkf.SpindleConfirm,
	lpkf.Drained,
	lpkf.Closed,
}

// Progress is published on /events/progress after every command.
type Progress struct {
	Index    int
	Total    int
	Command  string
	Response string `json:",omitempty"`
}

// Status is published on /events/state on every state change.
type Status struct {
	State string
	Index int
	Total int
}

// Monitor is an lpkf.Observer that exposes what it sees.
type Monitor struct {
	http.Handler

	sse *sse.Server

	commands *prometheus.CounterVec
	prompts  prometheus.Counter
	state    *prometheus.GaugeVec
	progress prometheus.Gauge
	total    prometheus.Gauge

	mx     sync.RWMutex
	stream *hpgl.Stream
	status Status
}

var _ lpkf.Observer = &Monitor{}

// New creates a Monitor with its own metrics registry.
func New() *Monitor {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	m := &Monitor{
		sse: sse.NewServer(&sse.Options{
			Logger: log.New(ioutil.Discard, "", 0),
		}),
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pcbmill_commands_sent_total",
			Help: "Commands written to the machine, by kind.",
		}, []string{"kind"}),
		prompts: f.NewCounter(prometheus.CounterOpts{
			Name: "pcbmill_operator_prompts_total",
			Help: "Operator prompts shown during replay.",
		}),
		state: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pcbmill_session_state",
			Help: "1 for the current replay state.",
		}, []string{"state"}),
		progress: f.NewGauge(prometheus.GaugeOpts{
			Name: "pcbmill_stream_position",
			Help: "Index of the last command handled.",
		}),
		total: f.NewGauge(prometheus.GaugeOpts{
			Name: "pcbmill_stream_commands",
			Help: "Number of commands in the stream being replayed.",
		}),
		status: Status{State: lpkf.Idle.String()},
	}
	m.setState(lpkf.Idle)

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods("GET")
	r.HandleFunc("/api/stream", m.serveStream).Methods("GET")
	r.HandleFunc("/api/status", m.serveStatus).Methods("GET")
	r.PathPrefix("/events/").Handler(m.sse)
	m.Handler = r

	return m
}

// SetStream sets the stream served on /api/stream.
func (m *Monitor) SetStream(s *hpgl.Stream) {
	m.mx.Lock()
	m.stream = s
	m.status.Total = s.Len()
	m.mx.Unlock()
	m.total.Set(float64(s.Len()))
}

func (m *Monitor) setState(s lpkf.State) {
	for _, st := range states {
		v := 0.0
		if st == s {
			v = 1
		}
		m.state.WithLabelValues(st.String()).Set(v)
	}
}

func (m *Monitor) publish(channel string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("ERROR: marshal json: %+v", err)
		return
	}
	m.sse.SendMessage(channel, sse.SimpleMessage(string(data)))
}

func (m *Monitor) StateChanged(s lpkf.State) {
	m.setState(s)
	if s == lpkf.ToolChangeWait {
		m.prompts.Inc()
	}

	m.mx.Lock()
	m.status.State = s.String()
	status := m.status
	m.mx.Unlock()

	m.publish("/events/state", status)
}

func (m *Monitor) CommandSent(index int, cmd hpgl.Command, resp []byte) {
	m.commands.WithLabelValues(cmd.Kind.String()).Inc()
	m.progress.Set(float64(index + 1))

	m.mx.Lock()
	m.status.Index = index + 1
	p := Progress{
		Index:    index + 1,
		Total:    m.status.Total,
		Command:  cmd.Text,
		Response: string(bytes.TrimSpace(resp)),
	}
	m.mx.Unlock()

	m.publish("/events/progress", p)
}

func (m *Monitor) serveStream(w http.ResponseWriter, req *http.Request) {
	m.mx.RLock()
	s := m.stream
	m.mx.RUnlock()
	if s == nil {
		http.Error(w, "no stream generated", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	if err != nil {
		log.Println("ERROR: encode stream:", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

func (m *Monitor) serveStatus(w http.ResponseWriter, req *http.Request) {
	m.mx.RLock()
	status := m.status
	m.mx.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(status)
	if err != nil {
		log.Println("ERROR: encode:", err)
	}
}

// Close disconnects every event client.
func (m *Monitor) Close() {
	m.sse.Shutdown()
}
