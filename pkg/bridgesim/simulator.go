// Package bridgesim is an in-process stand-in for the printer bridge, used
// by tests that exercise the client over real HTTP.
package bridgesim

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"zebraprint/pkg/browserprint"
)

// WriteRequest is a recorded call to the write endpoint.
type WriteRequest struct {
	Device browserprint.Device `json:"device"`
	Data   string              `json:"data"`
}

// Simulator serves available, default, write and read from memory.
type Simulator struct {
	mu sync.Mutex

	printers   []any
	descriptor string
	responses  map[string]string
	lastWrite  string
	writes     []WriteRequest
	requests   map[string]int
	failures   map[string]int

	logger log.FieldLogger
}

func New(logger log.FieldLogger) *Simulator {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Simulator{
		responses: make(map[string]string),
		requests:  make(map[string]int),
		failures:  make(map[string]int),
		logger:    logger.WithField("component", "bridgesim"),
	}
}

// SetPrinters replaces the list served by the available endpoint.
func (s *Simulator) SetPrinters(devs ...browserprint.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.printers = make([]any, 0, len(devs))
	for _, d := range devs {
		s.printers = append(s.printers, d)
	}
}

// SetPrinterIDs makes the available endpoint list bare identifiers.
func (s *Simulator) SetPrinterIDs(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.printers = make([]any, 0, len(ids))
	for _, id := range ids {
		s.printers = append(s.printers, id)
	}
}

// SetDefault sets the raw body served by the default endpoint.
func (s *Simulator) SetDefault(descriptor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.descriptor = descriptor
}

// Respond makes the next read after writing cmd return reply.
func (s *Simulator) Respond(cmd, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[cmd] = reply
}

// FailNext makes the next n requests to endpoint answer 500.
func (s *Simulator) FailNext(endpoint string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[endpoint] = n
}

// Writes returns the write requests received so far.
func (s *Simulator) Writes() []WriteRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]WriteRequest(nil), s.writes...)
}

// Requests returns how many requests endpoint received, failed ones included.
func (s *Simulator) Requests(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[endpoint]
}

func (s *Simulator) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /available", s.guard("available", s.handleAvailable))
	mux.HandleFunc("GET /default", s.guard("default", s.handleDefault))
	mux.HandleFunc("POST /write", s.guard("write", s.handleWrite))
	mux.HandleFunc("POST /read", s.guard("read", s.handleRead))
	return mux
}

func (s *Simulator) guard(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[endpoint]++
		fail := s.failures[endpoint] > 0
		if fail {
			s.failures[endpoint]--
		}
		s.mu.Unlock()

		if fail {
			s.logger.Debugf("Failing %s request", endpoint)
			http.Error(w, "simulated failure", http.StatusInternalServerError)
			return
		}
		next(w, r)
	}
}

func (s *Simulator) handleAvailable(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	payload := struct {
		Printer []any `json:"printer"`
	}{s.printers}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Simulator) handleDefault(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	descriptor := s.descriptor
	s.mu.Unlock()

	if descriptor == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = io.WriteString(w, descriptor)
}

func (s *Simulator) handleWrite(w http.ResponseWriter, r *http.Request) {
	var req WriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("bad request: %v", err), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.writes = append(s.writes, req)
	s.lastWrite = req.Data
	s.mu.Unlock()

	s.logger.Debugf("Write to %q: %q", req.Device.Name, req.Data)
	w.WriteHeader(http.StatusOK)
}

func (s *Simulator) handleRead(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	reply := s.responses[s.lastWrite]
	s.lastWrite = ""
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain")
	_, _ = io.WriteString(w, reply)
}

// Descriptor renders dev in the default endpoint's plaintext format.
func Descriptor(dev browserprint.Device) string {
	lines := []string{
		"Device: " + dev.Name,
		"Type: " + dev.DeviceType,
		"Connection: " + dev.Connection,
		"UID: " + dev.UID,
		"Provider: " + dev.Provider,
		"Manufacturer: " + dev.Manufacturer,
		fmt.Sprintf("Version: %d", dev.Version),
	}
	return strings.Join(lines, "\n")
}
