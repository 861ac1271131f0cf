package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// SourceHealth is the last known state of one data source
type SourceHealth struct {
	LastSuccess time.Time `json:"last_success,omitempty"`
	LastBars    int       `json:"last_bars"`
	Failures    int       `json:"failures"`
	LastError   string    `json:"last_error,omitempty"`
}

// HealthChecker tracks fetch outcomes per data source
type HealthChecker struct {
	mu      sync.RWMutex
	sources map[string]*SourceHealth
	errors  []string
	now     func() time.Time
}

type HealthStatus struct {
	Status    string                  `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Uptime    string                  `json:"uptime"`
	Sources   map[string]SourceHealth `json:"sources"`
	Errors    []string                `json:"errors,omitempty"`
}

// maxHealthErrors caps the error history kept for the status report
const maxHealthErrors = 20

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		sources: make(map[string]*SourceHealth),
		errors:  make([]string, 0),
		now:     time.Now,
	}
}

// ObserveFetch records the outcome of one fetch of symbol from source
func (h *HealthChecker) ObserveFetch(source, symbol string, bars int, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.sources[source]
	if !ok {
		state = &SourceHealth{}
		h.sources[source] = state
	}

	if err != nil {
		state.Failures++
		state.LastError = symbol + ": " + err.Error()
		h.errors = append(h.errors, source+" "+state.LastError)
		if len(h.errors) > maxHealthErrors {
			h.errors = h.errors[len(h.errors)-maxHealthErrors:]
		}
		return
	}

	state.LastSuccess = h.now()
	state.LastBars = bars
	state.LastError = ""
}

// Status summarises the tracked sources. A source whose latest fetch failed
// makes the report degraded; when no source has ever succeeded it is unhealthy.
func (h *HealthChecker) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: h.now(),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
		Sources:   make(map[string]SourceHealth, len(h.sources)),
		Errors:    append([]string(nil), h.errors...),
	}

	succeeded := false
	for name, tracked := range h.sources {
		state := *tracked
		status.Sources[name] = state
		if !state.LastSuccess.IsZero() {
			succeeded = true
		}
		if state.LastError != "" {
			status.Status = "degraded"
		}
	}
	if len(h.sources) > 0 && !succeeded {
		status.Status = "unhealthy"
	}
	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Status()

	w.Header().Set("Content-Type", "application/json")
	switch health.Status {
	case "degraded":
		w.WriteHeader(http.StatusServiceUnavailable)
	case "unhealthy":
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(health)
}
