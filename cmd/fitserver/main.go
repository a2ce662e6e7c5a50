// Command fitserver is an illustrative demonstrator of the irffit worker
// contract over the wire: one WebSocket connection per session id streams
// Progress/Result/Error messages for FitFermiEdge/EstimateIRF requests
// submitted over that same connection, and /metrics exposes the package's
// Prometheus collectors for scraping.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourusername/irffit/pkg/irffit"
)

var addr = flag.String("addr", ":8080", "HTTP listen address")

func main() {
	flag.Parse()

	registry := prometheus.NewRegistry()
	metrics := irffit.NewMetrics(registry)
	pool := irffit.NewHostPool(metrics)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler(pool))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		log.Printf("fitserver listening on %s", *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("fitserver: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("fitserver shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("fitserver: shutdown error: %v", err)
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wireRequest is the JSON envelope a websocket client sends: Type selects
// which request fields apply, mirroring SPEC_FULL.md §6's tagged message
// union.
type wireRequest struct {
	Type string `json:"type"`
	ID   string `json:"id"`

	// fit_fermi_edge fields
	Energy           []float64 `json:"energy,omitempty"`
	ObservedSpectrum []float64 `json:"observed_spectrum,omitempty"`
	Temp             float64   `json:"temp"`
	FitTemp          bool      `json:"fit_temp,omitempty"`
	UseGlobalOpt     bool      `json:"use_global_opt,omitempty"`

	// estimate_irf fields
	Bounds        *wireBounds `json:"bounds,omitempty"`
	MaxIterations int         `json:"max_iterations,omitempty"`
}

type wireBounds struct {
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}

func (r wireRequest) toRequest() (irffit.Request, error) {
	switch r.Type {
	case "fit_fermi_edge":
		return irffit.FitFermiEdgeRequest{
			ID: r.ID,
			FermiEdgeFitRequest: irffit.FermiEdgeFitRequest{
				Energy:           r.Energy,
				ObservedSpectrum: r.ObservedSpectrum,
				Temp:             r.Temp,
				FitTemp:          r.FitTemp,
				UseGlobalOpt:     r.UseGlobalOpt,
			},
		}, nil
	case "estimate_irf":
		req := irffit.IRFEstimationRequest{
			ObservedSpectrum: r.ObservedSpectrum,
			Temp:             r.Temp,
			MaxIterations:    r.MaxIterations,
		}
		if r.Bounds != nil {
			req.Bounds = &irffit.OptimizationBounds{Lower: r.Bounds.Lower, Upper: r.Bounds.Upper}
		}
		return irffit.EstimateIRFRequest{ID: r.ID, IRFEstimationRequest: req}, nil
	default:
		return nil, irffit.ErrUnknownMessageType
	}
}

// wsConn serializes writes onto one websocket.Conn from the concurrent
// progress/result/error callbacks a Host invokes, the same send-channel
// shape the teacher's wsClient uses to keep a single goroutine owning the
// connection's write side.
type wsConn struct {
	conn   *websocket.Conn
	sendCh chan any
	done   chan struct{}
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn, sendCh: make(chan any, 64), done: make(chan struct{})}
}

func (c *wsConn) send(msg any) {
	select {
	case c.sendCh <- msg:
	case <-c.done:
	default:
		log.Printf("fitserver: dropping message, send channel full")
	}
}

func (c *wsConn) writePump() {
	defer c.conn.Close()
	for {
		select {
		case msg, ok := <-c.sendCh:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// wireProgress/wireResult/wireError are the outgoing counterparts of
// wireRequest: irffit.Progress/Result/Error carry no JSON shape of their
// own (the library stays wire-format agnostic), so cmd/fitserver tags each
// with the "type" discriminator SPEC_FULL.md §6 specifies.
type wireProgress struct {
	Type      string  `json:"type"`
	ID        string  `json:"id"`
	Iteration int     `json:"iteration"`
	Fitness   float64 `json:"fitness"`
	Progress  float64 `json:"progress"`
}

type wireResult struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Result any    `json:"result"`
}

type wireError struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Error string `json:"error"`
}

func wsHandler(pool *irffit.HostPool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			http.Error(w, "session query parameter is required", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("fitserver: websocket upgrade failed: %v", err)
			return
		}

		ws := newWSConn(conn)
		var closeOnce sync.Once
		closeWS := func() { closeOnce.Do(func() { close(ws.done) }) }
		defer closeWS()

		go ws.writePump()

		host := pool.Get(sessionID)

		for {
			var wire wireRequest
			if err := conn.ReadJSON(&wire); err != nil {
				return
			}

			req, err := wire.toRequest()
			if err != nil {
				ws.send(wireError{Type: "error", ID: wire.ID, Error: err.Error()})
				continue
			}

			onProgress := func(p irffit.Progress) {
				ws.send(wireProgress{Type: "progress", ID: p.ID, Iteration: p.Iteration, Fitness: p.Fitness, Progress: p.Percent})
			}
			onResult := func(res irffit.Result) {
				ws.send(wireResult{Type: "result", ID: res.ID, Result: res.Result})
			}
			onError := func(e irffit.Error) {
				ws.send(wireError{Type: "error", ID: e.ID, Error: e.Err.Error()})
			}

			if err := host.Submit(req, onProgress, onResult, onError); err != nil {
				ws.send(wireError{Type: "error", ID: wire.ID, Error: err.Error()})
			}
		}
	}
}
