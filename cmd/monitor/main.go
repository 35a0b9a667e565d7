package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/textml/classifier-service/pkg/client"
)

// serviceStatus tracks one classifier worker seen on the heartbeat subjects.
type serviceStatus struct {
	client.HealthStatus
	LastSeen  time.Time
	FirstSeen time.Time
}

type monitor struct {
	mu       sync.RWMutex
	services map[string]*serviceStatus
}

func main() {
	var natsURL = flag.String("nats", nats.DefaultURL, "NATS server URL")
	var interval = flag.Duration("interval", 5*time.Second, "Refresh interval")
	flag.Parse()

	nc, err := nats.Connect(*natsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer nc.Close()

	m := &monitor{services: make(map[string]*serviceStatus)}

	_, err = nc.Subscribe("models.*.heartbeat", func(msg *nats.Msg) {
		var status client.HealthStatus
		if err := json.Unmarshal(msg.Data, &status); err != nil {
			return
		}
		m.record(status)
	})
	if err != nil {
		log.Fatalf("Failed to subscribe to heartbeats: %v", err)
	}

	fmt.Printf("Watching classifier heartbeats on %s\n", *natsURL)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			m.print()
		case <-sig:
			return
		}
	}
}

func (m *monitor) record(status client.HealthStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	existing, ok := m.services[status.ModelName]
	if !ok {
		m.services[status.ModelName] = &serviceStatus{
			HealthStatus: status,
			LastSeen:     now,
			FirstSeen:    now,
		}
		return
	}
	existing.HealthStatus = status
	existing.LastSeen = now
}

func (m *monitor) print() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.services) == 0 {
		fmt.Println("No classifiers seen yet")
		return
	}

	names := make([]string, 0, len(m.services))
	for name := range m.services {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("\n%-40s %-8s %-10s %-22s %s\n", "MODEL", "STATUS", "LAST SEEN", "ENDPOINT", "LABELS")
	for _, name := range names {
		s := m.services[name]
		status := s.Status
		if time.Since(s.LastSeen) > 2*time.Minute {
			status = "stale"
		}
		fmt.Printf("%-40s %-8s %-10s %-22s %v\n",
			name, status, time.Since(s.LastSeen).Round(time.Second), s.Endpoint, s.Labels)
	}
}
