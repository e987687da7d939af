package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	levels = []string{"E", "W", "I", "I", "I", "D", "V"}
	tags   = []string{"wifi", "can", "obd", "mqtt", "sleep"}
)

func main() {
	target := flag.String("addr", "127.0.0.1:5000", "UDP address of the log viewer")
	concurrency := flag.Int("c", 4, "Number of concurrent senders")
	duration := flag.Duration("d", 30*time.Second, "Duration of the load test")
	rps := flag.Int("rps", 1000, "Datagrams per second limit")
	malformed := flag.Float64("malformed", 0.05, "Share of datagrams sent without the bracketed prefix")
	flag.Parse()

	log.Printf("Starting UDP load test on %s", *target)
	log.Printf("Concurrency: %d, Duration: %s, RPS: %d, Malformed: %.2f", *concurrency, *duration, *rps, *malformed)

	var wg sync.WaitGroup
	var sentCount, errorCount atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(*rps), 100) // Allow bursts up to 100
	start := time.Now()

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			conn, err := net.Dial("udp", *target)
			if err != nil {
				log.Printf("worker %d: dial failed: %v", workerID, err)
				return
			}
			defer conn.Close()

			for {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				if _, err := conn.Write([]byte(line(workerID, *malformed))); err != nil {
					errorCount.Add(1)
					continue
				}
				sentCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	elapsed := time.Since(start).Seconds()
	log.Println("Load test finished.")
	log.Printf("Datagrams sent: %d", sentCount.Load())
	log.Printf("Errors: %d", errorCount.Load())
	log.Printf("Actual RPS: %.2f", float64(sentCount.Load())/elapsed)
}

// line renders one datagram in the [ts][L][task][tag] message form, or a bare
// message for the malformed share.
func line(workerID int, malformed float64) string {
	id := uuid.NewString()
	if rand.Float64() < malformed {
		return fmt.Sprintf("garbage from worker %d %s\r\n", workerID, id)
	}
	return fmt.Sprintf("[%d][%s][worker-%d][%s] load test event %s\r\n",
		time.Now().UnixMilli(),
		levels[rand.IntN(len(levels))],
		workerID,
		tags[rand.IntN(len(tags))],
		id,
	)
}
