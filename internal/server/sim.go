package server

import "time"

// Simulation cadence. The step is capped so a stalled scheduler cannot
// fast-forward platform timers in one giant tick.
const (
	tickRate   = 60
	maxTickDur = 250 * time.Millisecond
)

// simulationLoop advances platform timers and platform effects at a fixed
// rate until the server stops. Clients observe the results on the next
// update-triggered broadcast.
func (s *Server) simulationLoop() {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			if elapsed > maxTickDur {
				elapsed = maxTickDur
			}
			s.world.Step(elapsed.Seconds())
		}
	}
}
