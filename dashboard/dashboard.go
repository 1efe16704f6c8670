// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

// Package dashboard serves a small live view of supervisor activity over
// HTTP, built on top of go-echarts/statsview's runtime stats server.
package dashboard

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/jetsetilly/hotload/logger"
)

// Counters tracks the running totals the dashboard displays. The counts are
// updated with atomic operations, so the Supervisor's single goroutine and
// the dashboard's HTTP handlers need no lock for them; the last-cycle
// duration and time are guarded by mu.
type Counters struct {
	Builds         atomic.Int64
	BuildsFailed   atomic.Int64
	Patches        atomic.Int64
	PatchesSkipped atomic.Int64

	mu          sync.Mutex
	lastCycle   time.Duration
	lastCycleAt time.Time
}

// RecordCycle stores how long the most recent watch→build→diff→patch cycle
// took.
func (c *Counters) RecordCycle(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCycle = d
	c.lastCycleAt = time.Now()
}

// LastCycle returns the duration and timestamp of the most recently
// recorded cycle.
func (c *Counters) LastCycle() (time.Duration, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCycle, c.lastCycleAt
}

// Dashboard wraps a statsview.Manager, adding hotload's own counters as an
// additional view alongside the library's default runtime (goroutine/heap)
// charts.
type Dashboard struct {
	counters *Counters
	manager  *statsview.Manager
}

// New creates a Dashboard that will serve on addr once Start is called, with
// a hotload-specific view (builds, patches, last-cycle duration) registered
// alongside statsview's own default runtime charts.
func New(addr string, counters *Counters) *Dashboard {
	viewer.AddRichItem(&countersView{counters: counters})

	mgr := statsview.New(
		viewer.WithAddr(addr),
		viewer.WithTheme(viewer.ThemeWesteros),
	)
	return &Dashboard{counters: counters, manager: mgr}
}

// countersView renders Counters as a statsview rich item: a small HTML
// fragment refreshed on each poll, alongside the library's own goroutine/heap
// charts.
type countersView struct {
	counters *Counters
}

func (v *countersView) GetName() string { return "hotload" }

func (v *countersView) GetHTML() string {
	lastCycle, lastAt := v.counters.LastCycle()
	lastCycleStr := "n/a"
	if !lastAt.IsZero() {
		lastCycleStr = fmt.Sprintf("%s (at %s)", lastCycle, lastAt.Format(time.RFC3339))
	}
	return fmt.Sprintf(
		`<div class="hotload-counters">`+
			`<p>builds: %d (failed: %d)</p>`+
			`<p>patches: %d (skipped: %d)</p>`+
			`<p>last cycle: %s</p>`+
			`</div>`,
		v.counters.Builds.Load(), v.counters.BuildsFailed.Load(),
		v.counters.Patches.Load(), v.counters.PatchesSkipped.Load(),
		lastCycleStr,
	)
}

// Start begins serving the dashboard in a background goroutine. Start does
// not block; call Stop (or let process exit) to release the listener.
func (d *Dashboard) Start() {
	logger.Log("dashboard", "starting statsview")
	d.manager.Start()
}

// Stop shuts the dashboard's HTTP server down.
func (d *Dashboard) Stop() {
	d.manager.Stop()
}
