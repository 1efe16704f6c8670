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

// Package supervisor drives the full hotload cycle: watch source paths,
// debounce change notifications, and sequence build → parse → diff →
// patch, while guaranteeing the target process is killed on every exit
// path.
package supervisor

import (
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jetsetilly/hotload/config"
	"github.com/jetsetilly/hotload/console"
	"github.com/jetsetilly/hotload/crunched"
	"github.com/jetsetilly/hotload/dashboard"
	"github.com/jetsetilly/hotload/diff"
	"github.com/jetsetilly/hotload/elf"
	"github.com/jetsetilly/hotload/gdb"
	"github.com/jetsetilly/hotload/graphdump"
	"github.com/jetsetilly/hotload/herrors"
	"github.com/jetsetilly/hotload/logger"
	"github.com/jetsetilly/hotload/patch"
	"github.com/jetsetilly/hotload/target"
)

const debounce = 10 * time.Millisecond

// historyDepth is how many past builds' images are retained for
// dumpHistoryGraph to reach back through.
const historyDepth = 5

// graphDumpPath and graphDumpHistoryPath are where 'g' and 'b' console
// keypresses write their graphviz dumps.
const (
	graphDumpPath        = "hotload-graph.dot"
	graphDumpHistoryPath = "hotload-graph-previous.dot"
)

// Supervisor holds the state a single run of the pipeline needs: the
// currently loaded Program, the target process, and the gdb connection.
// All of it is owned by the single goroutine that calls Run; the only
// state touched from outside that goroutine is the Target, via its own
// idempotent Kill.
type Supervisor struct {
	cfg *config.Config

	target *target.Target
	client *gdb.Client
	prog   *elf.Program

	watcher  *fsnotify.Watcher
	con      *console.Console
	dash     *dashboard.Dashboard
	counters dashboard.Counters
	history  *crunched.History
}

// New constructs a Supervisor from cfg. It does not start anything; call
// Run.
func New(cfg *config.Config) *Supervisor {
	return &Supervisor{cfg: cfg}
}

// Run executes the Startup/Watching/On-change/Shutdown state machine. It
// returns a non-nil error only for the four fatal startup failures named
// in the design: initial build failure, target spawn failure, ELF parse
// failure, or a non-retryable connect failure. Every other error —
// rebuild, reparse, or patch failures arising after Startup — is logged
// and the loop continues. A clean interrupt (SIGINT/SIGTERM) returns nil.
func (s *Supervisor) Run() error {
	if err := s.startup(); err != nil {
		return err
	}
	defer s.shutdown()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	defer func() {
		if r := recover(); r != nil {
			logger.Logf("supervisor", "panic: %v", r)
			s.target.Kill()
			panic(r)
		}
	}()

	events, errs := s.drain()

	for {
		select {
		case <-sigCh:
			logger.Log("supervisor", "interrupt received, shutting down")
			return nil

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Logf("supervisor", "watcher error: %v", err)

		case _, ok := <-events:
			if !ok {
				return nil
			}
			s.onChange()

		case k, ok := <-s.con.Keys():
			if !ok {
				return nil
			}
			if k == 'q' {
				logger.Log("supervisor", "quit requested from console")
				return nil
			}
			s.onKeypress(k)
		}
	}
}

// onKeypress handles a console keypress other than 'q' (quit, handled
// directly in Run): 'r' forces an immediate rebuild/patch cycle, 'g' dumps
// the current Program's graph, and 'b' dumps the graph of the build one
// before the current one.
func (s *Supervisor) onKeypress(k byte) {
	switch k {
	case 'r':
		logger.Log("supervisor", "rebuild requested from console")
		s.onChange()
	case 'g':
		s.dumpGraph(graphDumpPath, s.prog)
	case 'b':
		s.dumpHistoryGraph()
	}
}

// startup runs the initial build, spawns the target, connects to the
// remote debug endpoint, parses the initial Program, and registers the
// filesystem watcher. Any failure here is fatal.
func (s *Supervisor) startup() error {
	logger.SetVerbose(s.cfg.Verbose)
	logger.Log("supervisor", "startup: building")

	if err := s.build(); err != nil {
		return herrors.Errorf(herrors.BuildFailed, "supervisor: initial build: %v", err)
	}

	t, err := target.Spawn(s.cfg.Emulator)
	if err != nil {
		return err
	}
	s.target = t

	logger.Logf("supervisor", "connecting to %s", s.cfg.GDBAddr)
	client, err := gdb.DialWithBackoff(s.cfg.GDBAddr)
	if err != nil {
		s.target.Kill()
		return err
	}
	client.Verbose = s.cfg.Verbose
	s.client = client

	prog, err := s.parse()
	if err != nil {
		s.target.Kill()
		return err
	}
	s.prog = prog
	s.history = crunched.NewHistory(historyDepth)
	s.pushHistory(prog.Image)

	s.cfg.ValidateCheckpoints(prog, func(name string) {
		logger.Logf("supervisor", "checkpoint %q is not a known item name", name)
	})

	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.target.Kill()
		return herrors.Errorf(herrors.IoError, "supervisor: creating watcher: %v", err)
	}
	s.watcher = w

	for _, root := range s.cfg.Src {
		if err := watchRecursive(w, root); err != nil {
			s.target.Kill()
			return herrors.Errorf(herrors.IoError, "supervisor: watching %q: %v", root, err)
		}
	}

	if s.cfg.DashboardAddr != "" {
		s.dash = dashboard.New(s.cfg.DashboardAddr, &s.counters)
		s.dash.Start()
	}

	c, err := console.Open()
	if err != nil {
		logger.Logf("supervisor", "console: %v", err)
	}
	s.con = c

	logger.Log("supervisor", "startup complete, watching for changes")
	return nil
}

// watchRecursive walks root once, registering every directory it finds
// (including root itself) with w. Newly created subdirectories are picked
// up incrementally as fsnotify.Create events arrive for them, from drain.
func watchRecursive(w *fsnotify.Watcher, root string) error {
	return filepathWalkDir(root, func(path string, isDir bool) error {
		if isDir {
			return w.Add(path)
		}
		return nil
	})
}

// drain reads from the watcher's Events channel, debouncing bursts of
// events into a single notification per debounce window, and forwards the
// watcher's Errors channel unchanged. Both channels close when the watcher
// itself is closed.
func (s *Supervisor) drain() (<-chan struct{}, <-chan error) {
	out := make(chan struct{})
	errs := make(chan error)

	go func() {
		defer close(out)
		defer close(errs)

		var timer *time.Timer
		var timerCh <-chan time.Time

		for {
			select {
			case ev, ok := <-s.watcher.Events:
				if !ok {
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						_ = s.watcher.Add(ev.Name)
					}
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(debounce)
				}
				timerCh = timer.C

			case <-timerCh:
				timerCh = nil
				out <- struct{}{}

			case err, ok := <-s.watcher.Errors:
				if !ok {
					return
				}
				errs <- err
			}
		}
	}()

	return out, errs
}

// onChange runs one build→parse→diff→patch cycle. Every failure inside
// this cycle is logged and the Supervisor remains in Watching; only
// Startup failures are fatal.
func (s *Supervisor) onChange() {
	start := time.Now()
	defer func() {
		s.counters.RecordCycle(time.Since(start))
	}()

	logger.Log("supervisor", "change detected, rebuilding")

	if err := s.build(); err != nil {
		logger.Logf("supervisor", "build failed: %v", err)
		s.counters.BuildsFailed.Add(1)
		return
	}
	s.counters.Builds.Add(1)

	newProg, err := s.parse()
	if err != nil {
		logger.Logf("supervisor", "parse failed: %v", err)
		return
	}

	entries := diff.Compute(s.prog, newProg)
	if len(entries) == 0 {
		logger.Log("supervisor", "no changes to patch")
		s.prog = newProg
		s.pushHistory(newProg.Image)
		return
	}

	for _, e := range entries {
		s.logEntry(e)
	}

	if err := patch.Apply(s.client, newProg.Image, entries); err != nil {
		logger.Logf("supervisor", "patch failed: %v", err)
		s.counters.PatchesSkipped.Add(1)
		return
	}

	logger.Logf("supervisor", "patched %d item(s)", len(entries))
	s.counters.Patches.Add(1)

	// Replacing the Program (and its backing image) only after a
	// successful patch is what fixes the known defect in the source this
	// is grounded on: the Program and its image are always swapped
	// together, so there is never a stale Program compared against on
	// the next cycle.
	s.prog = newProg
	s.pushHistory(newProg.Image)
}

// pushHistory retains image in the build history, crunched to keep the
// backlog of superseded images cheap.
func (s *Supervisor) pushHistory(image []byte) {
	d := crunched.NewQuick(len(image))
	copy(*d.Data(), image)
	s.history.Push(d)
}

// dumpGraph writes a graphviz dump of prog to path, logging the outcome.
func (s *Supervisor) dumpGraph(path string, prog *elf.Program) {
	f, err := os.Create(path)
	if err != nil {
		logger.Logf("supervisor", "graph dump: %v", err)
		return
	}
	defer f.Close()

	if err := graphdump.Dump(f, prog); err != nil {
		logger.Logf("supervisor", "graph dump: %v", err)
		return
	}
	logger.Logf("supervisor", "wrote graph dump to %s", path)
}

// dumpHistoryGraph re-parses the build one before the current one from the
// retained image history and dumps its graph, so a regression can be
// compared against what was loaded just before it.
func (s *Supervisor) dumpHistoryGraph() {
	i := s.history.Len() - 2
	d := s.history.At(i)
	if d == nil {
		logger.Log("supervisor", "no earlier build in history to dump")
		return
	}

	prog, err := elf.Parse(*d.Data())
	if err != nil {
		logger.Logf("supervisor", "graph dump: reparsing history entry: %v", err)
		return
	}
	s.dumpGraph(graphDumpHistoryPath, prog)
}

func (s *Supervisor) logEntry(e diff.Entry) {
	level := "INFO"
	if !s.cfg.IsCheckpoint(e.Name) {
		level = "WARN"
	}
	logger.Logf("supervisor", "%s: %s %q", level, e.Kind, e.Name)
}

// build runs the configured build command, returning a BuildFailed error
// if it exits non-zero.
func (s *Supervisor) build() error {
	cmd := exec.Command("sh", "-c", s.cfg.Build)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return herrors.Errorf(herrors.BuildFailed, "supervisor: build: %v: %s", err, out)
	}
	return nil
}

// parse reads and parses the configured ELF output.
func (s *Supervisor) parse() (*elf.Program, error) {
	b, err := os.ReadFile(s.cfg.ELF)
	if err != nil {
		return nil, herrors.Errorf(herrors.IoError, "supervisor: reading %q: %v", s.cfg.ELF, err)
	}
	return elf.Parse(b)
}

// shutdown kills the target and releases terminal/watcher resources. It is
// always called via defer from Run, covering normal return, an interrupt,
// and a re-panicking panic handler: shutdown is deferred first, so it still
// runs after the panic handler's own deferred recover has re-panicked.
func (s *Supervisor) shutdown() {
	logger.Log("supervisor", "shutting down")

	if s.target != nil {
		s.target.Kill()
	}
	if s.con != nil {
		_ = s.con.Close()
	}
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	if s.dash != nil {
		s.dash.Stop()
	}
	if s.client != nil {
		_ = s.client.Close()
	}
}

// KillFunc exposes the target's kill closure for an interrupt or panic
// handler installed outside the Supervisor (e.g. cmd/hotload's top-level
// recover) to hold without reaching into Supervisor's fields.
func (s *Supervisor) KillFunc() func() {
	if s.target == nil {
		return func() {}
	}
	return s.target.KillFunc()
}
