// Command operator runs the simulation server with the operator CLI of
// §6: a background line reader posts commands to a mutex-protected
// queue the main loop drains between ticks (§5).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pthm-cable/citycore/config"
	"github.com/pthm-cable/citycore/game"
	"github.com/pthm-cable/citycore/ids"
	"github.com/pthm-cable/citycore/query"
	"github.com/pthm-cable/citycore/renderer"
	"github.com/pthm-cable/citycore/sim"
)

var (
	configPath = flag.String("config", "", "Path to YAML config (empty = embedded defaults)")
	headless   = flag.Bool("headless", true, "Run without the debug viewer")
	maxTicks   = flag.Uint64("max-ticks", 0, "Stop after N ticks (0 = run until shutdown)")
	speed      = flag.Int("speed", 1, "Initial speed (0=paused 1=normal 2=fast 3=fastest)")
	savePath   = flag.String("save", "world", "Base path for save snapshots")
)

// commandQueue is the mutex-protected queue between the stdin reader
// goroutine and the main loop (§5).
type commandQueue struct {
	mu      sync.Mutex
	pending []string
}

func (q *commandQueue) push(line string) {
	q.mu.Lock()
	q.pending = append(q.pending, line)
	q.mu.Unlock()
}

func (q *commandQueue) drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

func main() {
	flag.Parse()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	config.MustInit(*configPath)
	g, err := game.New(config.Cfg())
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	if *speed >= 0 && *speed <= 3 {
		g.Scheduler.Speed = sim.Speed(*speed)
	}

	queue := &commandQueue{}
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			queue.push(scanner.Text())
		}
	}()

	var viewer *renderer.Viewer
	if !*headless {
		viewer = renderer.NewViewer(renderer.Queries{
			Buildings: g.Building,
			Transport: g.Transport,
			Stats:     g.Population,
			Overlays:  []query.GridOverlay{g.LandValue, g.ContaminationOverlay(), g.ProximityOverlay()},
		}, g.World.Side)
		viewer.Open("citycore")
		defer viewer.Close()
	}

	slog.Info("simulation started",
		"side", g.World.Side,
		"seed", g.GenResult.Seed,
		"attempts", g.GenResult.Attempts,
		"templates", g.Registry.Count(),
	)

	kicked := map[ids.PlayerID]bool{}
	running := true
	last := time.Now()

	for running {
		now := time.Now()
		wallDelta := now.Sub(last).Seconds()
		last = now

		g.Update(wallDelta)

		for _, line := range queue.drain() {
			if !handleCommand(g, line, kicked, &running) {
				// unknown command: remind the operator
				fmt.Println("unknown command; type 'help'")
			}
		}

		if *maxTicks > 0 && uint64(g.Scheduler.CurrentTick()) >= *maxTicks {
			running = false
		}

		if viewer != nil {
			viewer.Frame()
			if viewer.ShouldClose() {
				running = false
			}
		} else {
			time.Sleep(5 * time.Millisecond)
		}
	}

	slog.Info("shutdown complete", "tick", g.Scheduler.CurrentTick())
	os.Exit(0)
}

// handleCommand executes one operator command (case-insensitive) and
// reports whether it was recognized.
func handleCommand(g *game.Game, line string, kicked map[ids.PlayerID]bool, running *bool) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch strings.ToLower(fields[0]) {
	case "help":
		fmt.Println("commands: help status players kick <id> say <msg> save shutdown")

	case "status":
		fmt.Printf("tick=%d speed=%d population=%d contamination=%.0f\n",
			g.Scheduler.CurrentTick(),
			g.Scheduler.Speed,
			g.Population.TotalPopulation(),
			g.Population.GetStat(query.StatTotalContamination),
		)

	case "players":
		for p := ids.PlayerID(1); p <= ids.MaxPlayers; p++ {
			status := "connected"
			if kicked[p] {
				status = "kicked"
			}
			fmt.Printf("player %d: population=%d credits=%d health=%.0f %s\n",
				p, g.Population.PopulationOf(p), g.Credits.Balance(p), g.Population.HealthIndexOf(p), status)
		}

	case "kick":
		if len(fields) < 2 {
			fmt.Println("usage: kick <id>")
			return true
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || n > ids.MaxPlayers {
			fmt.Println("kick: invalid player id")
			return true
		}
		kicked[ids.PlayerID(n)] = true
		slog.Info("player kicked", "player", n)

	case "say":
		msg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
		slog.Info("broadcast", "message", msg)

	case "save":
		if err := g.Save(*savePath); err != nil {
			slog.Error("save failed", "error", err)
		} else {
			slog.Info("world saved", "path", *savePath)
		}

	case "shutdown":
		*running = false

	default:
		return false
	}
	return true
}
