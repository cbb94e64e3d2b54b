// Command map-generator builds single delivery maps interactively
package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lixenwraith/courier/difficulty"
	"github.com/lixenwraith/courier/grid"
	"github.com/lixenwraith/courier/maze"
	"github.com/lixenwraith/courier/parameter"
	"github.com/lixenwraith/courier/persistence"
	"github.com/lixenwraith/courier/render"
)

func main() {
	reader := bufio.NewReader(os.Stdin)
	gen := maze.NewGenerator(maze.DefaultPolicy())
	runID := persistence.NewRunID()
	saved := 0

	for {
		fmt.Println("\n=== COURIER MAP GENERATOR ===")

		size := getInt(reader, fmt.Sprintf("Size (default %d): ", parameter.DefaultMapSize), parameter.DefaultMapSize)
		level := getInt(reader, fmt.Sprintf("Difficulty [%d-%d] (default %d): ", parameter.DifficultyMin, parameter.DifficultyMax, parameter.DifficultyInitial), parameter.DifficultyInitial)
		seed := uint64(getInt(reader, "Seed [0 = random] (default 0): ", 0))
		if seed == 0 {
			seed = rand.Uint64()
		}

		level = difficulty.Clamp(level)
		targets := difficulty.TargetsFor(level)
		rng := rand.New(rand.NewPCG(seed, seed))

		fmt.Println("\nGenerating...")
		startT := time.Now()
		g, report := gen.Generate(rng, size, targets.PickupCount(), targets.EmptyCount())
		dur := time.Since(startT)

		fmt.Printf("Done in %v after %d attempts (seed %d)\n", dur, report.Attempts, seed)
		fmt.Printf("Grid Dimensions: %dx%d\n", g.Size(), g.Size())
		if report.Fallback {
			fmt.Println("Status: Fallback layout (no placement succeeded)")
		} else {
			fmt.Printf("Pairs: %d of %d requested, Path cells: %d, Empty cells: %d\n",
				report.Pickups, targets.PickupCount(), g.Count(grid.Path), g.Count(grid.Empty))
		}

		fmt.Println(render.Text(g, nil))

		fmt.Print("\nSave map? [toml/csv/N]: ")
		kind, _ := reader.ReadString('\n')
		kind = strings.ToLower(strings.TrimSpace(kind))
		if kind == persistence.KindTOML || kind == persistence.KindCSV {
			if err := save(kind, runID, saved, level, g); err != nil {
				fmt.Printf("Save failed: %v\n", err)
			} else {
				saved++
				fmt.Printf("Saved to %s (run %s)\n", parameter.SessionRecordPath, runID)
			}
		}

		fmt.Print("\nGenerate another? [Y/n]: ")
		cont, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(cont)) == "n" {
			break
		}
	}
}

// save appends g as an unplayed record
func save(kind, runID string, iteration, level int, g *grid.Grid) error {
	sink, err := persistence.NewSink(kind, parameter.SessionRecordPath)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := sink.Init(ctx); err != nil {
		return err
	}
	defer sink.Close()

	return sink.Save(ctx, persistence.Record{
		RunID:      runID,
		Iteration:  iteration,
		Agent:      "generator",
		Difficulty: level,
		Suggested:  level,
		Grid:       g.Rows(),
		CreatedAt:  time.Now(),
	})
}

// --- Input Helpers ---

func getInt(r *bufio.Reader, prompt string, def int) int {
	fmt.Print(prompt)
	s, _ := r.ReadString('\n')
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return def
	}
	return v
}
