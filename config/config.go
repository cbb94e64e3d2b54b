package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/courier/agent"
	"github.com/lixenwraith/courier/difficulty"
	"github.com/lixenwraith/courier/genetic"
	"github.com/lixenwraith/courier/genetic/fitness"
	"github.com/lixenwraith/courier/maze"
	"github.com/lixenwraith/courier/parameter"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// Config is the full run configuration as stored in TOML
type Config struct {
	GA         GAConfig         `toml:"ga"`
	Map        MapConfig        `toml:"map"`
	Weights    fitness.Weights  `toml:"weights"`
	Agents     AgentsConfig     `toml:"agents"`
	Difficulty DifficultyConfig `toml:"difficulty"`
	Generator  GeneratorConfig  `toml:"generator"`
	Run        RunConfig        `toml:"run"`
	Storage    StorageConfig    `toml:"storage"`
}

type GAConfig struct {
	PopulationSize  int                 `toml:"population_size"`
	Generations     int                 `toml:"generations"`
	CrossoverRate   float64             `toml:"crossover_rate"`
	MutationRate    float64             `toml:"mutation_rate"`
	Parallelism     int                 `toml:"parallelism"`
	Selection       string              `toml:"selection"`
	TournamentSize  int                 `toml:"tournament_size"`
	MutationWeights genetic.TileWeights `toml:"mutation_weights"`
}

type MapConfig struct {
	Size              int `toml:"size"`
	InitialDifficulty int `toml:"initial_difficulty"`
}

// AgentConfig mirrors agent.Params with a textual planner
type AgentConfig struct {
	ErrorRate       float64 `toml:"error_rate"`
	ErrorDecay      float64 `toml:"error_decay"`
	Patience        int     `toml:"patience"`
	BacktrackChance float64 `toml:"backtrack_chance"`
	RevisitPenalty  int     `toml:"revisit_penalty"`
	TimePerStep     float64 `toml:"time_per_step"`
	MaxSteps        int     `toml:"max_steps"`
	MaxResets       int     `toml:"max_resets"`
	Planner         string  `toml:"planner"`
}

type AgentsConfig struct {
	Cautious AgentConfig `toml:"cautious"`
	Balanced AgentConfig `toml:"balanced"`
	Optimal  AgentConfig `toml:"optimal"`
}

type DifficultyConfig struct {
	MaxAttempts int `toml:"max_attempts"`
}

type GeneratorConfig struct {
	BandAttempts []int `toml:"band_attempts"`
	Ceiling      int   `toml:"ceiling"`
}

type RunConfig struct {
	Iterations int `toml:"iterations"`
	// Seed 0 draws a random seed at startup
	Seed uint64 `toml:"seed"`
	// Agents names the simulated solvers, in play order
	Agents []string `toml:"agents"`
}

type StorageConfig struct {
	Kind string `toml:"kind"`
	Path string `toml:"path"`
}

// Default returns the built-in configuration
func Default() Config {
	ga := genetic.DefaultConfig()
	policy := maze.DefaultPolicy()

	names := make([]string, len(agent.Kinds))
	for i, k := range agent.Kinds {
		names[i] = k.String()
	}

	return Config{
		GA: GAConfig{
			PopulationSize:  ga.PopulationSize,
			Generations:     ga.Generations,
			CrossoverRate:   ga.CrossoverRate,
			MutationRate:    ga.MutationRate,
			Parallelism:     ga.Parallelism,
			Selection:       ga.Selection,
			TournamentSize:  ga.TournamentSize,
			MutationWeights: ga.MutationWeights,
		},
		Map: MapConfig{
			Size:              parameter.DefaultMapSize,
			InitialDifficulty: parameter.DifficultyInitial,
		},
		Weights: fitness.DefaultWeights(),
		Agents: AgentsConfig{
			Cautious: fromParams(agent.Defaults(agent.Cautious)),
			Balanced: fromParams(agent.Defaults(agent.Balanced)),
			Optimal:  fromParams(agent.Defaults(agent.Optimal)),
		},
		Difficulty: DifficultyConfig{MaxAttempts: parameter.DifficultyMaxAttempts},
		Generator: GeneratorConfig{
			BandAttempts: policy.BandAttempts,
			Ceiling:      policy.Ceiling,
		},
		Run: RunConfig{
			Iterations: parameter.SessionIterations,
			Agents:     names,
		},
		Storage: StorageConfig{
			Kind: parameter.SessionStoreKind,
			Path: parameter.SessionRecordPath,
		},
	}
}

// Load reads a TOML file over the defaults and validates the result
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads TOML over the defaults; unknown keys are rejected
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	meta, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes the configuration as TOML
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks field ranges
func (c Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if err := c.Genetic().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.GA.Parallelism < 1 {
		fail("ga.parallelism %d below 1", c.GA.Parallelism)
	}
	if d := c.Map.InitialDifficulty; d < parameter.DifficultyMin || d > parameter.DifficultyMax {
		fail("map.initial_difficulty %d outside [%d,%d]", d, parameter.DifficultyMin, parameter.DifficultyMax)
	}
	if c.Difficulty.MaxAttempts < 1 {
		fail("difficulty.max_attempts %d below 1", c.Difficulty.MaxAttempts)
	}
	if c.Generator.Ceiling < 1 {
		fail("generator.ceiling %d below 1", c.Generator.Ceiling)
	}
	if c.Run.Iterations < 0 {
		fail("run.iterations %d negative", c.Run.Iterations)
	}
	if len(c.Run.Agents) == 0 {
		fail("run.agents is empty")
	}
	for _, name := range c.Run.Agents {
		if _, err := c.AgentParams(name); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// Genetic converts the GA section into an engine configuration
func (c Config) Genetic() genetic.Config {
	return genetic.Config{
		PopulationSize:  c.GA.PopulationSize,
		Generations:     c.GA.Generations,
		CrossoverRate:   c.GA.CrossoverRate,
		MutationRate:    c.GA.MutationRate,
		Parallelism:     c.GA.Parallelism,
		MapSize:         c.Map.Size,
		Selection:       c.GA.Selection,
		TournamentSize:  c.GA.TournamentSize,
		Weights:         c.Weights,
		MutationWeights: c.GA.MutationWeights,
	}
}

// Policy converts the generator section into a retry policy
func (c Config) Policy() maze.Policy {
	p := maze.DefaultPolicy()
	p.BandAttempts = c.Generator.BandAttempts
	p.Ceiling = c.Generator.Ceiling
	return p
}

// Model returns the difficulty model with the configured attempt limit
func (c Config) Model() difficulty.Model {
	m := difficulty.DefaultModel()
	m.MaxAttempts = c.Difficulty.MaxAttempts
	return m
}

// AgentParams resolves a named agent section
func (c Config) AgentParams(name string) (agent.Params, error) {
	kind, err := agent.ParseKind(name)
	if err != nil {
		return agent.Params{}, err
	}

	var ac AgentConfig
	switch kind {
	case agent.Cautious:
		ac = c.Agents.Cautious
	case agent.Balanced:
		ac = c.Agents.Balanced
	case agent.Optimal:
		ac = c.Agents.Optimal
	}
	return ac.params(name)
}

// Solvers builds the configured agents in play order
func (c Config) Solvers() ([]agent.Solver, error) {
	solvers := make([]agent.Solver, 0, len(c.Run.Agents))
	for _, name := range c.Run.Agents {
		kind, err := agent.ParseKind(name)
		if err != nil {
			return nil, err
		}
		params, err := c.AgentParams(name)
		if err != nil {
			return nil, err
		}
		solvers = append(solvers, &agent.Agent{Kind: kind, Params: params})
	}
	return solvers, nil
}

func (ac AgentConfig) params(name string) (agent.Params, error) {
	planner, err := agent.ParsePlanner(ac.Planner)
	if err != nil {
		return agent.Params{}, fmt.Errorf("agents.%s: %w", name, err)
	}
	switch {
	case ac.ErrorRate < 0 || ac.ErrorRate > 1:
		return agent.Params{}, fmt.Errorf("agents.%s.error_rate %v outside [0,1]", name, ac.ErrorRate)
	case ac.BacktrackChance < 0 || ac.BacktrackChance > 1:
		return agent.Params{}, fmt.Errorf("agents.%s.backtrack_chance %v outside [0,1]", name, ac.BacktrackChance)
	case ac.MaxSteps < 1:
		return agent.Params{}, fmt.Errorf("agents.%s.max_steps %d below 1", name, ac.MaxSteps)
	case ac.Patience < 1:
		return agent.Params{}, fmt.Errorf("agents.%s.patience %d below 1", name, ac.Patience)
	}

	return agent.Params{
		ErrorRate:       ac.ErrorRate,
		ErrorDecay:      ac.ErrorDecay,
		Patience:        ac.Patience,
		BacktrackChance: ac.BacktrackChance,
		RevisitPenalty:  ac.RevisitPenalty,
		TimePerStep:     ac.TimePerStep,
		MaxSteps:        ac.MaxSteps,
		MaxResets:       ac.MaxResets,
		Planner:         planner,
	}, nil
}

func fromParams(p agent.Params) AgentConfig {
	return AgentConfig{
		ErrorRate:       p.ErrorRate,
		ErrorDecay:      p.ErrorDecay,
		Patience:        p.Patience,
		BacktrackChance: p.BacktrackChance,
		RevisitPenalty:  p.RevisitPenalty,
		TimePerStep:     p.TimePerStep,
		MaxSteps:        p.MaxSteps,
		MaxResets:       p.MaxResets,
		Planner:         p.Planner.String(),
	}
}
