// Package config describes a simulation run: the miners and their hashrate
// proportions, the directed delayed links between them, the RNG seed and
// the duration. The simulation core treats all of this as externally
// supplied input.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// MinerConfig declares one miner and its share of the global hashrate.
type MinerConfig struct {
	Name     string
	Hashrate float64
}

// Link declares one directed connection. From and To name miners; Delay is
// the fixed propagation delay in simulated seconds. A link in the opposite
// direction is declared separately and may carry a different delay.
type Link struct {
	From  string
	To    string
	Delay int
}

// Config is the full description of a run.
type Config struct {
	Seed    int64
	Periods int
	Miners  []MinerConfig
	Links   []Link
}

// Default returns the three-miner reference scenario: an attacker holding
// 30% of the hashrate whose blocks reach miner C five seconds late, while
// every other link delivers with no delay.
func Default() *Config {
	return &Config{
		Seed:    1,
		Periods: 10000,
		Miners: []MinerConfig{
			{Name: "A", Hashrate: 0.3}, // "A" for "Attacker"
			{Name: "B", Hashrate: 0.3}, // "B" for "Big guy"
			{Name: "C", Hashrate: 0.4}, // "C" for "Crud"
		},
		Links: []Link{
			{From: "A", To: "B", Delay: 0},
			{From: "A", To: "C", Delay: 5},
			{From: "B", To: "A", Delay: 0},
			{From: "B", To: "C", Delay: 0},
			{From: "C", To: "A", Delay: 0},
			{From: "C", To: "B", Delay: 0},
		},
	}
}

// Validate checks the run description. Hashrates must lie in (0,1] and sum
// to at most 1; links must reference declared miners, never loop back to
// their sender, and carry non-negative delays.
func (c *Config) Validate() error {
	if c.Periods <= 0 {
		return fmt.Errorf("periods must be positive, got %d", c.Periods)
	}
	if len(c.Miners) == 0 {
		return fmt.Errorf("at least one miner is required")
	}

	names := make(map[string]bool, len(c.Miners))
	total := 0.0
	for _, m := range c.Miners {
		if m.Name == "" {
			return fmt.Errorf("miner name cannot be empty")
		}
		if names[m.Name] {
			return fmt.Errorf("duplicate miner name %q", m.Name)
		}
		names[m.Name] = true
		if m.Hashrate <= 0 || m.Hashrate > 1 {
			return fmt.Errorf("miner %q hashrate must be in (0,1], got %v", m.Name, m.Hashrate)
		}
		total += m.Hashrate
	}
	// Small tolerance for float accumulation.
	if total > 1+1e-9 {
		return fmt.Errorf("hashrate proportions sum to %v, must not exceed 1", total)
	}

	for _, l := range c.Links {
		if !names[l.From] {
			return fmt.Errorf("link references unknown sender %q", l.From)
		}
		if !names[l.To] {
			return fmt.Errorf("link references unknown receiver %q", l.To)
		}
		if l.From == l.To {
			return fmt.Errorf("miner %q cannot link to itself", l.From)
		}
		if l.Delay < 0 {
			return fmt.Errorf("link %s->%s delay must be non-negative, got %d", l.From, l.To, l.Delay)
		}
	}
	return nil
}

// ParseTopology reads a network description, one miner per line:
//
//	name hashrate [peer delay]...
//
// hashrate is this miner's proportion of the global total; each peer/delay
// pair declares an outgoing link. Blank lines and lines starting with '#'
// are skipped. Seed and Periods are left for the caller to fill in.
func ParseTopology(r io.Reader) (*Config, error) {
	cfg := &Config{}
	scan := bufio.NewScanner(r)
	lineno := 0
	for scan.Scan() {
		lineno++
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected name and hashrate", lineno)
		}
		name := fields[0]
		hashrate, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad hashrate %q: %w", lineno, fields[1], err)
		}
		cfg.Miners = append(cfg.Miners, MinerConfig{Name: name, Hashrate: hashrate})

		pairs := fields[2:]
		if len(pairs)%2 != 0 {
			return nil, fmt.Errorf("line %d: peer/delay tokens must come in pairs", lineno)
		}
		for len(pairs) > 0 {
			delay, err := strconv.Atoi(pairs[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad delay %q: %w", lineno, pairs[1], err)
			}
			cfg.Links = append(cfg.Links, Link{From: name, To: pairs[0], Delay: delay})
			pairs = pairs[2:]
		}
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("reading topology: %w", err)
	}
	return cfg, nil
}

// LoadTopology reads a topology file from disk.
func LoadTopology(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening topology: %w", err)
	}
	defer f.Close()
	return ParseTopology(f)
}
