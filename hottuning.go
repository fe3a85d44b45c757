// hottuning.go: live-reloadable runtime tuning via Argus
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package loom

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

// HotTuning watches a config file and applies changes to the subset of
// World knobs that are safe to move at runtime: WorkerTimeout and
// PressureThreshold. MaxEntities, MaxEvents and registered schemas are
// fixed for the World's lifetime and are never touched here, the same
// boundary the teacher draws around MaxSize in its own hot-reload config.
type HotTuning struct {
	world   *World
	watcher *argus.Watcher

	mu     sync.RWMutex
	timeout  time.Duration
	pressure float64

	// OnReload is called after a config change has been applied. Must be
	// fast and non-blocking.
	OnReload func(oldTimeout time.Duration, oldPressure float64)

	generation atomic.Uint64
}

// HotTuningOptions configures the watcher.
type HotTuningOptions struct {
	// ConfigPath is the file to watch. Supports JSON, YAML, TOML, HCL, INI.
	ConfigPath string
	// PollInterval is how often to check for changes. Default 1s, floor 100ms.
	PollInterval time.Duration
	OnReload     func(oldTimeout time.Duration, oldPressure float64)
}

// NewHotTuning starts watching ConfigPath and applying worker.timeout /
// executor.pressure_threshold to world as they change.
//
// Supported keys:
//   - worker.timeout_ms (int): WorkerTimeout in milliseconds
//   - executor.pressure_threshold (float, (0,1]): reclamation pressure cutoff
func NewHotTuning(world *World, opts HotTuningOptions) (*HotTuning, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config_path is required")
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	ht := &HotTuning{
		world:    world,
		timeout:  world.options.WorkerTimeout,
		pressure: world.options.PressureThreshold,
		OnReload: opts.OnReload,
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, ht.handleChange, argus.Config{
		PollInterval: opts.PollInterval,
	})
	if err != nil {
		return nil, err
	}
	ht.watcher = watcher
	return ht, nil
}

func (ht *HotTuning) Start() error {
	if ht.watcher.IsRunning() {
		return nil
	}
	return ht.watcher.Start()
}

func (ht *HotTuning) Stop() error {
	return ht.watcher.Stop()
}

// Timeout returns the currently active WorkerTimeout.
func (ht *HotTuning) Timeout() time.Duration {
	ht.mu.RLock()
	defer ht.mu.RUnlock()
	return ht.timeout
}

// Pressure returns the currently active PressureThreshold.
func (ht *HotTuning) Pressure() float64 {
	ht.mu.RLock()
	defer ht.mu.RUnlock()
	return ht.pressure
}

func (ht *HotTuning) handleChange(data map[string]interface{}) {
	ht.mu.Lock()
	oldTimeout, oldPressure := ht.timeout, ht.pressure

	workerSection, _ := data["worker"].(map[string]interface{})
	if workerSection != nil {
		if ms, ok := parsePositiveInt(workerSection["timeout_ms"]); ok {
			ht.timeout = time.Duration(ms) * time.Millisecond
		}
	}
	executorSection, _ := data["executor"].(map[string]interface{})
	if executorSection != nil {
		if p, ok := parseFloatInRange(executorSection["pressure_threshold"], 0, 1); ok {
			ht.pressure = p
		}
	}

	ht.world.mu.Lock()
	ht.world.options.WorkerTimeout = ht.timeout
	ht.world.options.PressureThreshold = ht.pressure
	ht.world.workers.timeout = ht.timeout
	ht.world.mu.Unlock()
	ht.mu.Unlock()

	ht.generation.Add(1)
	if ht.OnReload != nil {
		ht.OnReload(oldTimeout, oldPressure)
	}
}

// parsePositiveInt mirrors the teacher's Argus value coercion: config
// loaders hand back either int or float64 depending on source format.
func parsePositiveInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}

func parseFloatInRange(value interface{}, min, max float64) (float64, bool) {
	if v, ok := value.(float64); ok {
		if v > min && v <= max {
			return v, true
		}
	}
	return 0, false
}
