package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"roomdesk/internal/model"
)

// RoomConfig describes a single bookable room.
type RoomConfig struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// RepeatOptionConfig describes one selectable repeat option.
type RepeatOptionConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// RoomsConfig is the root configuration for rooms.yaml: the room list and
// the static repeat-option reference data.
type RoomsConfig struct {
	Rooms         []RoomConfig         `yaml:"rooms"`
	RepeatOptions []RepeatOptionConfig `yaml:"repeat_options"`
}

// LoadRoomsConfig loads and validates room configuration from a YAML file.
func LoadRoomsConfig(path string) (*RoomsConfig, error) {
	if path == "" {
		path = "configs/rooms.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rooms config: %w", err)
	}

	var cfg RoomsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse rooms config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate rooms config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for errors.
func (c *RoomsConfig) Validate() error {
	if len(c.Rooms) == 0 {
		return fmt.Errorf("no rooms defined")
	}

	ids := make(map[string]bool)
	names := make(map[string]bool)
	for i, r := range c.Rooms {
		if r.ID == "" {
			return fmt.Errorf("room[%d]: id is required", i)
		}
		if ids[r.ID] {
			return fmt.Errorf("room[%d]: duplicate id %q", i, r.ID)
		}
		ids[r.ID] = true

		if r.Name == "" {
			return fmt.Errorf("room[%d]: name is required", i)
		}
		if names[r.Name] {
			return fmt.Errorf("room[%d]: duplicate name %q", i, r.Name)
		}
		names[r.Name] = true
	}

	optIDs := make(map[string]bool)
	for i, o := range c.RepeatOptions {
		if o.ID == "" {
			return fmt.Errorf("repeat_options[%d]: id is required", i)
		}
		if optIDs[o.ID] {
			return fmt.Errorf("repeat_options[%d]: duplicate id %q", i, o.ID)
		}
		optIDs[o.ID] = true
	}

	return nil
}

// ModelRooms converts the configured rooms to model reference data.
func (c *RoomsConfig) ModelRooms() []model.Room {
	out := make([]model.Room, 0, len(c.Rooms))
	for _, r := range c.Rooms {
		out = append(out, model.Room{ID: r.ID, Name: r.Name, Description: r.Description})
	}
	return out
}

// Repeats converts the configured repeat options to model reference data.
func (c *RoomsConfig) Repeats() []model.RepeatOption {
	out := make([]model.RepeatOption, 0, len(c.RepeatOptions))
	for _, o := range c.RepeatOptions {
		out = append(out, model.RepeatOption{ID: o.ID, Name: o.Name})
	}
	return out
}

// WatchRooms reloads rooms.yaml on change and calls onUpdate with the
// latest config. It performs an initial load before entering the watch
// loop.
func WatchRooms(ctx context.Context, path string, interval time.Duration, onUpdate func(*RoomsConfig)) error {
	if path == "" {
		path = "configs/rooms.yaml"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	cfg, err := LoadRoomsConfig(path)
	if err != nil {
		return err
	}
	if onUpdate != nil {
		onUpdate(cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	lastMod := info.ModTime()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				info, err := os.Stat(path)
				if err != nil {
					continue // transient errors
				}
				if !info.ModTime().After(lastMod) {
					continue
				}
				cfg, err := LoadRoomsConfig(path)
				if err != nil {
					continue
				}
				lastMod = info.ModTime()
				if onUpdate != nil {
					onUpdate(cfg)
				}
			}
		}
	}()

	return nil
}
