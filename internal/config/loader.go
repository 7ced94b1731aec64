package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"minebot/src/model"

	"gopkg.in/yaml.v3"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is the content the run loop draws from: the situations picked at
// random each cycle and the canned suggestions used when no model answer is
// available.
type Catalog struct {
	Situations []string                 `yaml:"situations"`
	Fallback   []model.ActionSuggestion `yaml:"fallback"`
}

// YAMLConfig represents the structure of config.yaml
type YAMLConfig struct {
	Bot Catalog `yaml:"bot"`
}

// DefaultCatalog returns the built-in situations and fallback menu.
func DefaultCatalog() Catalog {
	return Catalog{
		Situations: []string{
			"Inventory is empty, need resources",
			"Found a village nearby",
			"Night is approaching, need shelter",
			"Health is low, need food",
			"Exploring new terrain",
			"Found cave entrance, should explore",
			"Has enough wood, should craft tools",
			"Encountered mobs, need to fight or flee",
		},
		Fallback: []model.ActionSuggestion{
			{Action: model.ActionExplore, Reason: "Explore the world"},
			{Action: model.ActionMine, Reason: "Gather resources"},
			{Action: model.ActionBuild, Reason: "Build a shelter"},
			{Action: model.ActionChat, Reason: "Socialize", ChatMessage: "Hello from GitHub AI Bot!"},
		},
	}
}

// LoadCatalog loads the catalog from a YAML file. A missing file yields the
// built-in defaults; sections left empty in the file fall back to the
// defaults individually.
func LoadCatalog(filepath string) (Catalog, error) {
	defaults := DefaultCatalog()
	if filepath == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(filepath)
	if errors.Is(err, fs.ErrNotExist) {
		return defaults, nil
	}
	if err != nil {
		return Catalog{}, fmt.Errorf("error reading config file: %w", err)
	}

	var config YAMLConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Catalog{}, fmt.Errorf("error parsing YAML: %w", err)
	}

	catalog := config.Bot
	if len(catalog.Situations) == 0 {
		catalog.Situations = defaults.Situations
	}
	if len(catalog.Fallback) == 0 {
		catalog.Fallback = defaults.Fallback
	}

	if err := catalog.Validate(); err != nil {
		return Catalog{}, err
	}
	return catalog, nil
}

// Validate rejects blank situations and fallback entries that would not pass
// the action schema.
func (c Catalog) Validate() error {
	if len(c.Situations) == 0 {
		return fmt.Errorf("%w: no situations", ErrInvalidCatalog)
	}
	for i, s := range c.Situations {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: situation %d is empty", ErrInvalidCatalog, i)
		}
	}
	if len(c.Fallback) == 0 {
		return fmt.Errorf("%w: no fallback actions", ErrInvalidCatalog)
	}
	for i, a := range c.Fallback {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("%w: fallback %d: %v", ErrInvalidCatalog, i, err)
		}
	}
	return nil
}
