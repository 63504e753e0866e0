// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the engine's tunables from a named, versioned
// YAML fixture at startup.
package config

import (
	"os"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hdcore/keyengine/factorsource"
)

var log = log15.New("pkg", "config")

// CacheFillingQuantityDefault is the per-(factor source, preset, network)
// cache depth target.
const CacheFillingQuantityDefault = 30

// Engine collects every tunable the core needs that isn't itself part of
// the domain model.
type Engine struct {
	// CacheFillingQuantity is the target depth of the Factor-Instances
	// Cache per (factor source, preset, network).
	CacheFillingQuantity int `yaml:"cacheFillingQuantity"`

	// FrictionOrder overrides factorsource.FrictionOrder when non-empty,
	// letting a host re-tune friction ranking without a code change. Nil
	// or empty means "use the built-in order".
	FrictionOrder []string `yaml:"frictionOrder"`

	// GateRecoveryConfirmationMFARules resolves the "TODO: MFA Rules may
	// change this" open question: when true, an entity's
	// petition additionally requires Recovery and Confirmation to not be
	// Finished(Fail); when false (the default), only Primary matters.
	GateRecoveryConfirmationMFARules bool `yaml:"gateRecoveryConfirmationMFARules"`

	// SigningFinishEarlyOnAllValid and SigningFinishEarlyOnAnyInvalid set
	// the Signatures Collector's default SigningFinishEarlyStrategy
	//.
	SigningFinishEarlyOnAllValid   bool `yaml:"signingFinishEarlyOnAllValid"`
	SigningFinishEarlyOnAnyInvalid bool `yaml:"signingFinishEarlyOnAnyInvalid"`
}

// Default returns the engine's stated default configuration:
// CACHE_FILLING_QUANTITY = 30, built-in friction order, MFA gate off,
// stop as soon as every transaction is valid.
func Default() Engine {
	return Engine{
		CacheFillingQuantity:             CacheFillingQuantityDefault,
		GateRecoveryConfirmationMFARules: false,
		SigningFinishEarlyOnAllValid:     true,
		SigningFinishEarlyOnAnyInvalid:   false,
	}
}

// Load reads an Engine configuration from a YAML file at path, filling in
// Default() for any zero-valued field the file leaves unset.
func Load(path string) (Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Engine{}, errors.Wrapf(err, "read engine config %s", path)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Engine{}, errors.Wrapf(err, "parse engine config %s", path)
	}
	if cfg.CacheFillingQuantity <= 0 {
		log.Warn("cacheFillingQuantity unset or non-positive, using default", "default", CacheFillingQuantityDefault)
		cfg.CacheFillingQuantity = CacheFillingQuantityDefault
	}
	if _, err := cfg.ResolveFrictionOrder(); err != nil {
		return Engine{}, err
	}
	return cfg, nil
}

// ResolveFrictionOrder turns the configured kind names into a concrete
// order, or returns the built-in factorsource.FrictionOrder when the
// override is empty. The override must name every kind exactly once.
func (e Engine) ResolveFrictionOrder() ([]factorsource.Kind, error) {
	if len(e.FrictionOrder) == 0 {
		return append([]factorsource.Kind(nil), factorsource.FrictionOrder...), nil
	}
	if len(e.FrictionOrder) != len(factorsource.FrictionOrder) {
		return nil, errors.Errorf("frictionOrder must name all %d kinds, got %d", len(factorsource.FrictionOrder), len(e.FrictionOrder))
	}

	byName := make(map[string]factorsource.Kind, len(factorsource.FrictionOrder))
	for _, kind := range factorsource.FrictionOrder {
		byName[kind.String()] = kind
	}

	out := make([]factorsource.Kind, 0, len(e.FrictionOrder))
	seen := make(map[factorsource.Kind]bool, len(e.FrictionOrder))
	for _, name := range e.FrictionOrder {
		kind, ok := byName[name]
		if !ok {
			return nil, errors.Errorf("frictionOrder names unknown kind %q", name)
		}
		if seen[kind] {
			return nil, errors.Errorf("frictionOrder names kind %q twice", name)
		}
		seen[kind] = true
		out = append(out, kind)
	}
	return out, nil
}
