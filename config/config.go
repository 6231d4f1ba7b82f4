// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package config holds the replica process's configuration: where it keeps
// its data, how strict its self-checks are, and the default per-step
// timeout ratios a NewHeight trigger may override.
package config

import (
	"bufio"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"reflect"
	"runtime"

	"github.com/naoina/toml"

	"github.com/autonity/tendermint-smr/consensus/tendermint/message"
)

var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, field string) string { return field },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Config is the replica process's configuration.
type Config struct {
	// DataDir is where the embedding process would persist replica state
	// across restarts; the core itself is stateless (spec.md §6), so this
	// is only a home for the surrounding process's own bookkeeping.
	DataDir string `toml:",omitempty"`

	// Strict enables the full self-check invariant set (selfcheck.go); the
	// reference implementation leaves the stricter three invariants
	// disabled in production and only turns them on for tests.
	Strict bool `toml:",omitempty"`

	// Interval is the default per-step timeout ratio configuration, used
	// until a NewHeight status supplies NewInterval.
	Interval message.DurationConfig `toml:",omitempty"`

	// ListenAddr is the address the timer/driver transport listens on;
	// owned entirely by the embedding process, never read by the core.
	ListenAddr string `toml:",omitempty"`
}

// Defaults mirrors the teacher's package-level Defaults var: sane settings a
// fresh replica starts from absent an on-disk config file.
var Defaults = Config{
	Strict: false,
	Interval: message.DurationConfig{
		ProposeRatio:   3000,
		PrevoteRatio:   1000,
		PrecommitRatio: 1000,
		BrakeRatio:     1000,
	},
	ListenAddr: "127.0.0.1:30303",
}

func init() {
	home := os.Getenv("HOME")
	if home == "" {
		if u, err := user.Current(); err == nil {
			home = u.HomeDir
		}
	}
	switch runtime.GOOS {
	case "darwin":
		Defaults.DataDir = filepath.Join(home, "Library", "TendermintSMR")
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			Defaults.DataDir = filepath.Join(localAppData, "TendermintSMR")
		} else {
			Defaults.DataDir = filepath.Join(home, "AppData", "Local", "TendermintSMR")
		}
	default:
		Defaults.DataDir = filepath.Join(home, ".tendermint-smr")
	}
}

// LoadFile reads a TOML config file at path into cfg, starting from
// whatever cfg already held (typically a copy of Defaults).
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
