// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar is the environment variable naming the config file for [Load].
const EnvVar = "CUEMESH_CONFIG"

// Config is the master configuration for a cuemesh node.
type Config struct {
	// Cell identifies the mesh cell this node joins. Constant across
	// every node in a deployment: a node with a mismatched cell
	// cannot join.
	Cell CellConfig `yaml:"cell"`

	// Sync configures code synchronization from removable media.
	Sync SyncConfig `yaml:"sync"`

	// Boot configures the boot supervisor and application launch.
	Boot BootConfig `yaml:"boot"`
}

// CellConfig is the mesh cell identity plus the radio it is applied
// to. Applied fresh on every boot: prior interface state is destroyed
// before recreation, so a misconfigured node self-heals on its next
// reboot.
type CellConfig struct {
	// Name is the IBSS cell name all nodes join.
	Name string `yaml:"name"`

	// FrequencyMHz is the cell's channel center frequency.
	FrequencyMHz int `yaml:"frequency_mhz"`

	// MTU is the link MTU for the ad-hoc interface. batman-adv adds
	// its own encapsulation header, so the link carries more than the
	// 1500 bytes the overlay presents.
	MTU int `yaml:"mtu"`

	// Radio is the wireless phy the ad-hoc interface is created on.
	Radio string `yaml:"radio"`

	// Interface is the ad-hoc interface name.
	Interface string `yaml:"interface"`

	// MeshInterface is the overlay interface batman-adv exposes. The
	// application locates the mesh by this name on its own.
	MeshInterface string `yaml:"mesh_interface"`

	// WPAConf is the pre-shared authentication configuration passed
	// to wpa_supplicant. The supervisor never reads its contents.
	WPAConf string `yaml:"wpa_conf"`

	// Settle is the pause between joining the cell and attaching the
	// overlay, giving the IBSS join time to take on slow radios.
	Settle Duration `yaml:"settle"`
}

// SyncConfig configures the code sync attempt from removable media.
type SyncConfig struct {
	// Device is the removable block device partition.
	Device string `yaml:"device"`

	// MountPoint is where the device is mounted for the duration of
	// the sync attempt. Always released before the attempt returns.
	MountPoint string `yaml:"mount_point"`

	// UID and GID own the mounted filesystem so the non-privileged
	// update step has write access.
	UID int `yaml:"uid"`
	GID int `yaml:"gid"`

	// WorkingCopy is the node's local copy of application code. It
	// must be runnable after every boot, even when this boot's sync
	// attempt failed.
	WorkingCopy string `yaml:"working_copy"`

	// ReplicaPath is the replica's location relative to the mount
	// point. A cuemesh.jsonc manifest on the device may override it
	// for a single sync.
	ReplicaPath string `yaml:"replica_path"`

	// Branch is the branch fast-forwarded from the replica.
	Branch string `yaml:"branch"`

	// DeviceWait bounds how long sync waits for the device node to
	// appear before treating the device as absent. Zero disables the
	// wait: absence is decided by a single stat.
	DeviceWait Duration `yaml:"device_wait"`
}

// BootConfig configures the boot supervisor.
type BootConfig struct {
	// AppCommand is the application argv, executed with the working
	// copy as its working directory and nothing else passed: no
	// extra arguments, no environment injection.
	AppCommand []string `yaml:"app_command"`

	// LogFile captures all supervisor and application output.
	LogFile string `yaml:"log_file"`

	// RotateLogs compresses the previous boot's log to
	// <LogFile>.1.gz before this boot starts writing.
	RotateLogs bool `yaml:"rotate_logs"`
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "1s" or "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var text string
	if err := value.Decode(&text); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Value returns the underlying time.Duration.
func (d Duration) Value() time.Duration { return time.Duration(d) }

// Default returns the deployment defaults: a Raspberry Pi node with a
// single USB stick slot and the cue application in the pi user's home.
func Default() *Config {
	return &Config{
		Cell: CellConfig{
			Name:          "cuemesh",
			FrequencyMHz:  2432,
			MTU:           1532,
			Radio:         "phy0",
			Interface:     "wlan0",
			MeshInterface: "bat0",
			WPAConf:       "/etc/cuemesh/wpa.conf",
			Settle:        Duration(time.Second),
		},
		Sync: SyncConfig{
			Device:      "/dev/sda1",
			MountPoint:  "/mnt/cuemesh",
			UID:         1000,
			GID:         1000,
			WorkingCopy: "${HOME}/cuenode",
			ReplicaPath: "cuenode",
			Branch:      "main",
		},
		Boot: BootConfig{
			AppCommand: []string{"python3", "main.py"},
			LogFile:    "/var/log/cuemesh/boot.log",
			RotateLogs: true,
		},
	}
}

// Load reads the config file named by the CUEMESH_CONFIG environment
// variable. If the variable is unset, Default() is returned: a bare
// node image runs on defaults with no file present.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		configuration := Default()
		configuration.expandPaths()
		return configuration, configuration.Validate()
	}
	return LoadFile(path)
}

// LoadFile reads and validates the config file at path. Values start
// from Default(), so a partial file only overrides what it names.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	configuration := Default()
	if err := yaml.Unmarshal(data, configuration); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	configuration.expandPaths()
	if err := configuration.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return configuration, nil
}

// variablePattern matches ${VAR} and ${VAR:-default}.
var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// expandVariables expands ${VAR} and ${VAR:-default} in s from the
// environment.
func expandVariables(s string) string {
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := variablePattern.FindStringSubmatch(match)
		if value := os.Getenv(groups[1]); value != "" {
			return value
		}
		return groups[2]
	})
}

// expandPaths applies variable expansion to every path-valued field.
func (c *Config) expandPaths() {
	c.Cell.WPAConf = expandVariables(c.Cell.WPAConf)
	c.Sync.Device = expandVariables(c.Sync.Device)
	c.Sync.MountPoint = expandVariables(c.Sync.MountPoint)
	c.Sync.WorkingCopy = expandVariables(c.Sync.WorkingCopy)
	c.Boot.LogFile = expandVariables(c.Boot.LogFile)
}

// Validate checks for values that would make bring-up impossible.
func (c *Config) Validate() error {
	if c.Cell.Name == "" {
		return fmt.Errorf("cell.name must not be empty")
	}
	if c.Cell.FrequencyMHz <= 0 {
		return fmt.Errorf("cell.frequency_mhz must be positive, got %d", c.Cell.FrequencyMHz)
	}
	if c.Cell.MTU < 1500 {
		return fmt.Errorf("cell.mtu must be at least 1500, got %d (the overlay encapsulates 1500-byte frames)", c.Cell.MTU)
	}
	if c.Cell.Interface == "" || c.Cell.MeshInterface == "" {
		return fmt.Errorf("cell.interface and cell.mesh_interface must not be empty")
	}
	if c.Cell.Interface == c.Cell.MeshInterface {
		return fmt.Errorf("cell.interface and cell.mesh_interface must differ, both are %q", c.Cell.Interface)
	}
	if c.Sync.Device == "" || c.Sync.MountPoint == "" {
		return fmt.Errorf("sync.device and sync.mount_point must not be empty")
	}
	if c.Sync.WorkingCopy == "" {
		return fmt.Errorf("sync.working_copy must not be empty")
	}
	if len(c.Boot.AppCommand) == 0 {
		return fmt.Errorf("boot.app_command must name a command")
	}
	if c.Boot.LogFile == "" {
		return fmt.Errorf("boot.log_file must not be empty")
	}
	return nil
}
