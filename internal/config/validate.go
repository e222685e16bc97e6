package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/skyraid/internal/logger"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Validate reports the first setting the simulation cannot run with.
func (c *Config) Validate() error {
	checks := []struct {
		ok   bool
		name string
		val  any
	}{
		{c.Terrain.Heightmap != "", "terrain.heightmap", c.Terrain.Heightmap},
		{c.Terrain.Grid >= 2, "terrain.grid", c.Terrain.Grid},
		{c.Terrain.Size > 0, "terrain.size", c.Terrain.Size},
		{c.Terrain.HeightScale >= 0, "terrain.height_scale", c.Terrain.HeightScale},
		{c.Weapons.MuzzleSpeed > 0, "weapons.muzzle_speed", c.Weapons.MuzzleSpeed},
		{c.Weapons.TTL > 0, "weapons.ttl", c.Weapons.TTL},
		{c.Weapons.ContactEpsilon >= 0, "weapons.contact_epsilon", c.Weapons.ContactEpsilon},
		{c.Weapons.FireRate >= 0, "weapons.fire_rate", c.Weapons.FireRate},
		{c.Weapons.MaxBullets >= 0, "weapons.max_bullets", c.Weapons.MaxBullets},
		{c.Sparks.Count >= 0, "sparks.count", c.Sparks.Count},
		{c.Sparks.LifeMin > 0, "sparks.life_min", c.Sparks.LifeMin},
		{c.Sparks.MaxSparks >= 0, "sparks.max_sparks", c.Sparks.MaxSparks},
		{inUnit(c.Audio.MasterVolume), "audio.master_volume", c.Audio.MasterVolume},
		{inUnit(c.Audio.SFXVolume), "audio.sfx_volume", c.Audio.SFXVolume},
		{inUnit(c.Audio.EngineVolume), "audio.engine_volume", c.Audio.EngineVolume},
		{c.Sim.Step > 0, "sim.step", c.Sim.Step},
		{c.Sim.Duration >= 0, "sim.duration", c.Sim.Duration},
		{c.Telemetry.Window > 0 || !c.Telemetry.Enabled, "telemetry.window", c.Telemetry.Window},
	}
	for _, ch := range checks {
		if !ch.ok {
			return fmt.Errorf("%w: %s = %v", ErrInvalid, ch.name, ch.val)
		}
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalid, err)
	}
	return nil
}

func inUnit(v float32) bool {
	return v >= 0 && v <= 1
}
