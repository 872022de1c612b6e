package imaging

import (
	"errors"
	"fmt"

	"github.com/dunamismax/sitecms/internal/config"
)

const defaultQuality = 80

var ErrInvalidProfile = errors.New("invalid normalization profile")

// Profile bounds a normalized image. Images are scaled to fit inside
// MaxWidth x MaxHeight and are never enlarged.
type Profile struct {
	Name        string
	MaxWidth    int
	MaxHeight   int
	Quality     int
	Progressive bool
}

func (p Profile) validate() (Profile, error) {
	if p.MaxWidth <= 0 || p.MaxHeight <= 0 {
		return Profile{}, fmt.Errorf("%w: %s box %dx%d", ErrInvalidProfile, p.Name, p.MaxWidth, p.MaxHeight)
	}
	if p.Quality <= 0 || p.Quality > 100 {
		p.Quality = defaultQuality
	}
	return p, nil
}

// Profiles holds the bounding boxes used by each record type.
type Profiles struct {
	Service     Profile
	Team        Profile
	Testimonial Profile
	Project     Profile
}

func DefaultProfiles() Profiles {
	return ProfilesFromConfig(config.ImageConfig{
		Quality:     defaultQuality,
		Progressive: true,
		Service:     config.Box{Width: 1000, Height: 1000},
		Team:        config.Box{Width: 800, Height: 1000},
		Testimonial: config.Box{Width: 800, Height: 800},
		Project:     config.Box{Width: 1000, Height: 1000},
	})
}

func ProfilesFromConfig(cfg config.ImageConfig) Profiles {
	build := func(name string, box config.Box) Profile {
		return Profile{
			Name:        name,
			MaxWidth:    box.Width,
			MaxHeight:   box.Height,
			Quality:     cfg.Quality,
			Progressive: cfg.Progressive,
		}
	}
	return Profiles{
		Service:     build("service", cfg.Service),
		Team:        build("team", cfg.Team),
		Testimonial: build("testimonial", cfg.Testimonial),
		Project:     build("project", cfg.Project),
	}
}
