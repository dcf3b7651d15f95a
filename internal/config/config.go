package config

import "time"

// Display rendering
const (
	TargetFPS     = 30
	FrameInterval = time.Second / TargetFPS
)

// Max render resolution in terminal cells. Larger terminals get a centered
// render area so SSH sessions don't push full-screen repaints.
const (
	MaxTermWidth  = 180
	MaxTermHeight = 50
)

// Particle field
const (
	ParticleCount        = 120
	ParticleMinRadius    = 0.5
	ParticleRadiusSpread = 2.0 // radius in [0.5, 2.5)
	ParticleMinSpeed     = 0.2
	ParticleSpeedSpread  = 0.5 // upward speed in [0.2, 0.7) pixels per frame
)

// Countdown
const (
	LaunchDay         = 25 // Day of month the launch recurs on, at 00:00 local
	CountdownInterval = time.Second
	LoadingDuration   = 900 * time.Millisecond // Placeholder shown after mount
)

// Parallax
const (
	ParallaxDivisor     = 50.0
	BackdropTranslation = 2.0 // Background moves twice the tilt, in pixels
	PanelShiftPerDegree = 2.0 // Terminal columns per degree of panel rotation
)

// Confetti burst
const (
	ConfettiCount    = 350
	ConfettiSpread   = 160.0 // Degrees, centered straight up
	ConfettiOriginY  = 0.6   // Fraction of the viewport height
	ConfettiVelocity = 3.2   // Initial speed in pixels per frame
	ConfettiDecay    = 0.93  // Velocity multiplier per frame
	ConfettiGravity  = 0.35  // Pixels per frame added downwards
	ConfettiTicks    = 120   // Frames a piece lives
)

// Presentation copy
const (
	DefaultBadge     = "REYES CITY RP"
	DefaultTitle     = "SERVER LAUNCHING SOON"
	DefaultTagline   = "Serious RP • Custom Systems • Immersive City"
	DefaultInviteURL = "https://discord.gg/NYtkT79Z"
)
