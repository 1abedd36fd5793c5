// Package config handles viewer configuration loading and management.
package config

// Camera modes.
const (
	CameraOrbit       = "orbit"
	CameraFirstPerson = "first_person"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics" toml:"graphics"`
	Assets   AssetsConfig   `yaml:"assets" toml:"assets"`
	Camera   CameraConfig   `yaml:"camera" toml:"camera"`
	Render   RenderConfig   `yaml:"render" toml:"render"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width" toml:"width"`
	Height     int  `yaml:"height" toml:"height"`
	Fullscreen bool `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool `yaml:"vsync" toml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit" toml:"fps_limit"`
}

// AssetsConfig names the files loaded at startup.
type AssetsConfig struct {
	Object  string `yaml:"object" toml:"object"`   // .r4o manifest
	Terrain string `yaml:"terrain" toml:"terrain"` // .r4t description
}

// CameraConfig holds camera settings.
type CameraConfig struct {
	Mode        string  `yaml:"mode" toml:"mode"` // orbit or first_person
	FOV         float32 `yaml:"fov" toml:"fov"`   // Vertical, degrees
	Near        float32 `yaml:"near" toml:"near"`
	Far         float32 `yaml:"far" toml:"far"`
	Distance    float32 `yaml:"distance" toml:"distance"`
	MoveSpeed   float32 `yaml:"move_speed" toml:"move_speed"`   // Units per second
	Sensitivity float32 `yaml:"sensitivity" toml:"sensitivity"` // Radians per pixel
	EyeHeight   float32 `yaml:"eye_height" toml:"eye_height"`   // Above terrain in first person
}

// RenderConfig holds scene rendering settings.
type RenderConfig struct {
	ClearColor     [3]float32 `yaml:"clear_color" toml:"clear_color"`
	LightDirection [3]float32 `yaml:"light_direction" toml:"light_direction"`
	Wireframe      bool       `yaml:"wireframe" toml:"wireframe"`
	ShowAxis       bool       `yaml:"show_axis" toml:"show_axis"`
	ShowGrid       bool       `yaml:"show_grid" toml:"show_grid"`
	ShowBounds     bool       `yaml:"show_bounds" toml:"show_bounds"`
	ScreenshotDir  string     `yaml:"screenshot_dir" toml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Camera: CameraConfig{
			Mode:        CameraOrbit,
			FOV:         45,
			Near:        0.1,
			Far:         1000,
			Distance:    10,
			MoveSpeed:   20,
			Sensitivity: 0.005,
			EyeHeight:   1.8,
		},
		Render: RenderConfig{
			ClearColor:     [3]float32{0.2, 0.2, 0.25},
			LightDirection: [3]float32{-0.5, -1, -0.3},
			ShowAxis:       true,
			ScreenshotDir:  "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
