package hello

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/gfx"
)

// Config holds the demo settings. The zero value is not valid; start from
// DefaultConfig.
type Config struct {
	Window    WindowConfig `yaml:"window"`
	Renderer  string       `yaml:"renderer"`
	VSync     bool         `yaml:"vsync"`
	Debug     []string     `yaml:"debug"`
	Grid      int          `yaml:"grid"`
	AngleStep float32      `yaml:"angle_step"`
	Clear     YAMLColor    `yaml:"clear_color"`
	Assets    AssetsConfig `yaml:"assets"`
}

// WindowConfig is the window section of Config.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Resizable bool   `yaml:"resizable"`
}

// AssetsConfig names the texture and shader stages to load.
type AssetsConfig struct {
	Texture        string `yaml:"texture"`
	VertexShader   string `yaml:"vertex_shader"`
	FragmentShader string `yaml:"fragment_shader"`
}

// DefaultClearColor is the view 0 clear color, 0xRRGGBBAA.
const DefaultClearColor = 0x303030ff

// DefaultConfig returns the settings the demo runs with when no file is
// given.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:  "00-helloworld",
			Width:  1280,
			Height: 720,
		},
		Renderer:  "auto",
		VSync:     true,
		Debug:     []string{"text"},
		Grid:      DefaultGrid,
		AngleStep: DefaultAngleStep,
		Clear:     YAMLColor{NRGBA: gfx.RGBA(DefaultClearColor)},
		Assets: AssetsConfig{
			Texture:        "textures/atlas.png",
			VertexShader:   gfx.DefaultVertexStage,
			FragmentShader: "default_frag",
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("hello: load %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("hello: unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the settings describe a drawable grid.
func (c *Config) Validate() error {
	if c.Grid < 1 {
		return fmt.Errorf("hello: grid must be at least 1, got %d", c.Grid)
	}
	if 4*c.Grid*c.Grid > RendererVertexMax {
		return fmt.Errorf("hello: grid %d needs %d vertices, more than %d", c.Grid, 4*c.Grid*c.Grid, RendererVertexMax)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("hello: invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := gfx.ParseRendererType(c.Renderer); err != nil {
		return fmt.Errorf("hello: %w", err)
	}
	if _, err := gfx.ParseDebugFlags(c.Debug); err != nil {
		return fmt.Errorf("hello: %w", err)
	}
	if c.Assets.Texture == "" || c.Assets.FragmentShader == "" {
		return fmt.Errorf("hello: texture and fragment shader must be set")
	}
	return nil
}

// RendererType returns the parsed renderer name.
func (c *Config) RendererType() gfx.RendererType {
	t, _ := gfx.ParseRendererType(c.Renderer)
	return t
}

// DebugFlags returns the parsed debug flag names.
func (c *Config) DebugFlags() gfx.DebugFlags {
	f, _ := gfx.ParseDebugFlags(c.Debug)
	return f
}

// ResetFlags returns the presentation flags.
func (c *Config) ResetFlags() gfx.ResetFlags {
	if c.VSync {
		return gfx.ResetVSync
	}
	return gfx.ResetNone
}

// ClearRGBA returns the clear color packed as 0xRRGGBBAA.
func (c *Config) ClearRGBA() uint32 { return gfx.PackRGBA(c.Clear.NRGBA) }

// YAMLColor decodes "#rrggbb", "#rrggbbaa" or an SVG color name such as
// "darkslategray".
type YAMLColor struct {
	color.NRGBA
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	c.NRGBA = parsed
	return nil
}

// MarshalYAML writes the color as #rrggbbaa.
func (c YAMLColor) MarshalYAML() (any, error) {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A), nil
}

// ParseColor parses a hex color or a color name.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		named, ok := colornames.Map[strings.ToLower(s)]
		if !ok {
			return color.NRGBA{}, fmt.Errorf("unknown color name: %s", s)
		}
		return color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color format: %s", s)
	}
	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(hex[start:start+2], 16, 8)
		return uint8(v), err
	}
	var ch [4]uint8
	ch[3] = 255
	for i := 0; i < len(hex)/2; i++ {
		v, err := parse(i * 2)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color format: %s", s)
		}
		ch[i] = v
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}
