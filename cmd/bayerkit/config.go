package main

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	yml "gopkg.in/yaml.v2"

	dm "bayerkit/pkg/demosaic"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is read from the working directory unless BAYERKIT_CONFIG names another file.
	ConfigFileName = "bayerkit.yml"
)

type output struct {
	// Format is png, tiff, fits or jpeg.  Empty picks it from the output file extension
	Format string `koanf:"Format" yaml:"Format"`

	// Crop removes the border gradient correction leaves untouched
	Crop bool `koanf:"Crop" yaml:"Crop"`

	// PreviewWidth is the width of each panel in JPEG previews and comparison sheets
	PreviewWidth int `koanf:"PreviewWidth" yaml:"PreviewWidth"`
}

type config struct {
	// Method is bilinear or gradient
	Method string `koanf:"Method" yaml:"Method"`

	// Workers is the number of row ranges processed in parallel, -1 for one per CPU
	Workers int `koanf:"Workers" yaml:"Workers"`

	// Black and White are the sensor levels mapped to 0 and 1.  White 0 uses the file's bit depth
	Black float64 `koanf:"Black" yaml:"Black"`
	White float64 `koanf:"White" yaml:"White"`

	Multipliers dm.Multipliers `koanf:"Multipliers" yaml:"Multipliers"`
	Output      output         `koanf:"Output" yaml:"Output"`
}

func defaultConfig() config {
	return config{
		Method:      dm.MethodBilinear,
		Workers:     -1,
		Multipliers: dm.Unity,
		Output:      output{PreviewWidth: 800},
	}
}

func configPath() string {
	if p := os.Getenv("BAYERKIT_CONFIG"); p != "" {
		return p
	}
	return ConfigFileName
}

// loadConfig layers the file at path over the defaults.  A missing file is not an error.
func loadConfig(path string) (config, error) {
	k := koanf.New(".")
	cfg := config{}
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return cfg, err
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}
	err := k.Unmarshal("", &cfg)
	return cfg, err
}

func (c config) pipeline() (*dm.Pipeline, error) {
	rec, err := dm.NewReconstructor(c.Method, c.Workers)
	if err != nil {
		return nil, err
	}
	return &dm.Pipeline{
		Black:         c.Black,
		White:         c.White,
		Multipliers:   c.Multipliers,
		Reconstructor: rec,
		Crop:          c.Output.Crop,
	}, nil
}

func writeConfig(w io.Writer, c config) error {
	return yml.NewEncoder(w).Encode(c)
}
