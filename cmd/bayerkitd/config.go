package main

import (
	"errors"
	"io"
	"io/fs"

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

	// ConfigFileName is what it sounds like
	ConfigFileName = "bayerkitd.yml"
)

// defaults are used for any query parameter a request leaves out
type defaults struct {
	Method      string         `koanf:"Method" yaml:"Method"`
	Format      string         `koanf:"Format" yaml:"Format"`
	Black       float64        `koanf:"Black" yaml:"Black"`
	White       float64        `koanf:"White" yaml:"White"`
	Multipliers dm.Multipliers `koanf:"Multipliers" yaml:"Multipliers"`
	Crop        bool           `koanf:"Crop" yaml:"Crop"`
}

type config struct {
	Addr string `koanf:"Addr" yaml:"Addr"`
	Root string `koanf:"Root" yaml:"Root"`

	// Workers bounds the row ranges one request is processed over, -1 for one per CPU
	Workers int `koanf:"Workers" yaml:"Workers"`

	// MaxUploadMB caps the request body
	MaxUploadMB int `koanf:"MaxUploadMB" yaml:"MaxUploadMB"`

	// PreviewWidth is the width of JPEG responses
	PreviewWidth int `koanf:"PreviewWidth" yaml:"PreviewWidth"`

	Defaults defaults `koanf:"Defaults" yaml:"Defaults"`
}

func defaultConfig() config {
	return config{
		Addr:         ":8000",
		Root:         "/",
		Workers:      -1,
		MaxUploadMB:  256,
		PreviewWidth: 800,
		Defaults: defaults{
			Method:      dm.MethodBilinear,
			Format:      dm.FormatPNG,
			Multipliers: dm.Unity,
		},
	}
}

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

func writeConfig(w io.Writer, c config) error {
	return yml.NewEncoder(w).Encode(c)
}
