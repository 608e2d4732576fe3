package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

func root() {
	str := `bayerkitd develops RGGB Bayer mosaics over HTTP.
POST a FITS or TIFF mosaic to /demosaic and receive the RGB image back.

Usage:
	bayerkitd <command>

Commands:
	run
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `bayerkitd is amenable to configuration via its .yaml file.  When no configuration
is provided, the defaults are used.  The command mkconf generates the configuration
file with the default values.

Routes, relative to Root:
	POST /demosaic?method=&format=&black=&white=&r=&g=&b=&crop=
	GET  /methods
	GET  /version

Any query parameter left out takes its value from the Defaults section of the config.
format is png, tiff, fits or jpeg.  FITS responses are unclamped float cubes.`
	fmt.Println(str)
}

func mkconf(cfg config) {
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := writeConfig(f, cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config) {
	root := chi.NewRouter()
	root.Use(middleware.Logger)
	root.Mount(cfg.Root, newRouter(cfg))
	log.Println("now listening for requests at ", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, root))
}

func main() {
	args := os.Args
	if len(args) < 2 {
		root()
		return
	}
	cfg, err := loadConfig(ConfigFileName)
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	switch strings.ToLower(args[1]) {
	case "help":
		help()
	case "mkconf":
		mkconf(cfg)
	case "conf":
		if err := writeConfig(os.Stdout, cfg); err != nil {
			log.Fatal(err)
		}
	case "version":
		fmt.Printf("bayerkitd version %v\n", Version)
	case "run":
		run(cfg)
	default:
		log.Fatal("unknown command")
	}
}
