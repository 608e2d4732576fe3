package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	dm "bayerkit/pkg/demosaic"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	str := `bayerkit reconstructs RGB images from RGGB Bayer mosaics (FITS, TIFF, PNG).

Usage:
	bayerkit <command> [arguments]

Commands:
	run <input> <output>        demosaic with the configured method
	compare <input> <output>    render bilinear and gradient-corrected side by side (JPEG)
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `bayerkit reads its settings from bayerkit.yml in the working directory,
or from the file named by BAYERKIT_CONFIG.  When no file exists the defaults are used.
mkconf writes the defaults to bayerkit.yml; conf prints the effective settings.

Method is bilinear or gradient.  The gradient method leaves a 2-pixel border
untouched; set Output.Crop to drop it.

Black and White are raw sensor levels.  White 0 means the full range of the
input's bit depth.  Multipliers are the R, G, B white balance gains; they are
applied per photosite before demosaicing, using the same RGGB layout.

Output.Format is png, tiff, fits or jpeg.  FITS output is an unclamped 64-bit
float cube in R, G, B plane order; the other formats are clamped to [0, 1].`
	fmt.Println(str)
}

func run(args []string) error {
	if len(args) < 1 {
		usage()
		return nil
	}
	cfg, err := loadConfig(configPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	switch strings.ToLower(args[0]) {
	case "help":
		help()
		return nil
	case "mkconf":
		f, err := os.Create(ConfigFileName)
		if err != nil {
			return err
		}
		defer f.Close()
		return writeConfig(f, cfg)
	case "conf":
		return writeConfig(os.Stdout, cfg)
	case "version":
		fmt.Printf("bayerkit version %v\n", Version)
		return nil
	case "run":
		if len(args) < 3 {
			return fmt.Errorf("usage: bayerkit run <input> <output>")
		}
		return develop(cfg, args[1], args[2])
	case "compare":
		if len(args) < 3 {
			return fmt.Errorf("usage: bayerkit compare <input> <output.jpg>")
		}
		return compare(cfg, args[1], args[2])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func develop(cfg config, inputFilePath, outputFilePath string) error {
	frame, err := loadFrame(inputFilePath)
	if err != nil {
		return err
	}
	p, err := cfg.pipeline()
	if err != nil {
		return err
	}

	startTime := time.Now()
	img, err := p.Run(frame)
	if err != nil {
		return err
	}
	elapsed := time.Since(startTime)

	format := cfg.Output.Format
	if format == "" {
		format = formatFromPath(outputFilePath)
	}
	if err := writeOutput(outputFilePath, img, format, cfg.Output.PreviewWidth); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("=== Demosaic Results (%.2fs) ===\n", elapsed.Seconds())
	fmt.Printf("  Method:          %s\n", p.Reconstructor.Name())
	fmt.Printf("  Image size:      %d x %d\n", img.Cols, img.Rows)
	printChannelStats(img)
	fmt.Printf("  Written:         %s (%s)\n", outputFilePath, format)
	fmt.Println("==============================")
	return nil
}

func compare(cfg config, inputFilePath, outputFilePath string) error {
	frame, err := loadFrame(inputFilePath)
	if err != nil {
		return err
	}

	results := make(map[string]*dm.Image, len(dm.Methods))
	for _, method := range dm.Methods {
		c := cfg
		c.Method = method
		// both panels must share dimensions for the zone comparison
		c.Output.Crop = true
		p, err := c.pipeline()
		if err != nil {
			return err
		}
		startTime := time.Now()
		img, err := p.Run(frame)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %.2fs\n", method, time.Since(startTime).Seconds())
		results[method] = img
	}

	zones, err := dm.CompareZones(results[dm.MethodBilinear], results[dm.MethodGradient])
	if err != nil {
		return err
	}
	panels := []dm.Panel{
		{Label: "bilinear", Image: results[dm.MethodBilinear]},
		{Label: "gradient-corrected", Image: results[dm.MethodGradient], Zones: zones},
	}
	if err := dm.RenderComparison(panels, cfg.Output.PreviewWidth, outputFilePath); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("=== Method Disagreement (3x3) ===")
	for i, pos := range dm.ZoneOrder {
		z := zones.Zones[pos]
		fmt.Printf("  %-8s mean=%.5f  median=%.5f  R=%.5f G=%.5f B=%.5f\n", z.Label, z.MeanAbsDiff, z.MedianAbsDiff,
			z.ChannelMeanAbsDiff[dm.Red], z.ChannelMeanAbsDiff[dm.Green], z.ChannelMeanAbsDiff[dm.Blue])
		if (i+1)%3 == 0 && i < 8 {
			fmt.Println("  ---")
		}
	}
	fmt.Printf("\n  Overall:  %.5f (best: %s, worst: %s)\n", zones.MeanAbsDiff, zones.BestZone, zones.WorstZone)
	fmt.Printf("  Off-axis: %.1f%%\n", zones.OffAxisPct)
	if !zones.Reliable {
		fmt.Println("  [FEW SAMPLES PER ZONE - UNRELIABLE]")
	}
	fmt.Println("==============================")
	fmt.Printf("Written: %s\n", outputFilePath)
	return nil
}

func loadFrame(inputFilePath string) (*dm.RawFrame, error) {
	fmt.Printf("Loading: %s\n", inputFilePath)
	lowerPath := strings.ToLower(inputFilePath)
	if strings.HasSuffix(lowerPath, ".fits") || strings.HasSuffix(lowerPath, ".fit") {
		frame, err := dm.ReadFits(inputFilePath)
		if err != nil {
			return nil, err
		}
		fmt.Printf("FITS loaded: %dx%d, %d-bit\n", frame.Mosaic.Cols, frame.Mosaic.Rows, frame.BitDepth)
		return frame, nil
	}
	frame, err := loadNonFitsImage(inputFilePath)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Mosaic loaded: %dx%d, %d-bit\n", frame.Mosaic.Cols, frame.Mosaic.Rows, frame.BitDepth)
	return frame, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return dm.FormatTIFF
	case ".fits", ".fit":
		return dm.FormatFITS
	case ".jpg", ".jpeg":
		return dm.FormatJPEG
	default:
		return dm.FormatPNG
	}
}

func writeOutput(path string, img *dm.Image, format string, previewWidth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := dm.WriteImage(f, img, format, previewWidth); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func printChannelStats(img *dm.Image) {
	for _, c := range dm.Channels {
		p := img.Channel(c)
		values := make([]float64, 0, len(p.Pix))
		for i, v := range p.Pix {
			if p.Known[i] {
				values = append(values, v)
			}
		}
		median, mad := medianMAD(values)
		fmt.Printf("  %s (median):      %.4f +/- %.4f  (%d samples)\n", c, median, mad, len(values))
	}
}

func medianMAD(values []float64) (float64, float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	var median float64
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2.0
	} else {
		median = sorted[n/2]
	}

	deviations := make([]float64, n)
	for i := range sorted {
		deviations[i] = math.Abs(sorted[i] - median)
	}
	sort.Float64s(deviations)

	var madMedian float64
	if n%2 == 0 {
		madMedian = (deviations[n/2-1] + deviations[n/2]) / 2.0
	} else {
		madMedian = deviations[n/2]
	}

	return median, 1.4826 * madMedian
}
