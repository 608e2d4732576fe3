//go:build js && wasm

package main

import (
	"sort"
	"syscall/js"

	dm "bayerkit/pkg/demosaic"
)

var (
	lastFrame *dm.RawFrame
)

func main() {
	js.Global().Set("demosaicFITS", js.FuncOf(demosaicFITS))
	js.Global().Set("renderComparison", js.FuncOf(renderComparison))
	select {} // block forever
}

// demosaicFITS(fileBytes, {method, crop, previewWidth}) develops a FITS
// mosaic and returns a JPEG preview with per-channel medians.
func demosaicFITS(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("usage: demosaicFITS(fileBytes, options)")
	}

	jsBytes := args[0]
	length := jsBytes.Get("length").Int()
	fileBytes := make([]byte, length)
	js.CopyBytesToGo(fileBytes, jsBytes)

	method := dm.MethodBilinear
	crop := false
	previewWidth := 800
	if len(args) >= 2 && args[1].Type() == js.TypeObject {
		if v := args[1].Get("method"); v.Type() == js.TypeString {
			method = v.String()
		}
		if v := args[1].Get("crop"); v.Type() == js.TypeBoolean {
			crop = v.Bool()
		}
		if v := args[1].Get("previewWidth"); v.Type() == js.TypeNumber {
			previewWidth = v.Int()
		}
	}

	frame, err := dm.ReadFitsFromBytes(fileBytes)
	if err != nil {
		return errorResult("FITS parse error: " + err.Error())
	}
	lastFrame = frame

	// js has a single thread, so row ranges run inline
	rec, err := dm.NewReconstructor(method, 1)
	if err != nil {
		return errorResult(err.Error())
	}
	p := &dm.Pipeline{Reconstructor: rec, Crop: crop}
	img, err := p.Run(frame)
	if err != nil {
		return errorResult("Demosaic error: " + err.Error())
	}

	jpegBytes, err := dm.RenderComparisonBytes([]dm.Panel{{Label: rec.Name(), Image: img}}, previewWidth)
	if err != nil {
		return errorResult("Render error: " + err.Error())
	}

	medians := make([]interface{}, len(dm.Channels))
	for i, c := range dm.Channels {
		medians[i] = channelMedian(img.Channel(c))
	}

	return js.ValueOf(map[string]interface{}{
		"width":    img.Cols,
		"height":   img.Rows,
		"method":   rec.Name(),
		"bitDepth": frame.BitDepth,
		"object":   frame.Metadata.ObjectName(),
		"medians":  medians,
		"image":    toUint8Array(jpegBytes),
	})
}

// renderComparison renders the last loaded mosaic with both methods side by
// side, with the 3x3 disagreement grid on the gradient panel.
func renderComparison(this js.Value, args []js.Value) interface{} {
	if lastFrame == nil {
		return js.Null()
	}

	var panels []dm.Panel
	images := map[string]*dm.Image{}
	for _, method := range dm.Methods {
		rec, err := dm.NewReconstructor(method, 1)
		if err != nil {
			return js.Null()
		}
		img, err := (&dm.Pipeline{Reconstructor: rec, Crop: true}).Run(lastFrame)
		if err != nil {
			return js.Null()
		}
		images[method] = img
		panels = append(panels, dm.Panel{Label: method, Image: img})
	}
	zones, err := dm.CompareZones(images[dm.MethodBilinear], images[dm.MethodGradient])
	if err != nil {
		return js.Null()
	}
	panels[len(panels)-1].Zones = zones

	jpegBytes, err := dm.RenderComparisonBytes(panels, 600)
	if err != nil {
		return js.Null()
	}
	return toUint8Array(jpegBytes)
}

func toUint8Array(b []byte) js.Value {
	uint8Array := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(uint8Array, b)
	return uint8Array
}

func errorResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{
		"error": msg,
	})
}

func channelMedian(p *dm.Plane) float64 {
	values := make([]float64, 0, len(p.Pix))
	for i, v := range p.Pix {
		if p.Known[i] {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	n := len(values)
	if n%2 == 0 {
		return (values[n/2-1] + values[n/2]) / 2.0
	}
	return values[n/2]
}
