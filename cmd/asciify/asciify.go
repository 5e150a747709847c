package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/anim"
	"github.com/wbrown/img2ascii/export"
	"github.com/wbrown/img2ascii/gifseq"
	"github.com/wbrown/img2ascii/imageutil"
	"github.com/wbrown/img2ascii/source"
)

func main() {
	inputFile := flag.String("input", "",
		"Path to the input image, GIF, or video file (required)")
	outputFile := flag.String("output", "",
		"Path to save the export (if not specified, prints ANSI to stdout)")
	format := flag.String("format", "",
		"Export format: gif, mp4, webm, or png "+
			"(default: inferred from the output extension)")
	charset := flag.String("charset", ".:-=+*#%@",
		"Glyph ramp, darkest first")
	pixelSize := flag.Int("pixelsize", 8,
		"Horizontal sampling step in source pixels (minimum 2)")
	colorMode := flag.String("colormode", "original",
		"Color mode: original, monochrome, gradient, or custom")
	monoColor := flag.String("color", "#ffffff",
		"Hex color for monochrome mode")
	gradient := flag.String("gradient", "#000000,#ffffff",
		"Comma-separated hex gradient stops (2 to 8)")
	background := flag.String("bg", "#000000",
		"Hex background color")
	transparent := flag.Bool("transparent", false,
		"Leave the background transparent instead of filling it")
	blend := flag.String("blend", "normal",
		"Blend mode: normal, multiply, screen, overlay, or difference")
	contrast := flag.Float64("contrast", 1.0,
		"Contrast multiplier (1.0 = neutral)")
	brightness := flag.Float64("brightness", 1.0,
		"Brightness multiplier (1.0 = neutral)")
	invert := flag.Bool("invert", false,
		"Invert the glyph ramp mapping")
	width := flag.Int("width", 0,
		"Export width in pixels (default: source width)")
	height := flag.Int("height", 0,
		"Export height in pixels (default: source height)")
	fontPath := flag.String("font", "",
		"Path to a TTF font for rendered output (default: built-in bitmap font)")
	termWidth := flag.Int("termwidth", 0,
		"Downscale the source to this pixel width before ANSI output "+
			"(0 = native size)")
	play := flag.Bool("play", false,
		"Play the source as ANSI animation in the terminal")
	fps := flag.Int("fps", 30,
		"Terminal playback refresh rate")
	flag.Parse()

	if *inputFile == "" {
		fmt.Println("Please provide the input using the -input flag")
		flag.PrintDefaults()
		os.Exit(1)
	}

	settings := img2ascii.Settings{
		CharacterRamp:         []rune(*charset),
		PixelSize:             *pixelSize,
		ColorMode:             img2ascii.ParseColorMode(*colorMode),
		MonochromeColor:       *monoColor,
		GradientStops:         strings.Split(*gradient, ","),
		BackgroundColor:       *background,
		TransparentBackground: *transparent,
		BlendMode:             img2ascii.ParseBlendMode(*blend),
		Contrast:              *contrast,
		Brightness:            *brightness,
		Invert:                *invert,
	}
	settings.Normalize()

	src, err := source.Load(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: loading %s: %v\n", *inputFile, err)
		os.Exit(1)
	}
	defer src.Close()

	if *width <= 0 {
		*width = src.NativeWidth()
	}
	if *height <= 0 {
		*height = src.NativeHeight()
	}

	var opts []img2ascii.RendererOption
	if *fontPath != "" {
		opts = append(opts, img2ascii.WithFontPath(*fontPath))
	}
	renderer := img2ascii.NewCellRenderer(opts...)

	switch {
	case *play:
		err = playANSI(src, settings, renderer, *fps)
	case *outputFile != "":
		err = exportFile(src, settings, renderer, *outputFile, *format, *width, *height)
	default:
		err = printANSI(src, settings, *termWidth)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

// printANSI converts the source's first frame and writes truecolor
// ANSI to stdout, optionally downscaled to fit a terminal width.
func printANSI(src source.Source, settings img2ascii.Settings, termWidth int) error {
	frame, err := firstFrame(src)
	if err != nil {
		return err
	}
	if termWidth > 0 && frame.Width() > termWidth {
		frame = imageutil.ResizeToWidth(frame, termWidth, imageutil.InterpolationArea)
	}
	cells := img2ascii.Sample(frame, settings)
	fmt.Print(img2ascii.RenderToANSI(cells))
	return nil
}

func firstFrame(src source.Source) (*imageutil.RGBAImage, error) {
	switch s := src.(type) {
	case *source.Still:
		return s.Image, nil
	case *source.Animation:
		return gifFirstFrame(s), nil
	case *source.Video:
		if err := s.Seek(context.Background(), 0); err != nil {
			return nil, err
		}
		return s.CaptureFrame()
	default:
		return nil, fmt.Errorf("unknown source variant %T", src)
	}
}

func gifFirstFrame(a *source.Animation) *imageutil.RGBAImage {
	comp := gifseq.NewCompositor(a.Seq.Width, a.Seq.Height)
	return comp.Compose(a.Seq.Frames[0])
}

// exportFile runs a full export pass and writes the blob to disk. PNG
// output is the still path: one converted frame saved directly.
func exportFile(src source.Source, settings img2ascii.Settings, renderer *img2ascii.CellRenderer, path, formatName string, width, height int) error {
	if formatName == "" {
		formatName = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	if strings.EqualFold(formatName, "png") {
		frame, err := firstFrame(src)
		if err != nil {
			return err
		}
		cells := img2ascii.Sample(frame, settings)
		return imageutil.SavePNG(renderer.Render(cells, settings, width, height), path)
	}

	f, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	coord := export.NewCoordinator(renderer)
	lastPercent := -1
	blob, err := coord.Export(context.Background(), src, settings, export.Options{
		Width:  width,
		Height: height,
		Format: f,
		Progress: func(p float64) {
			if percent := int(p * 100); percent != lastPercent {
				lastPercent = percent
				fmt.Fprintf(os.Stderr, "\rExporting... %3d%%", percent)
			}
		},
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0644)
}

// playANSI drives the animation in the terminal until interrupted,
// redrawing in place with cursor-home escapes.
func playANSI(src source.Source, settings img2ascii.Settings, renderer *img2ascii.CellRenderer, fps int) error {
	if fps < 1 {
		fps = 30
	}
	driver := anim.NewDriver(src, settings, renderer)
	driver.Play()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Print(img2ascii.ESC + "[2J")
	interval := time.Second / time.Duration(fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Print(img2ascii.ESC + "[0m\n")
			return nil
		case now := <-ticker.C:
			if err := driver.Tick(now); err != nil {
				return err
			}
			if cells := driver.Cells(); cells != nil {
				fmt.Print(img2ascii.ESC + "[H")
				fmt.Print(img2ascii.RenderToANSI(cells))
			}
		}
	}
}
