// Command goboy is the emulator's command-line entry point: it loads a ROM
// (and optional boot ROM) into a device.Device and either drives it headless
// for a fixed number of frames or opens a window and runs it interactively.
package main

import (
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/ashgrove/goboy/internal/device"
)

func main() {
	app := cli.NewApp()
	app.Name = "goboy"
	app.Usage = "goboy [options] <ROM file>"
	app.Description = "A Game Boy (DMG) emulator core"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "path to ROM (.gb)"},
		cli.StringFlag{Name: "bootrom", Usage: "optional DMG boot ROM"},
		cli.IntFlag{Name: "scale", Value: 3, Usage: "window scale (windowed mode)"},
		cli.BoolFlag{Name: "save", Usage: "persist cartridge RAM to saves/<title>.sav on exit and load on start"},
		cli.BoolFlag{Name: "headless", Usage: "run without a window"},
		cli.IntFlag{Name: "frames", Value: 300, Usage: "frames to run in headless mode"},
		cli.StringFlag{Name: "outpng", Usage: "write the last framebuffer to a PNG at this path (headless)"},
		cli.StringFlag{Name: "expect", Usage: "assert the framebuffer's CRC32 (hex, headless)"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return fmt.Errorf("no ROM path provided")
		}
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("read ROM: %w", err)
	}
	bootROM, err := readOptional(c.String("bootrom"))
	if err != nil {
		return fmt.Errorf("read boot ROM: %w", err)
	}

	dev, err := device.New(rom, bootROM)
	if err != nil {
		return fmt.Errorf("create device: %w", err)
	}

	save := c.Bool("save")
	savePath := saveFilePath(dev.Title())
	if save {
		if data, err := os.ReadFile(savePath); err == nil {
			dev.LoadSave(data)
		}
	}

	if c.Bool("headless") {
		err := runHeadless(dev, c.Int("frames"), c.String("outpng"), c.String("expect"))
		if save {
			persistSave(dev, savePath)
		}
		return err
	}

	err = runWindowed(dev, c.Int("scale"), filepath.Base(romPath))
	if save {
		persistSave(dev, savePath)
	}
	return err
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

// saveFilePath derives saves/<title>.sav, falling back to "cart" when the
// header carries no usable title (e.g. homebrew test ROMs).
func saveFilePath(title string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = "cart"
	}
	return filepath.Join("saves", name+".sav")
}

func persistSave(dev *device.Device, path string) {
	data := dev.Save()
	if data == nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("persist save: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("persist save: %v", err)
	}
}

// runHeadless drives frames frames with no window, then optionally writes a
// PNG of the final framebuffer and/or asserts its CRC32 against expectCRC.
func runHeadless(dev *device.Device, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		if err := dev.StepFrame(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	dur := time.Since(start)

	fb := packRGBA(dev.Framebuffer())
	crc := crc32.ChecksumIEEE(fb)
	fps := float64(frames) / dur.Seconds()
	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		frames, dur.Truncate(time.Millisecond), fps, crc)

	if pngPath != "" {
		if err := saveFramePNG(fb, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", pngPath)
	}

	if expectCRC != "" {
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

// shade maps the PPU's 2-bit palette indices to the classic DMG greens.
var shade = [4][3]byte{
	{0x9B, 0xBC, 0x0F},
	{0x8B, 0xAC, 0x0F},
	{0x30, 0x62, 0x30},
	{0x0F, 0x38, 0x0F},
}

func packRGBA(fb *[160 * 144]byte) []byte {
	out := make([]byte, 160*144*4)
	for i, v := range fb {
		c := shade[v&0x03]
		out[i*4+0] = c[0]
		out[i*4+1] = c[1]
		out[i*4+2] = c[2]
		out[i*4+3] = 0xFF
	}
	return out
}

func saveFramePNG(pix []byte, path string) error {
	img := &image.RGBA{
		Pix:    pix,
		Stride: 4 * 160,
		Rect:   image.Rect(0, 0, 160, 144),
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
