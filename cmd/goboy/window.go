package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ashgrove/goboy/internal/device"
)

// gbFPS is the DMG's native refresh rate: one 70224 T-cycle frame at
// 4.194304 MHz.
const gbFPS = 4194304.0 / 70224.0

// game adapts a device.Device to ebiten.Game: it paces emulation against
// wall-clock time (decoupled from ebiten's own draw rate), forwards the
// eight Game Boy buttons from the keyboard, and blits the 2-bit-per-pixel
// framebuffer into an RGBA texture each draw.
type game struct {
	dev      *device.Device
	tex      *ebiten.Image
	lastTime time.Time
	frameAcc float64
}

func runWindowed(dev *device.Device, scale int, title string) error {
	if scale <= 0 {
		scale = 3
	}
	ebiten.SetWindowSize(160*scale, 144*scale)
	ebiten.SetWindowTitle(title)
	g := &game{dev: dev, lastTime: time.Now()}
	return ebiten.RunGame(g)
}

var keyButtons = map[ebiten.Key]device.Button{
	ebiten.KeyRight:      device.Right,
	ebiten.KeyLeft:       device.Left,
	ebiten.KeyUp:         device.Up,
	ebiten.KeyDown:       device.Down,
	ebiten.KeyZ:          device.A,
	ebiten.KeyX:          device.B,
	ebiten.KeyEnter:      device.Start,
	ebiten.KeyShiftRight: device.Select,
}

func (g *game) Update() error {
	var held device.Button
	for key, btn := range keyButtons {
		if ebiten.IsKeyPressed(key) {
			held |= btn
		}
	}
	g.dev.Press(held)
	g.dev.Release(^held & (device.Right | device.Left | device.Up | device.Down | device.A | device.B | device.Select | device.Start))

	now := time.Now()
	dt := now.Sub(g.lastTime).Seconds()
	g.lastTime = now
	g.frameAcc += dt * gbFPS

	steps := 0
	for g.frameAcc >= 1.0 && steps < 8 { // cap to avoid a spiral of death after a stall
		if err := g.dev.StepFrame(); err != nil {
			return err
		}
		g.frameAcc -= 1.0
		steps++
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.tex == nil {
		g.tex = ebiten.NewImage(160, 144)
	}
	g.tex.WritePixels(packRGBA(g.dev.Framebuffer()))
	screen.DrawImage(g.tex, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) { return 160, 144 }
