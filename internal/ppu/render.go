package ppu

import "sort"

const (
	lcdcBGWindowEnable byte = 1 << 0
	lcdcOBJEnable      byte = 1 << 1
	lcdcOBJSize        byte = 1 << 2
	lcdcBGTilemapArea  byte = 1 << 3
	lcdcTileDataArea   byte = 1 << 4
	lcdcWindowEnable   byte = 1 << 5
	lcdcWinTilemapArea byte = 1 << 6
)

// renderScanline composes background, window, and sprites for the current
// line into Framebuffer. It runs once per VRAM->HBlank transition.
func (p *PPU) renderScanline() {
	bgPalette := unpackPalette(p.bgp)

	if p.lcdc&lcdcBGWindowEnable == 0 {
		p.fillLine(bgPalette[0])
	} else {
		p.renderBackground(bgPalette)
	}

	if p.lcdc&lcdcWindowEnable != 0 {
		p.renderWindow(bgPalette)
	}

	if p.lcdc&lcdcOBJEnable != 0 {
		p.renderSprites()
	}
}

func (p *PPU) fillLine(value byte) {
	base := int(p.ly) * 160
	for x := 0; x < 160; x++ {
		p.Framebuffer[base+x] = value
	}
}

func (p *PPU) tileIndexForWindow(index int) int {
	if p.lcdc&lcdcTileDataArea == 0 && index < 128 {
		return index + 256
	}
	return index
}

func (p *PPU) renderBackground(bgPalette [4]byte) {
	var base int
	if p.lcdc&lcdcBGTilemapArea != 0 {
		base = 0x1C00
	} else {
		base = 0x1800
	}

	scrolledY := p.ly + p.scy
	row := (int(scrolledY) / 8) & 31
	column := (int(p.scx) / 8) & 31
	tileY := int(scrolledY) % 8

	lineBase := int(p.ly) * 160
	for x := 0; x < 160; x++ {
		tileIndex := p.tileIndexForWindow(int(p.vram[base+row*32+column]))
		tileX := (int(p.scx) + x) % 8
		pixel := p.tiles[tileIndex][tileY][tileX]
		p.Framebuffer[lineBase+x] = bgPalette[pixel]
		if tileX == 7 {
			column = (column + 1) & 31
		}
	}
}

func (p *PPU) renderWindow(bgPalette [4]byte) {
	if p.ly < p.wy || !p.windowDrawing {
		return
	}
	if p.wx > 166 {
		return
	}

	var startX int
	if int(p.wx) >= 7 {
		startX = int(p.wx) - 7
	}

	var base int
	if p.lcdc&lcdcWinTilemapArea != 0 {
		base = 0x1C00
	} else {
		base = 0x1800
	}

	windowY := p.windowLine
	row := (windowY / 8) & 31
	tileY := windowY % 8

	lineBase := int(p.ly) * 160
	column := 0
	tileX := 0
	tileIndex := p.tileIndexForWindow(int(p.vram[base+row*32+column]))
	column++

	for x := startX; x < 160; x++ {
		pixel := p.tiles[tileIndex][tileY][tileX]
		p.Framebuffer[lineBase+x] = bgPalette[pixel]

		tileX++
		if tileX == 8 {
			tileX = 0
			tileIndex = p.tileIndexForWindow(int(p.vram[base+row*32+column]))
			column++
		}
	}

	p.windowLine++
}

type spriteEntry struct {
	y, x, tile, attr byte
	oamIndex         int
}

func (p *PPU) renderSprites() {
	height := 8
	if p.lcdc&lcdcOBJSize != 0 {
		height = 16
	}

	var visible []spriteEntry
	for i := 0; i < 40 && len(visible) < 10; i++ {
		base := i * 4
		y := p.oam[base]
		if int(p.ly)+16 < int(y) || int(p.ly)+16 >= int(y)+height {
			continue
		}
		visible = append(visible, spriteEntry{
			y:        y,
			x:        p.oam[base+1],
			tile:     p.oam[base+2],
			attr:     p.oam[base+3],
			oamIndex: i,
		})
	}

	sort.SliceStable(visible, func(a, b int) bool {
		return visible[a].x < visible[b].x
	})

	obp0 := unpackPalette(p.obp0)
	obp1 := unpackPalette(p.obp1)
	lineBase := int(p.ly) * 160

	for _, s := range visible {
		tile := int(s.tile)
		if height == 16 {
			tile &^= 1
		}

		spriteLine := int(p.ly) + 16 - int(s.y)
		if s.attr&0x40 != 0 { // Y flip
			spriteLine = height - 1 - spriteLine
		}
		if height == 16 && spriteLine >= 8 {
			tile++
			spriteLine -= 8
		}

		palette := obp0
		if s.attr&0x10 != 0 {
			palette = obp1
		}
		behindBG := s.attr&0x80 != 0
		xFlip := s.attr&0x20 != 0

		for col := 0; col < 8; col++ {
			screenX := int(s.x) - 8 + col
			if screenX < 0 || screenX >= 160 {
				continue
			}
			tileCol := col
			if xFlip {
				tileCol = 7 - col
			}
			pixel := p.tiles[tile][spriteLine][tileCol]
			if pixel == 0 {
				continue
			}
			idx := lineBase + screenX
			if behindBG && p.Framebuffer[idx] != unpackPalette(p.bgp)[0] {
				continue
			}
			p.Framebuffer[idx] = palette[pixel]
		}
	}
}
