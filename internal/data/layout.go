package data

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/colonysim/colony/internal/world"
)

// Tile codes used in layout files.
const (
	layoutEmpty = 0
	layoutFloor = 1
)

// TileLayout is a fixed tile map read from disk.
type TileLayout struct {
	width  int
	height int
	tiles  []world.TileType // flat array [x * height + y], matching the world grid
}

func (l *TileLayout) Width() int  { return l.width }
func (l *TileLayout) Height() int { return l.height }

// At returns the tile type at (x, y). Out-of-range cells read as empty.
func (l *TileLayout) At(x, y int) world.TileType {
	if x < 0 || x >= l.width || y < 0 || y >= l.height {
		return world.TileEmpty
	}
	return l.tiles[x*l.height+y]
}

// Apply stamps the layout onto w. Sizes must match.
func (l *TileLayout) Apply(w *world.World) error {
	if w.Width() != l.width || w.Height() != l.height {
		return fmt.Errorf("layout is %dx%d, world is %dx%d", l.width, l.height, w.Width(), w.Height())
	}
	w.EachTile(func(t *world.Tile) {
		t.SetType(l.At(t.X(), t.Y()))
	})
	return nil
}

// LoadTileLayout reads a CSV tile file: each line is a row (y) of comma-separated
// tile codes, columns are x. Blank lines and lines starting with '#' are skipped.
// Short rows and missing rows default to empty; extra cells are ignored.
func LoadTileLayout(path string, width, height int) (*TileLayout, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("layout: invalid size %dx%d", width, height)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("layout: open %s: %w", path, err)
	}
	defer f.Close()

	l := &TileLayout{
		width:  width,
		height: height,
		tiles:  make([]world.TileType, width*height),
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	y, lineNo := 0, 0
	for scanner.Scan() && y < height {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		for x, tok := range strings.Split(line, ",") {
			if x >= width {
				break
			}
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			code, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("layout: %s:%d: bad tile code %q", path, lineNo, tok)
			}
			switch code {
			case layoutEmpty:
				l.tiles[x*height+y] = world.TileEmpty
			case layoutFloor:
				l.tiles[x*height+y] = world.TileFloor
			default:
				return nil, fmt.Errorf("layout: %s:%d: unknown tile code %d", path, lineNo, code)
			}
		}
		y++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("layout: read %s: %w", path, err)
	}
	return l, nil
}
