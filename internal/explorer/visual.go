package explorer

import (
	"context"
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/zeusync/lander/internal/core/episode"
	"github.com/zeusync/lander/internal/core/lander"
	"github.com/zeusync/lander/internal/core/observability/log"
)

var (
	styleDefault  = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleGround   = styleDefault.Foreground(tcell.ColorDarkGray)
	styleObstacle = styleDefault.Foreground(tcell.ColorOrangeRed)
	stylePad      = styleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleLander   = styleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleStatus   = styleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	styleLanded   = styleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorLime)
)

const (
	runeObstacle = '#'
	runePad      = '='
	runeLander   = 'A'
	runeGround   = '_'
)

// Visual renders the world on a tcell screen scaled to the terminal. The
// bottom row is a status line; the rest of the screen is the world.
type Visual struct {
	screen tcell.Screen
	ep     *episode.Episode
	logger log.Log
	note   string
}

func NewVisual(screen tcell.Screen, ep *episode.Episode, logger log.Log) *Visual {
	return &Visual{screen: screen, ep: ep, logger: logger}
}

// Run initialises the screen and handles keys until quit or ctx is done.
func (v *Visual) Run(ctx context.Context) error {
	if err := v.screen.Init(); err != nil {
		return errors.Wrap(err, "init screen")
	}
	defer v.screen.Fini()

	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	v.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if v.handleKey(ev.Key(), ev.Rune()) {
					return nil
				}
			case *tcell.EventResize:
				v.screen.Sync()
			}
			v.draw()
		}
	}
}

// handleKey applies one key press and reports whether to quit.
func (v *Visual) handleKey(k tcell.Key, r rune) bool {
	switch k {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		r = 'a'
	case tcell.KeyRight:
		r = 'd'
	case tcell.KeyUp:
		r = 'w'
	case tcell.KeyDown:
		r = 's'
	case tcell.KeyRune:
	default:
		return false
	}

	cmd, a, err := resolve(string(r), v.ep.Catalog())
	if err != nil {
		v.note = fmt.Sprintf("unbound key %q", r)
		return false
	}
	v.note = ""
	switch cmd {
	case cmdQuit:
		return true
	case cmdReset:
		v.ep.Reset()
	case cmdHelp:
		v.note = "a/d turn  w/s thrust  x idle  r reset  q quit"
	case cmdStep:
		if _, err = v.ep.Step(a); err != nil {
			v.note = "reset to fly again"
			v.logger.Debug("step rejected", log.Error(err))
		}
	}
	return false
}

// viewport maps world coordinates onto screen cells.
type viewport struct {
	cfg  lander.Config
	cols int
	rows int
}

func (p viewport) cell(x, y float64) (int, int) {
	fx := (x - p.cfg.XMin()) / (p.cfg.XMax() - p.cfg.XMin())
	fy := (y - p.cfg.YMin()) / (p.cfg.YMax() - p.cfg.YMin())
	col := int(math.Round(fx * float64(p.cols-1)))
	row := p.rows - 1 - int(math.Round(fy*float64(p.rows-1)))
	return col, row
}

func (p viewport) world(col, row int) (float64, float64) {
	x := p.cfg.XMin() + float64(col)/float64(p.cols-1)*(p.cfg.XMax()-p.cfg.XMin())
	y := p.cfg.YMin() + float64(p.rows-1-row)/float64(p.rows-1)*(p.cfg.YMax()-p.cfg.YMin())
	return x, y
}

func inside(r lander.Rect, x, y float64) bool {
	return x >= r.Left && x <= r.Right && y >= r.Bottom && y <= r.Top
}

func (v *Visual) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	if w < 2 || h < 3 {
		v.screen.Show()
		return
	}

	snap := v.ep.Snapshot()
	vp := viewport{cfg: v.ep.Config(), cols: w, rows: h - 1}

	for row := 0; row < vp.rows; row++ {
		for col := 0; col < vp.cols; col++ {
			x, y := vp.world(col, row)
			switch {
			case anyRect(snap.Pads, x, y):
				v.screen.SetContent(col, row, runePad, nil, stylePad)
			case anyRect(snap.Obstacles, x, y):
				v.screen.SetContent(col, row, runeObstacle, nil, styleObstacle)
			case row == vp.rows-1:
				v.screen.SetContent(col, row, runeGround, nil, styleGround)
			}
		}
	}

	col, row := vp.cell(snap.Agent.X, snap.Agent.Y)
	v.screen.SetContent(col, row, runeLander, nil, styleLander)

	v.drawStatus(w, h-1, snap.Agent)
	v.screen.Show()
}

func anyRect[T lander.Obstacle | lander.Pad](rs []T, x, y float64) bool {
	for _, r := range rs {
		if inside(lander.Rect(r), x, y) {
			return true
		}
	}
	return false
}

func (v *Visual) drawStatus(w, row int, a lander.Agent) {
	style := styleStatus
	if v.ep.Outcome() == episode.Landed {
		style = styleLanded
	}
	line := fmt.Sprintf("step %d %s x=%.1f y=%.1f vx=%.2f vy=%.2f ang=%.2f",
		v.ep.Steps(), v.ep.Outcome(), a.X, a.Y, a.VX, a.VY, a.Angle)
	if v.note != "" {
		line += "  " + v.note
	}
	for col := 0; col < w; col++ {
		ch := ' '
		if col < len(line) {
			ch = rune(line[col])
		}
		v.screen.SetContent(col, row, ch, nil, style)
	}
}
