package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
)

// Monitor is one lit display. The number of monitors GetMonitors returns is
// the display count that selects a saved arrangement.
type Monitor struct {
	ID     int // CRTC index, stable while the layout is unchanged
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// GetMonitors lists the RandR CRTCs that currently drive an output. Mirrored
// outputs share a CRTC and count once; an output that is connected but
// switched off has no CRTC and does not count.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	xc := c.XUtil.Conn()
	resources, err := randr.GetScreenResourcesCurrent(xc, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(xc, crtc, resources.ConfigTimestamp).Reply()
		if err != nil || !lit(info) {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(xc, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}

	return monitors, nil
}

func lit(info *randr.GetCrtcInfoReply) bool {
	return info.Width > 0 && info.Height > 0 && len(info.Outputs) > 0
}
