package anns_test

import "github.com/pathomics/annio/geom"

// square returns a CCW square ring with side s whose min corner is (ox,oy).
func square(ox, oy, s float64) geom.Ring {
	return geom.Ring{
		{X: ox, Y: oy},
		{X: ox + s, Y: oy},
		{X: ox + s, Y: oy + s},
		{X: ox, Y: oy + s},
	}
}
