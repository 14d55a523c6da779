package viewer

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/zeusync/fieldofview/internal/core/vision"
)

// FrameMessage is the JSON form of a vision.Frame. Points are in the sensor's
// local space; Origin is in world space.
type FrameMessage struct {
	Sensor  string          `json:"sensor"`
	Frame   uint64          `json:"frame"`
	Time    float64         `json:"time"`
	Origin  [3]float64      `json:"origin"`
	Points  [][3]float64    `json:"points"`
	Indices []int           `json:"indices"`
	Nearest *NearestMessage `json:"nearest,omitempty"`
}

type NearestMessage struct {
	Target   string  `json:"target"`
	Distance float64 `json:"distance"`
}

func NewFrameMessage(f vision.Frame) FrameMessage {
	m := FrameMessage{
		Sensor:  f.Sensor,
		Frame:   f.Number,
		Time:    f.Time,
		Origin:  triple(f.Origin),
		Points:  make([][3]float64, len(f.Points)),
		Indices: f.Indices,
	}
	if m.Indices == nil {
		m.Indices = []int{}
	}
	for i, p := range f.Points {
		m.Points[i] = triple(p)
	}
	if f.Nearest.Found() {
		m.Nearest = &NearestMessage{Target: f.Nearest.Target.String(), Distance: f.Nearest.Distance}
	}
	return m
}

func triple(v r3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }
