package ports

import (
	"gotreat/domain/frame"
)

// FrameReader loads a tabular data file into a frame
type FrameReader interface {
	Read(path string) (*frame.Frame, error)
}
