package video

const (
	// FramebufferWidth is the horizontal resolution of the CHIP-8 display.
	FramebufferWidth = 64
	// FramebufferHeight is the vertical resolution of the CHIP-8 display.
	FramebufferHeight = 32
	// FramebufferSize is the number of pixel cells.
	FramebufferSize = FramebufferWidth * FramebufferHeight
)

// Color is an RGBA color packed as 0xRRGGBBAA.
type Color uint32

const (
	OnColor  Color = 0xFFFFFFFF
	OffColor Color = 0x000000FF
)

// FrameBuffer is the monochrome CHIP-8 screen, one cell per pixel, each 0 or 1.
// Pixels are stored row major: index = x + y*FramebufferWidth.
// It is a plain value, copying it copies the pixels.
type FrameBuffer struct {
	buffer [FramebufferSize]uint8
}

// NewFrameBuffer creates a cleared frame buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

func index(x, y uint) uint {
	return (x % FramebufferWidth) + (y%FramebufferHeight)*FramebufferWidth
}

// GetPixel returns 1 if the pixel is lit, 0 otherwise. Coordinates wrap around.
func (fb *FrameBuffer) GetPixel(x, y uint) uint8 {
	return fb.buffer[index(x, y)]
}

// TogglePixel XORs the pixel with 1 and reports whether it was turned off.
func (fb *FrameBuffer) TogglePixel(x, y uint) (erased bool) {
	i := index(x, y)
	erased = fb.buffer[i] == 1
	fb.buffer[i] ^= 1
	return erased
}

// Clear turns every pixel off.
func (fb *FrameBuffer) Clear() {
	fb.buffer = [FramebufferSize]uint8{}
}

// LitCount returns how many pixels are on.
func (fb *FrameBuffer) LitCount() int {
	count := 0
	for _, p := range fb.buffer {
		count += int(p)
	}
	return count
}

// ToRGBA converts the frame to packed RGBA colors using the given palette.
func (fb *FrameBuffer) ToRGBA(on, off Color) []uint32 {
	out := make([]uint32, FramebufferSize)
	for i, p := range fb.buffer {
		if p == 1 {
			out[i] = uint32(on)
		} else {
			out[i] = uint32(off)
		}
	}
	return out
}
