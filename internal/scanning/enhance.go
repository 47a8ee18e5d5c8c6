package scanning

import (
	"image"
	"image/draw"
)

// Fixed enhancement applied to every page before recognition. The factors
// are not adapted to the input contrast.
const (
	contrastFactor  = 2.0
	sharpnessFactor = 2.0
)

// Enhance converts img to grayscale, then raises its contrast and sharpness
func Enhance(img image.Image) *image.Gray {
	gray := toGray(img)
	gray = adjustContrast(gray, contrastFactor)
	return adjustSharpness(gray, sharpnessFactor)
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// adjustContrast blends img away from a flat image of its mean gray level.
// A factor of 1 returns the input unchanged.
func adjustContrast(img *image.Gray, factor float64) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(b)
	if b.Empty() {
		return out
	}

	var sum uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += uint64(img.GrayAt(x, y).Y)
		}
	}
	mean := float64(int(float64(sum)/float64(b.Dx()*b.Dy()) + 0.5))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := float64(img.GrayAt(x, y).Y)
			out.Pix[out.PixOffset(x, y)] = clamp8(mean + factor*(v-mean))
		}
	}
	return out
}

// adjustSharpness blends img away from a smoothed copy of itself. The smoothing
// kernel weighs the center 5 and each neighbour 1; border pixels are not
// smoothed.
func adjustSharpness(img *image.Gray, factor float64) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	if b.Dx() < 3 || b.Dy() < 3 {
		return out
	}

	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			sum := 4 * int(img.GrayAt(x, y).Y)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sum += int(img.GrayAt(x+dx, y+dy).Y)
				}
			}
			smooth := float64((sum + 6) / 13)
			v := float64(img.GrayAt(x, y).Y)
			out.Pix[out.PixOffset(x, y)] = clamp8(smooth + factor*(v-smooth))
		}
	}
	return out
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
