package img

// And masks im in place with the bitwise AND of each channel of mask.
func And(im, mask *Image) error {
	if im.Width != mask.Width || im.Height != mask.Height {
		return dimensionError(im, mask)
	}
	for i := range im.Pix {
		im.Pix[i].R &= mask.Pix[i].R
		im.Pix[i].G &= mask.Pix[i].G
		im.Pix[i].B &= mask.Pix[i].B
	}
	im.ComputeBounds()
	return nil
}

// TranslateXY returns a copy of im shifted by (dx, dy). Pixels shifted in
// from outside the source are black.
func TranslateXY(im *Image, dx, dy int) *Image {
	out := New(im.Width, im.Height)
	for y := 0; y < out.Height; y++ {
		sy := y - dy
		if sy < 0 || sy >= im.Height {
			continue
		}
		for x := 0; x < out.Width; x++ {
			sx := x - dx
			if sx < 0 || sx >= im.Width {
				continue
			}
			out.Pix[x+out.Width*y] = im.Pix[sx+im.Width*sy]
		}
	}
	out.ComputeBounds()
	return out
}
