package ocr

import (
	"image"
	"unsafe"

	"github.com/dreheist/drebot/internal/utils/winproc"
)

type bmpInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type bitmapInfo struct{ Header bmpInfoHeader }

type rect struct{ Left, Top, Right, Bottom int32 }

func clientSize(hwnd uintptr) (width, height int) {
	var rc rect
	winproc.GetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&rc)))
	return int(rc.Right - rc.Left), int(rc.Bottom - rc.Top)
}

// captureWindow grabs the client area of a window into an RGBA image using
// PrintWindow with PW_CLIENTONLY|PW_RENDERFULLCONTENT, which works even when
// the window is occluded.
func captureWindow(hwnd uintptr) *image.RGBA {
	width, height := clientSize(hwnd)
	if width <= 0 || height <= 0 {
		return nil
	}

	hdcScreen, _, _ := winproc.GetDC.Call(0)
	if hdcScreen == 0 {
		return nil
	}
	defer winproc.ReleaseDC.Call(0, hdcScreen)

	hdcMem, _, _ := winproc.CreateCompatibleDC.Call(hdcScreen)
	if hdcMem == 0 {
		return nil
	}
	defer winproc.DeleteDC.Call(hdcMem)

	// Top-down 32-bpp DIB
	bi := bitmapInfo{Header: bmpInfoHeader{
		BiSize:     40,
		BiWidth:    int32(width),
		BiHeight:   -int32(height),
		BiPlanes:   1,
		BiBitCount: 32,
	}}
	var bitsPtr unsafe.Pointer
	hbm, _, _ := winproc.CreateDIBSection.Call(hdcScreen, uintptr(unsafe.Pointer(&bi)), 0, uintptr(unsafe.Pointer(&bitsPtr)), 0, 0)
	if hbm == 0 || bitsPtr == nil {
		return nil
	}
	defer winproc.DeleteObject.Call(hbm)
	winproc.SelectObject.Call(hdcMem, hbm)

	winproc.PrintWindow.Call(hwnd, hdcMem, 3)
	winproc.GdiFlush.Call()

	// Wrap the DIB memory into an RGBA and swap B<->R (BGRA->RGBA)
	n := width * height * 4
	src := unsafe.Slice((*byte)(bitsPtr), n)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, src)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*img.Stride + x*4
			img.Pix[idx], img.Pix[idx+2] = img.Pix[idx+2], img.Pix[idx]
		}
	}
	return img
}

// cropRelative cuts a window-relative (0..1) region out of a captured frame.
func cropRelative(img *image.RGBA, left, top, width, height float64) *image.RGBA {
	b := img.Bounds()
	x0 := b.Min.X + int(float64(b.Dx())*left)
	y0 := b.Min.Y + int(float64(b.Dy())*top)
	x1 := x0 + int(float64(b.Dx())*width)
	y1 := y0 + int(float64(b.Dy())*height)

	if x1 > b.Max.X {
		x1 = b.Max.X
	}
	if y1 > b.Max.Y {
		y1 = b.Max.Y
	}

	return img.SubImage(image.Rect(x0, y0, x1, y1)).(*image.RGBA)
}
