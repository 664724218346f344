package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"gamepilot/internal/detector"
)

// Диапазон HSV темного асфальта и бетона
var (
	pathLower = gocv.NewScalar(0, 0, 20, 0)
	pathUpper = gocv.NewScalar(180, 255, 80, 0)
)

// PathMaps возвращает карту границ тропинки и полутоновый кадр для запасного скана
func PathMaps(img image.Image) (edges, gray *image.Gray, err error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, nil, fmt.Errorf("конвертация кадра: %w", err)
	}
	defer mat.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(mat, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv, pathLower, pathUpper, &mask)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(mask, &closed, gocv.MorphClose, kernel)
	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyEx(closed, &opened, gocv.MorphOpen, kernel)

	canny := gocv.NewMat()
	defer canny.Close()
	gocv.Canny(opened, &canny, 50, 150)

	grayMat := gocv.NewMat()
	defer grayMat.Close()
	gocv.CvtColor(mat, &grayMat, gocv.ColorBGRToGray)

	if edges, err = toGray(canny); err != nil {
		return nil, nil, err
	}
	if gray, err = toGray(grayMat); err != nil {
		return nil, nil, err
	}
	return edges, gray, nil
}

// BuildingEdges ищет высокие крупные контуры, похожие на здания.
// Запасной способ на случай, когда модель ничего не видит.
func BuildingEdges(img image.Image) ([]detector.Detection, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("конвертация кадра: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, 50, 150)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var out []detector.Detection
	origin := img.Bounds().Min
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if gocv.ContourArea(contour) <= 5000 {
			continue
		}
		rect := gocv.BoundingRect(contour)
		if rect.Dy() > rect.Dx() && rect.Dy() > 100 {
			out = append(out, detector.NewDetection("building_edge", 0.7, rect.Add(origin)))
		}
	}
	return out, nil
}

func toGray(m gocv.Mat) (*image.Gray, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("конвертация карты: %w", err)
	}
	if g, ok := img.(*image.Gray); ok {
		return g, nil
	}
	b := img.Bounds()
	g := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g.Set(x, y, img.At(x, y))
		}
	}
	return g, nil
}

// Edges связывает функции выше с наборами команд, которым нужен интерфейс
type Edges struct{}

func (Edges) PathMaps(img image.Image) (*image.Gray, *image.Gray, error) { return PathMaps(img) }

func (Edges) BuildingEdges(img image.Image) ([]detector.Detection, error) {
	return BuildingEdges(img)
}
