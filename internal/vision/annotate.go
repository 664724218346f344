package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"gamepilot/internal/detector"
)

var labelColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// annotate рисует рамки, подписи и центры детекций поверх кадра
func annotate(img image.Image, dets []detector.Detection) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("конвертация кадра: %w", err)
	}
	origin := img.Bounds().Min
	for _, d := range dets {
		c := detector.CategoryColor(d.Category)
		box := d.BBox.Sub(origin)
		gocv.Rectangle(&mat, box, c, 2)
		gocv.Circle(&mat, d.Center.Sub(origin), 4, c, -1)
		label := fmt.Sprintf("%s %.2f", d.ClassName, d.Confidence)
		gocv.PutText(&mat, label, image.Pt(box.Min.X, max(box.Min.Y-6, 12)), gocv.FontHersheyPlain, 1.1, labelColor, 1)
	}
	return mat, nil
}

// SaveAnnotated сохраняет отладочное изображение с разметкой
func SaveAnnotated(path string, img image.Image, dets []detector.Detection) error {
	mat, err := annotate(img, dets)
	if err != nil {
		return err
	}
	defer mat.Close()
	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("не удалось записать %s", path)
	}
	return nil
}

// EncodeAnnotated PNG с разметкой для сохранения в базу
func EncodeAnnotated(img image.Image, dets []detector.Detection) ([]byte, error) {
	mat, err := annotate(img, dets)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("кодирование PNG: %w", err)
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}
