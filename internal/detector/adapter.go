package detector

import (
	"errors"
	"image"
	"sort"

	"gamepilot/internal/logger"
)

var ErrDetectorDisabled = errors.New("детектор недоступен")

// Model обученная модель обнаружения объектов
type Model interface {
	Infer(img image.Image) ([]Raw, error)
	Close() error
}

// ModelLoader загружает модель; ошибка загрузки отключает адаптер навсегда
type ModelLoader func() (Model, error)

// Adapter обертка над моделью с фильтрацией по уверенности и категориями
type Adapter struct {
	model  Model
	logger *logger.LoggerManager
}

// NewAdapter создает новый экземпляр Adapter
func NewAdapter(load ModelLoader, loggerManager *logger.LoggerManager) *Adapter {
	a := &Adapter{logger: loggerManager}
	model, err := load()
	if err != nil {
		loggerManager.LogError(err, "⚠️ Модель не загружена, обнаружение объектов отключено")
		return a
	}
	a.model = model
	loggerManager.Info("✅ Модель обнаружения объектов загружена")
	return a
}

// Enabled false после ошибки загрузки модели
func (a *Adapter) Enabled() bool {
	return a.model != nil
}

// Detect объекты с уверенностью не ниже threshold, по убыванию уверенности
func (a *Adapter) Detect(img image.Image, threshold float64) []Detection {
	if a.model == nil || img == nil {
		return nil
	}
	raws, err := a.model.Infer(img)
	if err != nil {
		a.logger.LogError(err, "Ошибка инференса")
		return nil
	}

	out := make([]Detection, 0, len(raws))
	for _, r := range raws {
		if r.Confidence < threshold {
			continue
		}
		out = append(out, NewDetection(r.ClassName, r.Confidence, r.Box))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	a.logger.Debug("🔍 Найдено объектов: %d (порог %.2f)", len(out), threshold)
	return out
}

// Close освобождает модель
func (a *Adapter) Close() error {
	if a.model == nil {
		return nil
	}
	return a.model.Close()
}
