package runescape

import (
	"context"

	"gamepilot/internal/logger"
)

// Checks проверки состояния персонажа, которые нельзя увидеть детектором объектов
type Checks interface {
	AxeEquipped(ctx context.Context) (bool, error)
	IsChopping(ctx context.Context) (bool, error)
	InCombat(ctx context.Context) (bool, error)
	InventoryFull(ctx context.Context) (bool, error)
}

// Assumed оптимистичные заглушки: топор есть, рубка и бой идут, инвентарь не полон.
// Каждый ответ пишется в журнал как предположение.
type Assumed struct {
	Logger *logger.LoggerManager
}

func (a Assumed) assume(what string, v bool) (bool, error) {
	if a.Logger != nil {
		a.Logger.Debug("🤞 %s: предполагается %v", what, v)
	}
	return v, nil
}

func (a Assumed) AxeEquipped(context.Context) (bool, error) {
	return a.assume("топор экипирован", true)
}
func (a Assumed) IsChopping(context.Context) (bool, error) {
	return a.assume("идет рубка", true)
}
func (a Assumed) InCombat(context.Context) (bool, error) { return a.assume("идет бой", true) }
func (a Assumed) InventoryFull(context.Context) (bool, error) {
	return a.assume("инвентарь полон", false)
}
