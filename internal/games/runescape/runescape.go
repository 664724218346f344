// Package runescape набор команд Old School RuneScape: клики по распознанным объектам
// и непрерывные сессии охоты, рубки и добычи.
package runescape

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gamepilot/internal/commands"
	"gamepilot/internal/detector"
	"gamepilot/internal/executor"
	"gamepilot/internal/games"
	"gamepilot/internal/pipeline"
	"gamepilot/internal/timing"
)

// Game идентификатор набора
const Game = "runescape"

// Пороги уверенности по видам действий
const (
	ClickThreshold   = 0.1
	ChickenThreshold = 0.3
	ScanThreshold    = 0.4
	ItemThreshold    = 0.5
	TargetThreshold  = 0.6
	BankThreshold    = 0.7
)

// Паузы одиночных команд
const (
	// StartDelay время, чтобы оператор успел переключиться в окно игры
	StartDelay      = 7 * time.Second
	AttackDelay     = time.Second
	TabDelay        = 500 * time.Millisecond
	ChopAttempts    = 3
	AttackAttempts  = 3
	MaxInventory    = 28
	HotkeySlots     = 5
	DefaultDuration = 5
)

var (
	ChopCheck   = timing.Range{Min: 1500 * time.Millisecond, Max: 2500 * time.Millisecond}
	Retry       = timing.Range{Min: time.Second, Max: 2 * time.Second}
	MineWait    = timing.Range{Min: 3 * time.Second, Max: 6 * time.Second}
	AttackWait  = timing.Range{Min: time.Second, Max: 2 * time.Second}
	CollectWait = timing.Range{Min: 500 * time.Millisecond, Max: time.Second}
	BankWait    = timing.Range{Min: time.Second, Max: 2 * time.Second}
)

// ErrNoAxe топора нет ни в руках, ни в инвентаре
var ErrNoAxe = errors.New("топор не найден")

// ErrSlotUnsupported слот инвентаря без горячей клавиши
var ErrSlotUnsupported = errors.New("слот инвентаря доступен только кликом")

// Species породы деревьев для "chop <порода>"
var Species = map[string]string{
	"tree":    "tree",
	"normal":  "tree",
	"regular": "tree",
	"oak":     "oak tree",
	"willow":  "willow tree",
	"maple":   "maple tree",
	"yew":     "yew tree",
	"magic":   "magic tree",
}

// Tabs вкладки интерфейса и их клавиши
var Tabs = map[string]string{
	"combat":    "f1",
	"skills":    "f2",
	"quests":    "f3",
	"equipment": "f4",
	"prayers":   "f5",
	"spells":    "f6",
	"clan":      "f7",
	"friends":   "f8",
	"account":   "f9",
	"settings":  "f10",
	"emotes":    "f11",
	"music":     "f12",
	"inventory": "escape",
}

// fastTargets по ним кликаем быстро, пока цель не ушла
var fastTargets = map[string]bool{
	"chicken": true,
	"goblin":  true,
	"cow":     true,
	"person":  true,
	"npc":     true,
}

// StyleFor стиль клика по классу объекта
func StyleFor(className string) executor.ClickStyle {
	if fastTargets[strings.ToLower(className)] {
		return executor.FastClick
	}
	return executor.HumanClick
}

// Options настройки набора. Нулевые значения заменяются значениями по умолчанию.
type Options struct {
	Checks       Checks
	HuntInterval time.Duration
}

type bot struct {
	env      *games.Env
	checks   Checks
	interval time.Duration
	now      func() time.Time
}

// Build собирает набор runescape. Без Checks используются оптимистичные заглушки.
func Build(env *games.Env, opts Options) commands.Binding {
	if opts.Checks == nil {
		opts.Checks = Assumed{Logger: env.Logger}
	}
	if opts.HuntInterval <= 0 {
		opts.HuntInterval = HuntInterval
	}
	b := &bot{env: env, checks: opts.Checks, interval: opts.HuntInterval, now: time.Now}

	combat := commands.Set{}.
		Add("attack chicken", commands.Combat, func(ctx context.Context) error {
			return b.attackChicken(ctx, AttackAttempts)
		}).
		Add("attack npc", commands.Combat, b.oneShot("person", TargetThreshold, AttackWait))

	skills := commands.Set{}.
		Add("mine rock", commands.Special, b.oneShot("rock", TargetThreshold, MineWait)).
		Add("collect item", commands.Special, b.oneShot("item", ItemThreshold, CollectWait)).
		Add("open bank", commands.Special, b.oneShot("building", BankThreshold, BankWait))
	for name, species := range Species {
		species := species
		skills.Add("chop "+name, commands.Special, func(ctx context.Context) error {
			return b.chopCommand(ctx, species)
		})
	}
	for _, cat := range detector.Categories() {
		skills.Add("click "+cat, commands.Special, b.oneShot(cat, ClickThreshold, timing.Range{}))
	}

	utility := commands.Set{}.
		Add("scan objects", commands.Utility, func(ctx context.Context) error {
			_, err := b.scanObjects(ctx, ScanThreshold, true)
			return err
		}).
		AddDetached("stop", commands.Utility, b.env.StopLoops).
		AddDetached("stop hunting", commands.Utility, b.env.StopLoops)
	for name, key := range Tabs {
		key := key
		utility.Add(name+" tab", commands.Utility, func(ctx context.Context) error {
			if err := b.env.Input.Press(ctx, key); err != nil {
				return err
			}
			return b.env.Wait(ctx, TabDelay)
		})
	}

	scenarios := commands.Set{}.
		Add("hunt chickens", commands.Scenario, b.start(KindHunt, b.huntCycle))

	return commands.Binding{
		Game:    Game,
		Actions: commands.Merge(combat, skills, utility, scenarios),
		Params: []commands.Param{
			{Prefix: "auto woodcut", Kind: commands.Scenario, Default: DefaultDuration, Run: b.startTimed(KindWoodcut, b.woodcutCycle)},
			{Prefix: "auto mine", Kind: commands.Scenario, Default: DefaultDuration, Run: b.startTimed(KindMine, b.mineCycle)},
			{Prefix: "use item", Kind: commands.Utility, Default: 1, Run: b.useItem},
		},
	}
}

// click находит ближайший объект и кликает по нему в стиле его класса
func (b *bot) click(ctx context.Context, category string, threshold float64) error {
	t, err := b.env.Scanner.Find(ctx, category, threshold)
	if err != nil {
		return err
	}
	return b.env.Input.Click(ctx, t.Screen, StyleFor(t.Detection.ClassName))
}

// oneShot клик по категории и пауза на анимацию
func (b *bot) oneShot(category string, threshold float64, wait timing.Range) commands.Func {
	return func(ctx context.Context) error {
		b.env.Logger.Info("🔍 Ищем %s...", category)
		if err := b.click(ctx, category, threshold); err != nil {
			return err
		}
		b.env.Logger.Info("✅ Клик по %s", category)
		if wait.Max == 0 {
			return nil
		}
		return b.env.WaitRandom(ctx, wait)
	}
}

// findSpecies ближайшее дерево нужной породы. "tree" подходит под любое дерево.
func (b *bot) findSpecies(ctx context.Context, species string) (*pipeline.Scan, error) {
	scan, err := b.env.Scanner.Scan(ctx, TargetThreshold)
	if err != nil {
		return nil, err
	}
	if species == "tree" {
		return scan, nil
	}
	var kept []detector.Detection
	for _, d := range scan.Detections {
		if strings.EqualFold(d.ClassName, species) {
			kept = append(kept, d)
		}
	}
	return &pipeline.Scan{Frame: scan.Frame, Detections: kept}, nil
}

// chopCommand одиночная команда рубки: пауза на переключение окна, проверка топора, попытки
func (b *bot) chopCommand(ctx context.Context, species string) error {
	b.env.Logger.Info("🌳 Рубка %s через %v", species, StartDelay)
	if err := b.env.Wait(ctx, StartDelay); err != nil {
		return err
	}
	ok, err := b.checks.AxeEquipped(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoAxe
	}
	return b.chop(ctx, species, ChopAttempts)
}

// chop кликает по дереву до attempts раз, пока рубка не подтвердится
func (b *bot) chop(ctx context.Context, species string, attempts int) error {
	for i := 1; i <= attempts; i++ {
		b.env.Logger.Debug("🔄 Попытка %d/%d: %s", i, attempts, species)
		scan, err := b.findSpecies(ctx, species)
		if err != nil {
			return err
		}
		t, err := b.env.Scanner.Target(scan, "tree")
		if errors.Is(err, pipeline.ErrNothingFound) {
			if i < attempts {
				b.scanArea(ctx, "tree")
				if err := b.env.WaitRandom(ctx, Retry); err != nil {
					return err
				}
			}
			continue
		}
		if err != nil {
			return err
		}

		if err := b.env.Input.Click(ctx, t.Screen, StyleFor(t.Detection.ClassName)); err != nil {
			return err
		}
		if err := b.env.WaitRandom(ctx, ChopCheck); err != nil {
			return err
		}
		chopping, err := b.checks.IsChopping(ctx)
		if err != nil {
			return err
		}
		if chopping {
			b.env.Logger.Info("🪓 Рубим %s", species)
			return nil
		}
		b.env.Logger.Warn("⚠️ Рубка не началась, ищем другое дерево")
		if err := b.env.WaitRandom(ctx, Retry); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %s после %d попыток", pipeline.ErrNothingFound, species, attempts)
}

// attackChicken атака ближайшей курицы до attempts раз
func (b *bot) attackChicken(ctx context.Context, attempts int) error {
	if err := b.env.Wait(ctx, AttackDelay); err != nil {
		return err
	}
	for i := 1; i <= attempts; i++ {
		b.env.Logger.Debug("🔄 Попытка %d/%d: курица", i, attempts)
		err := b.click(ctx, "chicken", ChickenThreshold)
		if errors.Is(err, pipeline.ErrNothingFound) {
			if i < attempts {
				b.scanArea(ctx, "chicken")
				if err := b.env.WaitRandom(ctx, Retry); err != nil {
					return err
				}
			}
			continue
		}
		if err != nil {
			return err
		}

		if err := b.env.WaitRandom(ctx, AttackWait); err != nil {
			return err
		}
		fighting, err := b.checks.InCombat(ctx)
		if err != nil {
			return err
		}
		if fighting {
			b.env.Logger.Info("⚔️ Бой начался")
			return nil
		}
		if err := b.env.WaitRandom(ctx, Retry); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: chicken после %d попыток", pipeline.ErrNothingFound, attempts)
}

// scanObjects снимает кадр, пишет сводку по категориям и отдает результат OnScan
func (b *bot) scanObjects(ctx context.Context, threshold float64, publish bool) (map[string]int, error) {
	scan, err := b.env.Scanner.Scan(ctx, threshold)
	if err != nil {
		return nil, err
	}
	counts := games.Counts(scan.Detections)
	b.env.Logger.Info("📊 Найдено объектов: %d", len(scan.Detections))
	cats := make([]string, 0, len(counts))
	for cat := range counts {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		b.env.Logger.Info("   %s: %d", cat, counts[cat])
	}
	if publish && b.env.OnScan != nil {
		b.env.OnScan(scan)
	}
	return counts, nil
}

// scanArea сводка по одной категории, ошибки только в журнал
func (b *bot) scanArea(ctx context.Context, category string) {
	counts, err := b.scanObjects(ctx, ScanThreshold, false)
	if err != nil {
		b.env.Logger.Debug("🔍 Осмотр не удался: %v", err)
		return
	}
	b.env.Logger.Info("📍 Рядом %s: %d", category, counts[category])
}

// useItem слоты 1-5 вызываются цифрами, остальные только кликом
func (b *bot) useItem(ctx context.Context, slot int) error {
	if slot < 1 || slot > MaxInventory {
		return fmt.Errorf("слот %d вне диапазона 1-%d", slot, MaxInventory)
	}
	if slot > HotkeySlots {
		return fmt.Errorf("%w: %d", ErrSlotUnsupported, slot)
	}
	if err := b.env.Input.Press(ctx, fmt.Sprint(slot)); err != nil {
		return err
	}
	b.env.Logger.Info("📦 Использован слот %d", slot)
	return b.env.Wait(ctx, TabDelay)
}
