package executor

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// Step удержание клавиши внутри сценария: нажать через At после старта и держать For
type Step struct {
	Key string
	At  time.Duration
	For time.Duration
}

// Combo одновременно удерживает несколько клавиш.
// Каждая клавиша держится в своей горутине, все они завершаются до возврата.
func (e *Executor) Combo(ctx context.Context, keys []string, d time.Duration) error {
	steps := make([]Step, 0, len(keys))
	for _, k := range keys {
		steps = append(steps, Step{Key: k, For: d})
	}
	if err := e.run(ctx, steps); err != nil {
		return err
	}
	e.logger.Debug("🎮 Комбо %s %.1fs", strings.Join(keys, "+"), d.Seconds())
	return e.sleep(ctx, e.rng.Duration(ReleaseDelay))
}

// Sequence выполняет набор перекрывающихся удержаний по расписанию
func (e *Executor) Sequence(ctx context.Context, steps []Step) error {
	if err := e.run(ctx, steps); err != nil {
		return err
	}
	e.logger.Debug("🎬 Сценарий из %d шагов завершен за %.1fs", len(steps), SequenceDuration(steps).Seconds())
	return nil
}

func (e *Executor) run(ctx context.Context, steps []Step) error {
	if err := e.ensureFocused(ctx); err != nil {
		return err
	}
	if err := e.sleep(ctx, e.rng.Duration(HumanDelay)); err != nil {
		return err
	}

	p := pool.New().WithErrors()
	for _, s := range MergeSteps(steps) {
		s := s
		p.Go(func() error {
			if err := e.sleep(ctx, s.At); err != nil {
				return err
			}
			return e.holdKey(ctx, s.Key, s.For)
		})
	}
	return p.Wait()
}

// MergeSteps склеивает перекрывающиеся и смежные удержания одной клавиши в одно,
// иначе второе нажатие отпустило бы клавишу посреди первого удержания.
// Порядок клавиш сохраняется по первому появлению.
func MergeSteps(steps []Step) []Step {
	byKey := make(map[string][]Step)
	var order []string
	for _, s := range steps {
		if _, ok := byKey[s.Key]; !ok {
			order = append(order, s.Key)
		}
		byKey[s.Key] = append(byKey[s.Key], s)
	}

	out := make([]Step, 0, len(steps))
	for _, key := range order {
		group := byKey[key]
		sort.SliceStable(group, func(i, j int) bool { return group[i].At < group[j].At })
		cur := group[0]
		for _, s := range group[1:] {
			if s.At > cur.At+cur.For {
				out = append(out, cur)
				cur = s
				continue
			}
			if end := s.At + s.For; end > cur.At+cur.For {
				cur.For = end - cur.At
			}
		}
		out = append(out, cur)
	}
	return out
}

// SequenceDuration время от старта до последнего отпускания
func SequenceDuration(steps []Step) time.Duration {
	var end time.Duration
	for _, s := range steps {
		if t := s.At + s.For; t > end {
			end = t
		}
	}
	return end
}
