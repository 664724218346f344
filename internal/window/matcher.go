package window

import "strings"

// TitleMatcher сопоставляет заголовки окон со списками разрешенных и запрещенных фрагментов
type TitleMatcher struct {
	allow []string
	deny  []string
}

// NewTitleMatcher создает новый экземпляр TitleMatcher.
// Фрагмент deny, оканчивающийся на "$", сравнивается с концом заголовка.
func NewTitleMatcher(allow, deny []string) TitleMatcher {
	return TitleMatcher{allow: lowerAll(allow), deny: lowerAll(deny)}
}

// Match true, если заголовок похож на окно игры, а не лаунчера
func (m TitleMatcher) Match(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return false
	}
	allowed := false
	for _, a := range m.allow {
		if strings.Contains(t, a) {
			allowed = true
			break
		}
	}
	return allowed && !m.Denied(t)
}

// Denied true, если заголовок принадлежит лаунчеру из списка deny
func (m TitleMatcher) Denied(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	for _, d := range m.deny {
		if strings.HasSuffix(d, "$") {
			if strings.HasSuffix(t, strings.TrimSuffix(d, "$")) {
				return true
			}
			continue
		}
		if strings.Contains(t, d) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
