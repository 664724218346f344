package input

import (
	"reflect"
	"sort"
	"testing"
)

type keyLog struct {
	events []string
}

func (l *keyLog) KeyDown(k string) error { l.events = append(l.events, "down:"+k); return nil }
func (l *keyLog) KeyUp(k string) error   { l.events = append(l.events, "up:"+k); return nil }

func TestKeysFor(t *testing.T) {
	k := DefaultStickKeys[LeftStick]
	cases := []struct {
		x, y int
		want []string
	}{
		{0, 16383, []string{"w"}},
		{0, -16383, []string{"s"}},
		{-16383, 0, []string{"a"}},
		{32767, 32767, []string{"w", "d"}},
		{100, -100, nil},
	}
	for _, c := range cases {
		got := KeysFor(k, c.x, c.y)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("KeysFor(%d,%d) = %v, ожидалось %v", c.x, c.y, got, c.want)
		}
	}
}

func TestStickEmulatorPressAndRelease(t *testing.T) {
	log := &keyLog{}
	e := NewStickEmulator(log, nil)

	if err := e.SetStick(LeftStick, 0, 16383); err != nil {
		t.Fatal(err)
	}
	if err := e.SetStick(LeftStick, 16383, 16383); err != nil {
		t.Fatal(err)
	}
	if err := e.SetStick(LeftStick, 0, 0); err != nil {
		t.Fatal(err)
	}

	want := []string{"down:w", "down:d"}
	if !reflect.DeepEqual(log.events[:2], want) {
		t.Errorf("Expected %v, got %v", want, log.events[:2])
	}
	rest := append([]string(nil), log.events[2:]...)
	sort.Strings(rest)
	if !reflect.DeepEqual(rest, []string{"up:d", "up:w"}) {
		t.Errorf("нейтраль должна отпустить обе клавиши, получено %v", rest)
	}
}

func TestMouseButtonForKey(t *testing.T) {
	if b, ok := MouseButtonForKey("left_click"); !ok || b != ButtonLeft {
		t.Errorf("left_click: %v %v", b, ok)
	}
	if b, ok := MouseButtonForKey("right_click"); !ok || b != ButtonRight {
		t.Errorf("right_click: %v %v", b, ok)
	}
	if _, ok := MouseButtonForKey("w"); ok {
		t.Error("w не кнопка мыши")
	}
}
