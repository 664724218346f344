// Package commands сопоставляет текстовые команды действиям текущей игры.
package commands

import (
	"context"
	"strings"
)

// Kind вид действия
type Kind int

const (
	Movement Kind = iota
	Camera
	Combat
	Special
	Scenario
	Utility
)

var kindNames = [...]string{"movement", "camera", "combat", "special", "scenario", "utility"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Func действие без аргументов
type Func func(ctx context.Context) error

// Action действие с видом. Detached действия не требуют окна игры в фокусе.
type Action struct {
	Kind     Kind
	Run      Func
	Detached bool
}

// Set группа команд
type Set map[string]Action

// Add добавляет команду в группу
func (s Set) Add(name string, kind Kind, fn Func) Set {
	s[Normalize(name)] = Action{Kind: kind, Run: fn}
	return s
}

// AddDetached добавляет команду, которая выполняется без проверки фокуса, например stop
func (s Set) AddDetached(name string, kind Kind, fn Func) Set {
	s[Normalize(name)] = Action{Kind: kind, Run: fn, Detached: true}
	return s
}

// Merge собирает группы в один набор, поздние группы перекрывают ранние
func Merge(groups ...Set) Set {
	out := make(Set)
	for _, g := range groups {
		for name, a := range g {
			out[name] = a
		}
	}
	return out
}

// ParamFunc действие с числовым аргументом
type ParamFunc func(ctx context.Context, n int) error

// Param команда вида "<prefix> N", например "auto woodcut 10"
type Param struct {
	Prefix  string
	Kind    Kind
	Default int
	Run     ParamFunc
}

// Binding полный набор команд одной игры
type Binding struct {
	Game    string
	Actions Set
	Params  []Param
}

// Builder собирает набор команд игры
type Builder func() Binding

// Normalize приводит команду к нижнему регистру и схлопывает пробелы
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
