package detector

import (
	"image/color"
	"strings"
)

const Unknown = "unknown"

type category struct {
	name   string
	labels []string
	color  color.RGBA
}

// порядок важен: первая подходящая категория побеждает
var categories = []category{
	{"chicken", []string{"chicken"}, color.RGBA{R: 255, G: 165, A: 255}},
	{"tree", []string{"tree", "oak tree", "willow tree", "maple tree", "yew tree", "magic tree"}, color.RGBA{G: 255, A: 255}},
	{"rock", []string{"rock", "tin rock", "copper rock", "iron rock", "coal rock", "gold rock", "mithril rock"}, color.RGBA{B: 255, A: 255}},
	{"person", []string{"person", "man", "woman", "goblin", "cow", "rat", "spider"}, color.RGBA{R: 255, A: 255}},
	{"item", []string{"bottle", "coin", "sword", "bow", "arrow", "potion", "food"}, color.RGBA{G: 255, B: 255, A: 255}},
	{"building", []string{"house", "bank", "shop", "altar", "furnace", "anvil"}, color.RGBA{R: 255, B: 255, A: 255}},
}

var unknownColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}

// Categorize переводит метку класса в категорию по вхождению подстроки
func Categorize(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return Unknown
	}
	for _, c := range categories {
		for _, name := range c.labels {
			if strings.Contains(l, name) {
				return c.name
			}
		}
	}
	return Unknown
}

// Categories список известных категорий в порядке сопоставления
func Categories() []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		out = append(out, c.name)
	}
	return out
}

// CategoryColor цвет рамки категории на отладочном изображении
func CategoryColor(name string) color.RGBA {
	for _, c := range categories {
		if c.name == name {
			return c.color
		}
	}
	return unknownColor
}
