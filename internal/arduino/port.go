package arduino

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// VID производителей плат с нативным USB HID
var knownVIDs = map[string]bool{
	"2341": true, // Arduino
	"2a03": true, // Arduino.org
	"1b4f": true, // SparkFun Pro Micro
	"239a": true, // Adafruit
}

// DetectPort ищет первый USB-порт, похожий на Arduino
func DetectPort() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("ошибка перечисления портов: %w", err)
	}
	name, ok := pickArduino(ports)
	if !ok {
		return "", fmt.Errorf("Arduino не найден среди %d портов", len(ports))
	}
	return name, nil
}

// ResolvePort возвращает порт из конфигурации или ищет его при значении "auto"
func ResolvePort(configured string) (string, error) {
	if configured != "" && !strings.EqualFold(configured, "auto") {
		return configured, nil
	}
	return DetectPort()
}

func pickArduino(ports []*enumerator.PortDetails) (string, bool) {
	for _, p := range ports {
		if p == nil || !p.IsUSB {
			continue
		}
		if knownVIDs[strings.ToLower(p.VID)] || strings.Contains(strings.ToLower(p.Product), "arduino") {
			return p.Name, true
		}
	}
	return "", false
}
