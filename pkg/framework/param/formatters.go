package param

import (
	"fmt"
	"strconv"
	"strings"
)

// FrequencyFormatter formats frequency values with Hz/kHz
func FrequencyFormatter(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.2f kHz", hz/1000)
	}
	return fmt.Sprintf("%.1f Hz", hz)
}

func FrequencyParser(str string) (float64, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	if strings.HasSuffix(str, "khz") {
		val, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(str, "khz")), 64)
		if err != nil {
			return 0, err
		}
		return val * 1000, nil
	}
	return strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(str, "hz")), 64)
}

// PercentFormatter shows a 0-1 (or -1..1) amount as percent
func PercentFormatter(value float64) string {
	return fmt.Sprintf("%.0f%%", value*100)
}

func PercentParser(str string) (float64, error) {
	str = strings.TrimSpace(str)
	if strings.HasSuffix(str, "%") {
		val, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(str, "%")), 64)
		if err != nil {
			return 0, err
		}
		return val / 100, nil
	}
	return strconv.ParseFloat(str, 64)
}

// SecondsFormatter formats seconds with ms below one second
func SecondsFormatter(sec float64) string {
	if sec < 1 {
		return fmt.Sprintf("%.1f ms", sec*1000)
	}
	return fmt.Sprintf("%.2f s", sec)
}

func SecondsParser(str string) (float64, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	if strings.HasSuffix(str, "ms") {
		val, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(str, "ms")), 64)
		if err != nil {
			return 0, err
		}
		return val / 1000, nil
	}
	return strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(str, "s")), 64)
}

// OnOffFormatter formats boolean as On/Off
func OnOffFormatter(value float64) string {
	if value > 0.5 {
		return "On"
	}
	return "Off"
}

func OnOffParser(str string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "on", "yes", "true", "1":
		return 1, nil
	case "off", "no", "false", "0":
		return 0, nil
	}
	return 0, fmt.Errorf("expected 'on' or 'off', got: %s", str)
}

// SemitoneFormatter shows a signed pitch offset
func SemitoneFormatter(st float64) string {
	return fmt.Sprintf("%+.0f st", st)
}

func SemitoneParser(str string) (float64, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	return strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(str, "st")), 64)
}
