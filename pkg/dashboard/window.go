package dashboard

import (
	"fmt"
	"time"
)

const (
	isoDateLayout     = "2006-01-02"
	displayDateLayout = "02/01/2006"

	windowRadius = 3
	windowSize   = 2*windowRadius + 1
	centerIndex  = windowRadius
)

// DateWindow returns the 7 days [center-3, center+3] in ascending order.
// Days are counted in local calendar days.
func DateWindow(center string) ([]string, error) {
	c, err := time.ParseInLocation(isoDateLayout, center, time.Local)
	if err != nil {
		return nil, fmt.Errorf("cannot parse center date %q: %w", center, err)
	}

	dates := make([]string, 0, windowSize)
	for offset := -windowRadius; offset <= windowRadius; offset++ {
		dates = append(dates, c.AddDate(0, 0, offset).Format(isoDateLayout))
	}
	return dates, nil
}

// FormatDateDisplay turns YYYY-MM-DD into DD/MM/YYYY
func FormatDateDisplay(isoDate string) string {
	d, err := time.Parse(isoDateLayout, isoDate)
	if err != nil {
		return isoDate
	}
	return d.Format(displayDateLayout)
}

// DateRangeTitle describes the window as "first - last" in display format
func DateRangeTitle(window []string) string {
	if len(window) == 0 {
		return ""
	}
	return fmt.Sprintf("%s - %s", FormatDateDisplay(window[0]), FormatDateDisplay(window[len(window)-1]))
}

func TableTitle(f Filters, window []string) string {
	if f.Province != ProvinceAll {
		return fmt.Sprintf("Tabela de Resultados do estado: %s entre (%s)", f.Province, DateRangeTitle(window))
	}
	return fmt.Sprintf("Tabela de Resultados do Nordeste em: (%s)", DateRangeTitle(window))
}
