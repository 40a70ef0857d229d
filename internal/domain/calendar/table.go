package calendar

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Holiday is a legal holiday that falls on the same month/day every year.
type Holiday struct {
	Name  string     `yaml:"name"`
	Month time.Month `yaml:"month"`
	Day   int        `yaml:"day"`
}

type HolidayTable []Holiday

// DefaultHolidays covers New Year's Day, May 1-3 and Oct 1-7.
// Lunar-calendar holidays are not included.
func DefaultHolidays() HolidayTable {
	table := HolidayTable{
		{Name: "New Year's Day", Month: time.January, Day: 1},
	}
	for d := 1; d <= 3; d++ {
		table = append(table, Holiday{Name: "Labour Day", Month: time.May, Day: d})
	}
	for d := 1; d <= 7; d++ {
		table = append(table, Holiday{Name: "National Day", Month: time.October, Day: d})
	}
	return table
}

func (t HolidayTable) Contains(month time.Month, day int) bool {
	for _, h := range t {
		if h.Month == month && h.Day == day {
			return true
		}
	}
	return false
}

// Validate rejects entries that cannot occur on any calendar year.
func (t HolidayTable) Validate() error {
	for i, h := range t {
		if h.Month < time.January || h.Month > time.December {
			return fmt.Errorf("holiday %d (%s): %w", i, h.Name, ErrInvalidHoliday)
		}
		// 2024 is a leap year so Feb 29 passes.
		last := time.Date(2024, h.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
		if h.Day < 1 || h.Day > last {
			return fmt.Errorf("holiday %d (%s): %w", i, h.Name, ErrInvalidHoliday)
		}
	}
	return nil
}

type holidayFile struct {
	Holidays HolidayTable `yaml:"holidays"`
}

// LoadHolidayTable reads a YAML document of the form
//
//	holidays:
//	  - {name: New Year's Day, month: 1, day: 1}
func LoadHolidayTable(path string) (HolidayTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read holiday file: %w", err)
	}
	return ParseHolidayTable(raw)
}

func ParseHolidayTable(raw []byte) (HolidayTable, error) {
	var f holidayFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse holiday file: %w", err)
	}
	if err := f.Holidays.Validate(); err != nil {
		return nil, err
	}
	return f.Holidays, nil
}
