package services

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/au"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/es"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/it"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/nl"
	"github.com/rickar/cal/v2/us"
)

// HolidayService answers whether a time falls on a public holiday for a
// country. Bookings on holidays are allowed; the scheduler only attaches an
// advisory warning.
type HolidayService struct {
	calendars map[string]*cal.BusinessCalendar
}

func NewHolidayService() *HolidayService {
	s := &HolidayService{
		calendars: make(map[string]*cal.BusinessCalendar),
	}
	s.initCalendars()
	return s
}

func (s *HolidayService) initCalendars() {
	s.calendars["US"] = s.createCalendar("United States", us.Holidays...)
	s.calendars["GB"] = s.createCalendar("United Kingdom", gb.Holidays...)
	s.calendars["DE"] = s.createCalendar("Germany", de.Holidays...)
	s.calendars["FR"] = s.createCalendar("France", fr.Holidays...)
	s.calendars["JP"] = s.createCalendar("Japan", jp.Holidays...)
	s.calendars["AU"] = s.createCalendar("Australia", au.HolidaysNSW...)
	s.calendars["CA"] = s.createCalendar("Canada", ca.Holidays...)
	s.calendars["IT"] = s.createCalendar("Italy", it.Holidays...)
	s.calendars["ES"] = s.createCalendar("Spain", es.Holidays...)
	s.calendars["NL"] = s.createCalendar("Netherlands", nl.Holidays...)
}

func (s *HolidayService) createCalendar(name string, holidays ...*cal.Holiday) *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.Name = name
	c.AddHoliday(holidays...)
	return c
}

// HolidayName returns the name of the public holiday t falls on, or "" when
// t is a regular day or the country is unknown.
func (s *HolidayService) HolidayName(t time.Time, countryCode string) string {
	c, ok := s.calendars[countryCode]
	if !ok {
		return ""
	}
	actual, _, holiday := c.IsHoliday(t)
	if !actual || holiday == nil {
		return ""
	}
	return holiday.Name
}

// HolidayInInterval returns the first public holiday any day of [start, end)
// falls on, or "" when the interval avoids holidays entirely.
func (s *HolidayService) HolidayInInterval(start, end time.Time, countryCode string) string {
	if _, ok := s.calendars[countryCode]; !ok {
		return ""
	}
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		if name := s.HolidayName(day, countryCode); name != "" {
			return name
		}
	}
	return ""
}

// SupportedCountries lists the country codes with a loaded calendar.
func (s *HolidayService) SupportedCountries() []string {
	codes := make([]string, 0, len(s.calendars))
	for code := range s.calendars {
		codes = append(codes, code)
	}
	return codes
}
