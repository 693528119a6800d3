package icsstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cal-sync/core/calendar"

	ics "github.com/arran4/golang-ical"
)

const (
	propertyBusyStatus   = ics.ComponentProperty("X-MICROSOFT-CDO-BUSYSTATUS")
	propertyRecurrenceID = ics.ComponentProperty("RECURRENCE-ID")

	dateLayout     = "20060102"
	dateTimeLayout = "20060102T150405"
)

// managed lists the properties rewritten on every save. Anything else on an
// event is carried over untouched.
var managed = map[string]struct{}{
	string(ics.ComponentPropertyUniqueId):    {},
	string(ics.ComponentPropertyDtstamp):     {},
	string(ics.ComponentPropertyDtStart):     {},
	string(ics.ComponentPropertyDtEnd):       {},
	string(ics.ComponentPropertySummary):     {},
	string(ics.ComponentPropertyLocation):    {},
	string(ics.ComponentPropertyDescription): {},
	string(ics.ComponentPropertyUrl):         {},
	string(ics.ComponentPropertyRrule):       {},
	string(ics.ComponentPropertyExdate):      {},
	string(ics.ComponentPropertyTransp):      {},
	string(propertyBusyStatus):               {},
}

// calendarName returns the X-WR-CALNAME of cal.
func calendarName(cal *ics.Calendar) string {
	for _, p := range cal.CalendarProperties {
		if p.IANAToken == string(ics.PropertyXWRCalName) {
			return p.Value
		}
	}
	return ""
}

// decodeEvent converts a VEVENT. ok is false for events that are not series
// roots or single entries, such as overridden occurrences.
func decodeEvent(collectionID string, ev *ics.VEvent) (calendar.Entry, bool, error) {
	if ev.GetProperty(propertyRecurrenceID) != nil {
		return calendar.Entry{}, false, nil
	}

	e := calendar.Entry{ID: ev.Id(), CollectionID: collectionID}
	if e.ID == "" {
		return e, false, errors.New("missing UID")
	}

	start, allDay, err := parseTime(ev.GetProperty(ics.ComponentPropertyDtStart))
	if err != nil {
		return e, false, err
	}
	e.Start, e.AllDay = start, allDay

	if end, _, err := parseTime(ev.GetProperty(ics.ComponentPropertyDtEnd)); err == nil {
		e.End = end
	} else if allDay {
		e.End = start.AddDate(0, 0, 1)
	} else {
		e.End = start
	}

	e.Title = value(ev, ics.ComponentPropertySummary)
	e.Location = value(ev, ics.ComponentPropertyLocation)
	e.Notes = value(ev, ics.ComponentPropertyDescription)
	e.Marker = value(ev, ics.ComponentPropertyUrl)
	e.Recurrence = recurrenceValue(value(ev, ics.ComponentPropertyRrule))
	if e.IsRecurring() {
		if e.Exceptions, err = parseExceptions(ev); err != nil {
			return e, false, err
		}
	}
	e.Availability = decodeAvailability(value(ev, propertyBusyStatus), value(ev, ics.ComponentPropertyTransp))
	return e, true, nil
}

// encodeEvent builds the VEVENT for e, keeping the unmanaged properties of
// previous when it is not nil.
func encodeEvent(e calendar.Entry, previous *ics.VEvent, stamp time.Time) *ics.VEvent {
	ev := ics.NewEvent(e.ID)
	if previous != nil {
		for _, p := range previous.Properties {
			if _, ok := managed[p.IANAToken]; !ok {
				ev.Properties = append(ev.Properties, p)
			}
		}
		ev.Components = previous.Components
	}

	ev.SetDtStampTime(stamp)
	if e.AllDay {
		ev.SetAllDayStartAt(e.Start)
		ev.SetAllDayEndAt(e.End)
	} else {
		setTime(ev, ics.ComponentPropertyDtStart, e.Start)
		setTime(ev, ics.ComponentPropertyDtEnd, e.End.In(e.Start.Location()))
	}

	setText(ev, ics.ComponentPropertySummary, e.Title)
	setText(ev, ics.ComponentPropertyLocation, e.Location)
	setText(ev, ics.ComponentPropertyDescription, e.Notes)
	setText(ev, ics.ComponentPropertyUrl, e.Marker)
	setText(ev, ics.ComponentPropertyRrule, e.Recurrence)
	if e.IsRecurring() {
		for _, ex := range e.Exceptions {
			addException(ev, e, ex)
		}
	}

	if transp, status := encodeAvailability(e.Availability); transp != "" {
		ev.SetProperty(ics.ComponentPropertyTransp, transp)
		ev.SetProperty(propertyBusyStatus, status)
	}
	return ev
}

func setText(ev *ics.VEvent, property ics.ComponentProperty, v string) {
	if v != "" {
		ev.SetProperty(property, v)
	}
}

// recurrenceValue normalizes an RRULE value some writers escape like text.
func recurrenceValue(v string) string {
	v = strings.TrimPrefix(v, "RRULE:")
	return strings.NewReplacer(`\;`, ";", `\,`, ",").Replace(v)
}

func value(ev *ics.VEvent, property ics.ComponentProperty) string {
	if p := ev.GetProperty(property); p != nil {
		return p.Value
	}
	return ""
}

// parseTime reads a DATE or DATE-TIME property. A TZID time keeps its
// location.
func parseTime(p *ics.IANAProperty) (time.Time, bool, error) {
	if p == nil {
		return time.Time{}, false, errors.New("missing time property")
	}
	return parseValue(p.Value, p.ICalParameters)
}

// parseExceptions reads every EXDATE of ev. One property may list several
// comma separated values.
func parseExceptions(ev *ics.VEvent) ([]time.Time, error) {
	var out []time.Time
	for _, p := range ev.GetProperties(ics.ComponentPropertyExdate) {
		for _, v := range strings.Split(p.Value, ",") {
			if strings.TrimSpace(v) == "" {
				continue
			}
			t, _, err := parseValue(v, p.ICalParameters)
			if err != nil {
				return nil, fmt.Errorf("parse EXDATE %q: %w", v, err)
			}
			out = append(out, t)
		}
	}
	return out, nil
}

func parseValue(v string, params map[string][]string) (time.Time, bool, error) {
	v = strings.TrimSpace(v)

	allDay := !strings.Contains(v, "T")
	if vs := params[string(ics.ParameterValue)]; len(vs) > 0 && strings.EqualFold(vs[0], string(ics.ValueDataTypeDate)) {
		allDay = true
	}

	loc := time.UTC
	if tz := params[string(ics.ParameterTzid)]; len(tz) > 0 {
		if l, err := time.LoadLocation(tz[0]); err == nil {
			loc = l
		}
	}

	switch {
	case allDay:
		t, err := time.ParseInLocation(dateLayout, v, time.UTC)
		return t, true, err
	case strings.HasSuffix(v, "Z"):
		t, err := time.Parse(dateTimeLayout+"Z", v)
		return t, false, err
	default:
		t, err := time.ParseInLocation(dateTimeLayout, v, loc)
		return t, false, err
	}
}

// setTime writes a DATE-TIME property. Times in a named zone are written as
// local wall clock with TZID, everything else as UTC.
func setTime(ev *ics.VEvent, property ics.ComponentProperty, t time.Time) {
	if tzid, ok := zoneID(t); ok {
		ev.SetProperty(property, t.Format(dateTimeLayout), ics.WithTZID(tzid))
		return
	}
	ev.SetProperty(property, t.UTC().Format(dateTimeLayout+"Z"))
}

// addException writes one EXDATE in the same form as the DTSTART of e.
func addException(ev *ics.VEvent, e calendar.Entry, ex time.Time) {
	switch tzid, ok := zoneID(e.Start); {
	case e.AllDay:
		ev.AddExdate(ex.Format(dateLayout), ics.WithValue(string(ics.ValueDataTypeDate)))
	case ok:
		ev.AddExdate(ex.In(e.Start.Location()).Format(dateTimeLayout), ics.WithTZID(tzid))
	default:
		ev.AddExdate(ex.UTC().Format(dateTimeLayout + "Z"))
	}
}

func zoneID(t time.Time) (string, bool) {
	switch name := t.Location().String(); name {
	case "", "UTC", "Local":
		return "", false
	default:
		return name, true
	}
}

func decodeAvailability(busyStatus, transp string) calendar.Availability {
	switch strings.ToUpper(busyStatus) {
	case "BUSY":
		return calendar.AvailabilityBusy
	case "FREE":
		return calendar.AvailabilityFree
	case "TENTATIVE":
		return calendar.AvailabilityTentative
	case "OOF":
		return calendar.AvailabilityUnavailable
	}
	switch strings.ToUpper(transp) {
	case "TRANSPARENT":
		return calendar.AvailabilityFree
	case "OPAQUE":
		return calendar.AvailabilityBusy
	}
	return calendar.AvailabilityNotSupported
}

func encodeAvailability(a calendar.Availability) (transp, busyStatus string) {
	switch a {
	case calendar.AvailabilityBusy:
		return "OPAQUE", "BUSY"
	case calendar.AvailabilityFree:
		return "TRANSPARENT", "FREE"
	case calendar.AvailabilityTentative:
		return "OPAQUE", "TENTATIVE"
	case calendar.AvailabilityUnavailable:
		return "OPAQUE", "OOF"
	default:
		return "", ""
	}
}
