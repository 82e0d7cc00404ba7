package bill

import (
	"fmt"
	"time"
)

// French month labels, truncated to three letters the way the portal has
// always rendered them.
var frenchMonths = [13]string{
	"",
	"Jan", "Fév", "Mar", "Avr", "Mai", "Jui",
	"Jui", "Aoû", "Sep", "Oct", "Nov", "Déc",
}

// statusLabels maps a bill status to its display label.
var statusLabels = map[Status]string{
	StatusPending:  "En attente",
	StatusAccepted: "Accepté",
	StatusRefused:  "Refusé",
}

// dateLayouts are the shapes a stored bill date may arrive in.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

// FormatDate rewrites an ISO date into the localized short display form,
// e.g. "2004-04-04" becomes "4 Avr. 04". It returns an error when the
// value is not a parseable date.
func FormatDate(value string) (string, error) {
	var date time.Time
	var err error
	for _, layout := range dateLayouts {
		date, err = time.Parse(layout, value)
		if err == nil {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("invalid date value %q: %w", value, err)
	}
	return fmt.Sprintf("%d %s. %02d", date.Day(), frenchMonths[date.Month()], date.Year()%100), nil
}

// FormatStatus returns the display label for a status. Unknown statuses
// fall back to the raw value, so formatting a status never fails.
func FormatStatus(status Status) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}

// Format projects a Bill for display. A date that cannot be formatted is
// reported through the returned error while the projection keeps the raw
// value, so one malformed record never hides the rest of the list.
func Format(b Bill) (FormattedBill, error) {
	formatted := FormattedBill{
		Bill:   b,
		Date:   b.Date,
		Status: FormatStatus(b.Status),
	}
	date, err := FormatDate(b.Date)
	if err != nil {
		return formatted, err
	}
	formatted.Date = date
	return formatted, nil
}
