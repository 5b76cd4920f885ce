package application_test

import (
	"testing"

	"siren-node/internal/application"
)

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses whitespace", "Flood   warning \t issued", "Flood warning issued"},
		{"expands ampersand", "Evacuate now & stay safe", "Evacuate now and stay safe"},
		{"expands temperature unit", "Temperature  is 25°C", "Temperature is 25 degrees Celsius"},
		{"expands speed unit", "Wind 80km/h", "Wind 80 kilometers per hour"},
		{"expands percent", "100% chance", "100 percent chance"},
		{"separates digits from letters", "Shelter at 10AM", "Shelter at 10 A M"},
		{"expands acronym", "WHO advisory", "W H O advisory"},
		{"expands acronym listed before its prefix", "UNESCO shelter open", "U N E S C O shelter open"},
		{"empty", "", ""},
		{"whitespace only", "   \n ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := application.NormalizeText(tc.input)
			if got != tc.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeText_Idempotent(t *testing.T) {
	inputs := []string{
		"Flood warning: wind 80km/h & rising 25°C",
		"Evacuate by 10AM, 100% mandatory",
		"WHO & UN advisory for the EU",
		"UNESCO shelter at 25°C",
	}

	for _, input := range inputs {
		once := application.NormalizeText(input)
		twice := application.NormalizeText(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\n first: %q\nsecond: %q", input, once, twice)
		}
	}
}
