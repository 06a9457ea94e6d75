package main

import (
	"bufio"
	"strings"
	"testing"
)

func TestReadYesDefaultsToYes(t *testing.T) {
	cases := map[string]bool{
		"\n":    true, // plain enter proceeds
		"y\n":   true,
		"Y\n":   true,
		"yes\n": true,
		"n\n":   false,
		"no\n":  false,
		"x\n":   false,
		"":      false, // closed stdin declines
	}
	for in, want := range cases {
		got := readYes(bufio.NewReader(strings.NewReader(in)))
		if got != want {
			t.Errorf("readYes(%q) = %v, want %v", in, got, want)
		}
	}
}
