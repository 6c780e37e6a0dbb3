package cli

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/palpiteiro/palpiteiro/pkg/formation"
	"github.com/palpiteiro/palpiteiro/pkg/lineup"
)

func TestLayoutTable(t *testing.T) {
	l := lineup.Lineup{
		{ID: 5, Name: "Keeper", Position: lineup.Goalkeeper, Roster: lineup.Starters, Price: 8, Points: 3},
		{ID: 9, Name: "Nine", Position: lineup.Forward, Roster: lineup.Starters, Price: 12.5, Points: 9},
	}
	laid, err := formation.Layout(l, formation.DefaultPositionMap(), formation.CaptainAllTies)
	if err != nil {
		t.Fatal(err)
	}

	out := layoutTable(laid)
	for _, want := range []string{"starters-goalkeeper-1", "starters-forward-1", "(C) Nine", "$12.5", "$8.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("table lacks %q:\n%s", want, out)
		}
	}
}

func TestLayoutCommand(t *testing.T) {
	dir := isolate(t)
	input := writeLineupFile(t, dir, "https://img.test")

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"layout", input, "--json"})
	if err := root.Execute(); err != nil {
		t.Fatalf("layout failed: %v", err)
	}

	root = New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"layout", filepath.Join(dir, "missing.json")})
	root.SetErr(io.Discard)
	if err := root.Execute(); err == nil {
		t.Error("expected an error for a missing lineup file")
	}
}
