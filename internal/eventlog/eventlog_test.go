package eventlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestJournal_AppendAndRead(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	actions := []string{"place_settlement", "place_road", "roll_dice"}
	for _, a := range actions {
		if err := j.Append(Entry{GameID: "g1", PlayerID: "p1", Action: a, Payload: json.RawMessage(`{"x":1}`)}); err != nil {
			t.Fatalf("Append %s: %v", a, err)
		}
	}
	if err := j.Append(Entry{GameID: "g2", Action: "end_turn"}); err != nil {
		t.Fatalf("Append g2: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := ReadFile(j.Path("g1"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != len(actions) {
		t.Fatalf("got %d entries want %d", len(got), len(actions))
	}
	for i, e := range got {
		if e.Action != actions[i] || e.Seq != int64(i+1) || e.Time.IsZero() {
			t.Errorf("entry %d: %+v", i, e)
		}
	}

	files, err := List(j.dir)
	if err != nil || len(files) != 2 {
		t.Fatalf("List: %v %v", files, err)
	}
}

func TestJournal_ReopenContinuesSequence(t *testing.T) {
	dir := t.TempDir()
	j, _ := Open(dir)
	_ = j.Append(Entry{GameID: "g", Action: "a"})
	_ = j.Append(Entry{GameID: "g", Action: "b"})
	if err := j.CloseGame("g"); err != nil {
		t.Fatalf("CloseGame: %v", err)
	}

	j2, _ := Open(dir)
	if err := j2.Append(Entry{GameID: "g", Action: "c"}); err != nil {
		t.Fatalf("Append after reopen: %v", err)
	}
	_ = j2.Close()

	got, err := ReadFile(j2.Path("g"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 3 || got[2].Action != "c" || got[2].Seq != 3 {
		t.Fatalf("unexpected entries %+v", got)
	}
}

func TestJournal_SurvivesUncleanStop(t *testing.T) {
	dir := t.TempDir()
	j, _ := Open(dir)
	for _, a := range []string{"a", "b", "c"} {
		if err := j.Append(Entry{GameID: "g", Action: a}); err != nil {
			t.Fatalf("Append %s: %v", a, err)
		}
	}
	// Drop the handle the way a killed process would.
	j.games["g"].f.Close()

	j2, _ := Open(dir)
	if err := j2.Append(Entry{GameID: "g", Action: "d"}); err != nil {
		t.Fatalf("Append after restart: %v", err)
	}
	j2.games["g"].f.Close()

	j3, _ := Open(dir)
	if err := j3.Append(Entry{GameID: "g", Action: "e"}); err != nil {
		t.Fatalf("Append after second restart: %v", err)
	}
	_ = j3.Close()

	got, err := ReadFile(j3.Path("g"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := []string{"a", "b", "c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries want %d: %+v", len(got), len(want), got)
	}
	for i, e := range got {
		if e.Action != want[i] || e.Seq != int64(i+1) {
			t.Errorf("entry %d: %+v", i, e)
		}
	}
}

func TestJournal_DropsTornTail(t *testing.T) {
	dir := t.TempDir()
	j, _ := Open(dir)
	for _, a := range []string{"a", "b", "c"} {
		_ = j.Append(Entry{GameID: "g", Action: a})
	}
	_ = j.Close()

	path := j.Path("g")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if err := os.Truncate(path, info.Size()-3); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	j2, _ := Open(dir)
	if err := j2.Append(Entry{GameID: "g", Action: "d"}); err != nil {
		t.Fatalf("Append after truncation: %v", err)
	}
	_ = j2.Close()

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) < 3 || got[0].Action != "a" || got[1].Action != "b" {
		t.Fatalf("lost entries before the damage: %+v", got)
	}
	last := got[len(got)-1]
	if last.Action != "d" || last.Seq != int64(len(got)) {
		t.Errorf("unexpected last entry %+v of %d", last, len(got))
	}
}

func TestJournal_RejectsMissingGameID(t *testing.T) {
	j, _ := Open(t.TempDir())
	defer j.Close()
	if err := j.Append(Entry{Action: "x"}); err == nil {
		t.Fatal("expected error")
	}
}
