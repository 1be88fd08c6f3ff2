package domain

import (
	"errors"
	"testing"
)

func TestParseColumn(t *testing.T) {
	for _, c := range Columns() {
		got, err := ParseColumn(string(c))
		if err != nil || got != c {
			t.Errorf("ParseColumn(%q) = %q, %v", c, got, err)
		}
	}
	for _, bad := range []string{"", "TODO", "backlog", " doing"} {
		if _, err := ParseColumn(bad); !errors.Is(err, ErrInvalidColumn) {
			t.Errorf("ParseColumn(%q) err = %v, want ErrInvalidColumn", bad, err)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses() {
		got, err := ParseStatus(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStatus(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseStatus("blocked"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestColumnBaselineAndRank(t *testing.T) {
	want := map[Column]Status{
		ColumnTodo:  StatusPending,
		ColumnDoing: StatusCommitted,
		ColumnDone:  StatusDone,
	}
	for i, c := range Columns() {
		if c.Rank() != i {
			t.Errorf("%s rank = %d, want %d", c, c.Rank(), i)
		}
		if c.Baseline() != want[c] {
			t.Errorf("%s baseline = %s, want %s", c, c.Baseline(), want[c])
		}
	}
	if Column("archive").Valid() {
		t.Error("unknown column reported valid")
	}
}
