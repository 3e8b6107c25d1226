package timezone

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	location, err := Load("Europe/Stockholm")
	if err != nil {
		t.Fatal(err)
	}
	if location.String() != "Europe/Stockholm" {
		t.Fatalf("expected Europe/Stockholm, got %s", location)
	}

	local, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if local != time.Local {
		t.Fatal("expected local time")
	}

	if _, err := Load("Nowhere/Special"); err == nil {
		t.Fatal("expected error")
	}
}
