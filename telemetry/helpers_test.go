package telemetry

import (
	"testing"

	"github.com/pthm-cable/trophic/config"
	"github.com/pthm-cable/trophic/species"
)

func testTable(t *testing.T) *species.Table {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	table, err := species.FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func mustIndex(t *testing.T, table *species.Table, name string) uint8 {
	t.Helper()
	d, ok := table.Lookup(name)
	if !ok {
		t.Fatalf("unknown species %q", name)
	}
	return d.Index
}
