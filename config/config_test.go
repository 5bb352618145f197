package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Engine.NumRows != 461 || c.Engine.NoiseFloor != -118 || c.Engine.MalfunctionThreshold != -118 {
		t.Errorf("unexpected engine defaults: %+v", c.Engine)
	}
	if c.Engine.ProbeCount != 40 || c.Engine.Seed != 21 || c.Engine.RandomSeed {
		t.Errorf("unexpected classifier defaults: %+v", c.Engine)
	}
	if c.Files.Prefix != "MRT" || c.Files.Extension != "TXT" {
		t.Errorf("unexpected file defaults: %+v", c.Files)
	}
	if len(c.Gain.Bands) != 3 || c.Gain.Bands[0] != 20 || c.Gain.Bands[2] != 40 {
		t.Errorf("unexpected gain defaults: %+v", c.Gain.Bands)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults do not validate: %s", err)
	}
}

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := write(t, "rfiscan.yaml", `
engine:
  num_rows: 5
  full_scan: true
gain:
  bands: [10, 30, 30]
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned %s", err)
	}
	if c.Engine.NumRows != 5 || !c.Engine.FullScan {
		t.Errorf("engine not overridden: %+v", c.Engine)
	}
	if c.Engine.ProbeCount != 40 {
		t.Errorf("default probe count lost: %d", c.Engine.ProbeCount)
	}
	tbl, err := c.GainTable(1, "")
	if err != nil {
		t.Fatalf("GainTable() returned %s", err)
	}
	if tbl.At(0) != 30 {
		t.Errorf("band 1 gain = %f, want 30", tbl.At(0))
	}
	if a := c.Aggregator(nil); a.NumRows != 5 || len(a.Filters) != 1 {
		t.Errorf("Aggregator() = %+v", a)
	}
}

func TestLoadInvalid(t *testing.T) {
	for name, content := range map[string]string{
		"zero rows": "engine:\n  num_rows: 0\n",
		"two gains": "gain:\n  bands: [1, 2]\n",
		"no prefix": "files:\n  prefix: \"\"\n",
		"bad zone":  "files:\n  location: Nowhere/Atlantis\n",
		"not yaml":  "engine: [",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(write(t, "bad.yaml", content)); err == nil {
				t.Errorf("Load() = nil error")
			}
		})
	}
}

func TestGainTableTemplate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "AmpGain_band2.csv"), []byte("1,40\n2,41\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := Default()
	c.Engine.NumRows = 2
	c.Gain.TableTemplate = "AmpGain_band%d.csv"
	tbl, err := c.GainTable(2, dir)
	if err != nil {
		t.Fatalf("GainTable() returned %s", err)
	}
	if tbl.At(1) != 41 {
		t.Errorf("At(1) = %f, want 41", tbl.At(1))
	}
}
