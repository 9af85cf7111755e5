package batch

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"

	"saucer-wad-exporter/internal/texture"
	"saucer-wad-exporter/internal/wad"
	"saucer-wad-exporter/internal/wad/wadtest"
)

func pcmFormat(rate uint32) [16]byte {
	var f [16]byte
	binary.LittleEndian.PutUint16(f[0:], 1)
	binary.LittleEndian.PutUint16(f[2:], 1)
	binary.LittleEndian.PutUint32(f[4:], rate)
	binary.LittleEndian.PutUint32(f[8:], rate*2)
	binary.LittleEndian.PutUint16(f[12:], 2)
	binary.LittleEndian.PutUint16(f[14:], 16)
	return f
}

func testContainer() *wad.Container {
	full := [4]wad.UV{{0, 0}, {255, 0}, {255, 255}, {0, 255}}
	quad := []wadtest.Face{{Texture: 0, Indices: [4]uint16{0, 1, 2, 3}}}
	verts := []wad.Vertex{{0, 0, 0}, {64, 0, 0}, {64, 64, 0}, {0, 64, 0}}
	return (&wadtest.Builder{
		Palette: wadtest.GrayPalette(),
		Blobs:   [3][]byte{[]byte("b1"), nil, []byte("b3")},
		Languages: []wadtest.Language{
			{ID: 1, Index: []uint16{0, 4}, Text: []byte("Yes\x00No\x00")},
		},
		Bitmaps: []wadtest.Bitmap{
			wadtest.SolidBitmap(4, 4, 1),
			wadtest.SolidBitmap(4, 4, 2),
			wadtest.SolidBitmap(2, 2, 3),
		},
		ExportedTextures: []wadtest.Named{{Name: "grass", Index: 0}, {Name: "sky/top", Index: 1}},
		TextureDefs:      []wad.TextureDefinition{{UVs: full, BitmapIndex: 2}},
		Models: []wadtest.Model{
			{Name: "ship", Vertices: verts, Faces: quad, Matrix: [12]int16{512, 0, 0, 0, 512, 0, 0, 0, 512}},
			{Name: "broken", Vertices: verts, Faces: []wadtest.Face{{Texture: 9, Indices: [4]uint16{0, 1, 2, 3}}}},
		},
		Sounds: []wadtest.Sound{
			{Name: "beep", Format: pcmFormat(22050), Data: make([]byte, 4410)},
			{Name: "beep", Format: pcmFormat(11025), Data: []byte{1, 0, 2, 0}},
		},
	}).Load()
}

func testConfig(dir string) Config {
	return Config{OutputDir: dir, Format: texture.FormatPNG, BitmapScale: 2, Workers: 4}
}

func TestPlan(t *testing.T) {
	jobs := Plan(testContainer(), Config{Format: texture.FormatTGA})

	want := []struct {
		kind Kind
		path string
	}{
		{KindTexture, "textures/t0_grass.tga"},
		{KindTexture, "textures/t1_sky_top.tga"},
		{KindBitmap, "bitmaps/bitmap_0.tga"},
		{KindSound, "sounds/beep.wav"},
		{KindSound, "sounds/beep_1.wav"},
		{KindModel, "models/ship.gltf"},
		{KindModel, "models/broken.gltf"},
		{KindBlob, "blob1.bin"},
		{KindBlob, "blob2.bin"},
		{KindBlob, "blob3.bin"},
		{KindLanguage, "languages/lang_0.txt"},
	}
	if len(jobs) != len(want)+6 {
		t.Fatalf("planned %d jobs, want %d", len(jobs), len(want)+6)
	}
	for i, w := range want {
		if jobs[i].Kind != w.kind || jobs[i].Path != w.path {
			t.Errorf("job %d = %s %q, want %s %q", i, jobs[i].Kind, jobs[i].Path, w.kind, w.path)
		}
	}
	if jobs[1].Name != "sky/top" {
		t.Errorf("texture name = %q", jobs[1].Name)
	}
}

func TestPlanSkips(t *testing.T) {
	jobs := Plan(testContainer(), Config{Format: texture.FormatPNG, SkipBitmaps: true, SkipSounds: true, SkipModels: true})
	for _, j := range jobs {
		if j.Kind != KindBlob && j.Kind != KindLanguage {
			t.Errorf("unexpected job %s %q", j.Kind, j.Path)
		}
	}
}

func TestRun(t *testing.T) {
	c := testContainer()
	dir := t.TempDir()
	cfg := testConfig(dir)
	jobs := Plan(c, cfg)
	results := Run(c, cfg, jobs)

	if Failed(results) != 1 {
		t.Fatalf("failed = %d, want 1", Failed(results))
	}
	for i, r := range results {
		if r.Path != jobs[i].Path {
			t.Fatalf("result %d out of order: %q", i, r.Path)
		}
		if r.Name == "broken" {
			if r.Success || !strings.Contains(r.Error, "texture 9") {
				t.Errorf("broken model result = %+v", r)
			}
			if _, err := os.Stat(filepath.Join(dir, "models", "broken.gltf")); !os.IsNotExist(err) {
				t.Error("failed model was written")
			}
			continue
		}
		if !r.Success {
			t.Errorf("%s: %s", r.Path, r.Error)
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(r.Path)))
		if err != nil {
			t.Fatalf("read %s: %v", r.Path, err)
		}
		if len(data) != r.Size || xxhash.Sum64(data) != r.Hash {
			t.Errorf("%s: size/hash mismatch", r.Path)
		}
	}

	beep := results[3]
	if beep.Sound == nil || beep.Sound.SampleRate != 22050 || beep.Sound.Channels != 1 || beep.Sound.BitDepth != 16 {
		t.Errorf("sound info = %+v", beep.Sound)
	}
	if results[4].Sound == nil || results[4].Sound.SampleRate != 11025 {
		t.Errorf("duplicate sound info = %+v", results[4].Sound)
	}

	lang, err := os.ReadFile(filepath.Join(dir, "languages", "lang_0.txt"))
	if err != nil || string(lang) != "Yes\nNo\n" {
		t.Errorf("lang_0 = %q, %v", lang, err)
	}
	blob, err := os.ReadFile(filepath.Join(dir, "blob3.bin"))
	if err != nil || string(blob) != "b3" {
		t.Errorf("blob3 = %q, %v", blob, err)
	}

	model, err := os.ReadFile(filepath.Join(dir, "models", "ship.gltf"))
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(model, &doc); err != nil {
		t.Fatalf("model is not JSON: %v", err)
	}
	if asset, _ := doc["asset"].(map[string]any); asset["version"] != "2.0" {
		t.Errorf("asset = %v", doc["asset"])
	}
}

func TestRunDeterministic(t *testing.T) {
	c := testContainer()
	hashes := func() map[string]uint64 {
		cfg := testConfig(t.TempDir())
		out := make(map[string]uint64)
		for _, r := range Run(c, cfg, Plan(c, cfg)) {
			out[r.Path] = r.Hash
		}
		return out
	}
	a, b := hashes(), hashes()
	for p, h := range a {
		if b[p] != h {
			t.Errorf("%s differs between runs", p)
		}
	}
}

func TestManifest(t *testing.T) {
	c := testContainer()
	dir := t.TempDir()
	cfg := testConfig(dir)
	results := Run(c, cfg, Plan(c, cfg))

	m := NewManifest("TEST.WAD", int(c.Header().Version), results)
	if len(m.Assets) != len(results)-1 {
		t.Errorf("manifest lists %d assets, want %d", len(m.Assets), len(results)-1)
	}

	path := filepath.Join(dir, "manifest.json")
	if err := WriteManifest(path, m); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got Manifest
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Version != 1 || got.Source != "TEST.WAD" || len(got.Assets) != len(m.Assets) {
		t.Errorf("manifest = %+v", got)
	}
	first := got.Assets[0]
	if first.Kind != KindTexture || len(first.XXHash) != 16 {
		t.Errorf("first entry = %+v", first)
	}
	for _, e := range got.Assets {
		if e.Kind == KindSound && e.Sound == nil {
			t.Errorf("%s has no sound info", e.Path)
		}
	}
}
