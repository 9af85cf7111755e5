package wad_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/klauspost/compress/zstd"

	"saucer-wad-exporter/internal/wad"
	"saucer-wad-exporter/internal/wad/wadtest"
)

func pcmFormat(rate uint32) [16]byte {
	var f [16]byte
	binary.LittleEndian.PutUint16(f[0:], 1) // PCM
	binary.LittleEndian.PutUint16(f[2:], 1) // mono
	binary.LittleEndian.PutUint32(f[4:], rate)
	binary.LittleEndian.PutUint32(f[8:], rate*2)
	binary.LittleEndian.PutUint16(f[12:], 2)
	binary.LittleEndian.PutUint16(f[14:], 16)
	return f
}

func sampleBuilder() *wadtest.Builder {
	checker := wadtest.Bitmap{Width: 4, Height: 2, Pixels: []byte{0, 1, 2, 3, 4, 5, 6, 7}}
	return &wadtest.Builder{
		Background: 7,
		DepthNear:  16,
		DepthFar:   4096,
		Palette:    wadtest.GrayPalette(),
		Blobs:      [3][]byte{[]byte("one"), []byte("two!"), []byte("three")},
		Languages: []wadtest.Language{
			{ID: 1, Index: []uint16{0, 6}, Text: []byte("Hello\x00World\x00")},
			{ID: 2, Index: []uint16{0}, Text: []byte("Caf\xe9\x00")},
		},
		Bitmaps:          []wadtest.Bitmap{checker, wadtest.SolidBitmap(256, 256, 9)},
		ExportedTextures: []wadtest.Named{{Name: "floor", Index: 0}},
		TextureDefs: []wad.TextureDefinition{
			{UVs: [4]wad.UV{{0, 0}, {255, 0}, {255, 255}, {0, 255}}, BitmapIndex: 1},
			{UVs: [4]wad.UV{{0, 0}, {3, 0}, {3, 1}, {0, 1}}, BitmapIndex: 0, Flags: 1},
		},
		UnknownAssets: 2,
		Models: []wadtest.Model{{
			Name:     "saucer",
			Vertices: []wad.Vertex{{0, 0, 0}, {100, 0, 0}, {100, 100, 0}, {0, 100, -5}},
			Faces: []wadtest.Face{
				{Texture: 0, Indices: [4]uint16{0, 1, 2, 3}},
				{Texture: 1, Indices: [4]uint16{0, 2, 3, 0xFFFF}, Triangle: true},
			},
			Matrix: [12]int16{512, 0, 0, 0, 512, 0, 0, 0, 512, 10, -20, 30},
		}},
		Sounds: []wadtest.Sound{
			{Name: "beep", Format: pcmFormat(11025), Data: []byte{1, 0, 2, 0, 3, 0, 4, 0}},
		},
		NamedTextures: []wadtest.Named{{Name: "sky", Index: 1}},
		DebugNames:    3,
		DebugCount:    1,
	}
}

func TestLoad(t *testing.T) {
	c, err := wad.Load(sampleBuilder().Bytes())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	h := c.Header()
	if h.Version != 1 || h.BackgroundIndex != 7 || h.DepthNear != 16 || h.DepthFar != 4096 {
		t.Errorf("header = %+v", h)
	}
	if int(h.PackedSize) != c.PackedSize() {
		t.Errorf("packed size %d, region %d", h.PackedSize, c.PackedSize())
	}

	for n, want := range []string{"one", "two!", "three"} {
		if got := string(c.Blob(n + 1)); got != want {
			t.Errorf("blob%d = %q, want %q", n+1, got, want)
		}
	}

	if c.NumBitmaps() != 2 {
		t.Fatalf("bitmaps = %d, want 2", c.NumBitmaps())
	}
	if bm, _ := c.Bitmap(0); bm.Width != 4 || bm.Height != 2 {
		t.Errorf("bitmap 0 = %+v", bm)
	}
	if _, ok := c.Bitmap(2); ok {
		t.Error("bitmap 2 should not exist")
	}

	if c.NumTextureDefs() != 2 {
		t.Fatalf("texture defs = %d, want 2", c.NumTextureDefs())
	}
	def, _ := c.TextureDef(1)
	if !def.Masked() || def.BitmapIndex != 0 || def.UVs[2] != (wad.UV{U: 3, V: 1}) {
		t.Errorf("texture def 1 = %+v", def)
	}

	if idx, ok := c.ExportedTextures().Lookup("floor"); !ok || idx != 0 {
		t.Errorf("exported floor = %d, %v", idx, ok)
	}
	if idx, ok := c.NamedTextures().Lookup("sky"); !ok || idx != 1 {
		t.Errorf("named sky = %d, %v", idx, ok)
	}
	if names := c.Models().Names(); len(names) != 1 || names[0] != "saucer" {
		t.Errorf("models = %v", names)
	}
	if names := c.Sounds().Names(); len(names) != 1 || names[0] != "beep" {
		t.Errorf("sounds = %v", names)
	}

	langs := c.Languages()
	if len(langs) != 7 {
		t.Fatalf("languages = %d, want 7", len(langs))
	}
	if got := langs[0].Strings(); len(got) != 2 || got[0] != "Hello" || got[1] != "World" {
		t.Errorf("language 0 strings = %q", got)
	}
	if got := langs[1].Strings(); len(got) != 1 || got[0] != "Café" {
		t.Errorf("language 1 strings = %q", got)
	}
	if langs[0].ID != 1 || len(langs[0].Index) != 2 || langs[0].Index[1] != 6 {
		t.Errorf("language 0 = %+v", langs[0])
	}

	bg := c.BackgroundColor()
	if bg.R != 7 || bg.G != 248 || bg.B != 3 || bg.A != 255 {
		t.Errorf("background = %+v", bg)
	}
	if dist, blend := c.ColorTables(); len(dist) != 256*1024 || len(blend) != 256*256*16 {
		t.Errorf("colour tables %d/%d bytes", len(dist), len(blend))
	}
}

func TestLoadErrors(t *testing.T) {
	good := sampleBuilder().Bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{"Empty", nil},
		{"InsideColourTables", good[:1000]},
		{"InsideHeader", good[:256*1024+256*256*16+6]},
		{"InsidePackedData", good[:len(good)-10]},
		{"BadVersion", func() []byte {
			b := sampleBuilder()
			b.Version = 2
			return b.Bytes()
		}()},
		{"DebugCountTooLarge", func() []byte {
			b := sampleBuilder()
			b.DebugNames = 0
			b.DebugCount = 3
			return b.Bytes()
		}()},
		{"PackedSizeTooLarge", func() []byte {
			b := append([]byte(nil), good...)
			at := 256*1024 + 256*256*16
			info := binary.LittleEndian.Uint32(b[at:])
			binary.LittleEndian.PutUint32(b[at:], info+1)
			return b
		}()},
		{"NoPalette", func() []byte {
			b := append([]byte(nil), good...)
			at := 256*1024 + 256*256*16
			binary.LittleEndian.PutUint32(b[at:], 1<<24|512)
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wad.Load(tt.data)
			var fe *wad.FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("got %v, want *FormatError", err)
			}
			if fe.Error() == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestUnsupportedVersion(t *testing.T) {
	b := sampleBuilder()
	b.Version = 2
	data := b.Bytes()

	_, err := wad.Load(data)
	if !errors.Is(err, wad.ErrUnsupportedVersion) {
		t.Fatalf("got %v, want ErrUnsupportedVersion", err)
	}
	var fe *wad.FormatError
	if !errors.As(err, &fe) || fe.Section != "header" {
		t.Errorf("got %#v, want header *FormatError", err)
	}

	c, err := wad.LoadWith(data, wad.Options{AnyVersion: true})
	if err != nil {
		t.Fatalf("load with AnyVersion: %v", err)
	}
	if c.Header().Version != 2 || c.NumBitmaps() != 2 {
		t.Errorf("header = %+v, bitmaps = %d", c.Header(), c.NumBitmaps())
	}

	path := filepath.Join(t.TempDir(), "v2.wad")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := wad.ReadFile(path); !errors.Is(err, wad.ErrUnsupportedVersion) {
		t.Errorf("ReadFile: got %v, want ErrUnsupportedVersion", err)
	}
	if _, err := wad.ReadFileWith(path, wad.Options{AnyVersion: true}); err != nil {
		t.Errorf("ReadFileWith: %v", err)
	}
}

func TestDecodeBitmap(t *testing.T) {
	c := sampleBuilder().Load()

	img, err := c.DecodeBitmap(0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Fatalf("bounds = %v", b)
	}

	if a := img.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("index 0 alpha = %d, want 0", a)
	}

	// Every opaque pixel maps back to its palette index.
	pal := c.Palette()
	lookup := make(map[[3]uint8]byte)
	for i := 1; i < len(pal); i++ {
		lookup[[3]uint8{pal[i].R, pal[i].G, pal[i].B}] = byte(i)
	}
	want := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			px := img.NRGBAAt(x, y)
			w := want[y*4+x]
			if w == 0 {
				continue
			}
			if px.A != 255 {
				t.Errorf("(%d,%d) alpha = %d", x, y, px.A)
			}
			if got := lookup[[3]uint8{px.R, px.G, px.B}]; got != w {
				t.Errorf("(%d,%d) index = %d, want %d", x, y, got, w)
			}
		}
	}

	if _, err := c.DecodeBitmap(5); err == nil {
		t.Error("expected error for missing bitmap")
	}
}

func TestDecodeSound(t *testing.T) {
	b := sampleBuilder()
	c := b.Load()
	src := b.Sounds[0]

	h, ok := c.Sounds().Lookup("beep")
	if !ok {
		t.Fatal("beep not found")
	}
	out, err := c.DecodeSound(h)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(out) != 44+int(h.DataLen) {
		t.Fatalf("len = %d, want %d", len(out), 44+h.DataLen)
	}
	if !bytes.Equal(out[44:], src.Data) {
		t.Errorf("samples = %v, want %v", out[44:], src.Data)
	}
	if string(out[0:4]) != "RIFF" || string(out[8:16]) != "WAVEfmt " || string(out[36:40]) != "data" {
		t.Errorf("bad chunk tags: %q", out[:44])
	}
	if got := binary.LittleEndian.Uint32(out[4:]); got != h.DataLen+44 {
		t.Errorf("riff size = %d, want %d", got, h.DataLen+44)
	}
	if !bytes.Equal(out[20:36], src.Format[:]) {
		t.Errorf("format block = %v", out[20:36])
	}

	dec := wav.NewDecoder(bytes.NewReader(out))
	if !dec.IsValidFile() {
		t.Fatal("decoder rejects reconstructed file")
	}
	if dec.SampleRate != 11025 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Errorf("wav info = %d Hz, %d ch, %d bit", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}

	byName, err := c.DecodeSoundByName("beep")
	if err != nil || !bytes.Equal(byName, out) {
		t.Errorf("by name: %v", err)
	}
	if _, err := c.DecodeSoundByName("nope"); !errors.Is(err, wad.ErrUnknownName) {
		t.Errorf("unknown sound: got %v", err)
	}

	bad := h
	bad.DataLen = uint32(c.PackedSize())
	var fe *wad.FormatError
	if _, err := c.DecodeSound(bad); !errors.As(err, &fe) {
		t.Errorf("oversized sound: got %v", err)
	}
}

func TestDecodeModel(t *testing.T) {
	c := sampleBuilder().Load()

	m, err := c.DecodeModelByName("saucer")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(m.Vertices) != 4 || len(m.Faces) != 2 {
		t.Fatalf("got %d vertices, %d faces", len(m.Vertices), len(m.Faces))
	}
	if m.Vertices[3] != (wad.Vertex{0, 100, -5}) {
		t.Errorf("vertex 3 = %v", m.Vertices[3])
	}

	quad, tri := m.Faces[0], m.Faces[1]
	if quad.Kind != wad.FaceQuad || len(quad.VertexIndices()) != 4 || quad.Masked {
		t.Errorf("face 0 = %+v", quad)
	}
	if tri.Kind != wad.FaceTriangle || len(tri.VertexIndices()) != 3 || !tri.Masked {
		t.Errorf("face 1 = %+v", tri)
	}
	for i, f := range m.Faces {
		for _, vi := range f.VertexIndices() {
			if int(vi) >= len(m.Vertices) {
				t.Errorf("face %d: index %d out of range", i, vi)
			}
		}
	}

	want := [12]int16{512, 0, 0, 0, 512, 0, 0, 0, 512, 10, -20, 30}
	if m.Matrix != want {
		t.Errorf("matrix = %v, want %v", m.Matrix, want)
	}

	if _, err := c.DecodeModelByName("missing"); !errors.Is(err, wad.ErrUnknownName) {
		t.Errorf("unknown model: got %v", err)
	}
}

func TestDecodeModelErrors(t *testing.T) {
	tests := []struct {
		name string
		face wadtest.Face
	}{
		{"TextureOutOfRange", wadtest.Face{Texture: 9, Indices: [4]uint16{0, 1, 2}, Triangle: true}},
		{"VertexOutOfRange", wadtest.Face{Texture: 0, Indices: [4]uint16{0, 1, 2, 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := sampleBuilder()
			b.Models[0].Faces = append(b.Models[0].Faces, tt.face)
			c := b.Load()

			_, err := c.DecodeModelByName("saucer")
			var fe *wad.FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("got %v, want *FormatError", err)
			}
		})
	}

	c := sampleBuilder().Load()
	h, _ := c.Models().Lookup("saucer")
	h.MatrixOffset = uint32(c.PackedSize()) - 4
	var fe *wad.FormatError
	if _, err := c.DecodeModel(h); !errors.As(err, &fe) {
		t.Errorf("matrix past end: got %v", err)
	}
}

func TestNameTableDuplicates(t *testing.T) {
	b := sampleBuilder()
	b.Sounds = append(b.Sounds,
		wadtest.Sound{Name: "beep", Format: pcmFormat(22050), Data: []byte{9, 9}},
		wadtest.Sound{Name: "boop", Format: pcmFormat(22050), Data: []byte{8}},
	)
	c := b.Load()

	sounds := c.Sounds()
	if sounds.Len() != 3 {
		t.Fatalf("rows = %d, want 3", sounds.Len())
	}
	if d := sounds.Duplicates(); len(d) != 1 || d[0] != "beep" {
		t.Errorf("duplicates = %v", d)
	}
	h, _ := sounds.Lookup("beep")
	if h.DataLen != 8 {
		t.Errorf("lookup returned row with %d bytes, want the first row", h.DataLen)
	}
	entries := sounds.Entries()
	if entries[1].Name != "beep" || entries[1].Value.DataLen != 2 {
		t.Errorf("second row = %+v", entries[1])
	}
}

func TestDecodeDeterministic(t *testing.T) {
	data := sampleBuilder().Bytes()
	c1, err := wad.Load(data)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := wad.Load(append([]byte(nil), data...))
	if err != nil {
		t.Fatal(err)
	}

	s1, _ := c1.DecodeSoundByName("beep")
	s2, _ := c2.DecodeSoundByName("beep")
	if !bytes.Equal(s1, s2) {
		t.Error("sound output differs between loads")
	}
	b1, _ := c1.DecodeBitmap(1)
	b2, _ := c2.DecodeBitmap(1)
	if !bytes.Equal(b1.Pix, b2.Pix) {
		t.Error("bitmap output differs between loads")
	}
}

func TestReadFile(t *testing.T) {
	data := sampleBuilder().Bytes()
	dir := t.TempDir()

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	compressed := enc.EncodeAll(data, nil)
	enc.Close()

	files := map[string][]byte{"plain.wad": data, "packed.wad.zst": compressed}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, body, 0o644); err != nil {
				t.Fatal(err)
			}
			c, err := wad.ReadFile(path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if c.Models().Len() != 1 || c.PackedSize() == 0 {
				t.Errorf("models = %d, packed = %d", c.Models().Len(), c.PackedSize())
			}
		})
	}

	if _, err := wad.ReadFile(filepath.Join(dir, "missing.wad")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}

	short := filepath.Join(dir, "short.wad")
	if err := os.WriteFile(short, data[:1000], 0o644); err != nil {
		t.Fatal(err)
	}
	var fe *wad.FormatError
	if _, err := wad.ReadFile(short); !errors.As(err, &fe) {
		t.Errorf("short file error = %v, want FormatError", err)
	}
}
