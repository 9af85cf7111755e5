package batch

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-audio/wav"

	"saucer-wad-exporter/internal/scene"
	"saucer-wad-exporter/internal/texture"
	"saucer-wad-exporter/internal/wad"
)

// Kind names the type of an extracted asset.
type Kind string

const (
	KindTexture  Kind = "texture"
	KindBitmap   Kind = "bitmap"
	KindSound    Kind = "sound"
	KindModel    Kind = "model"
	KindBlob     Kind = "blob"
	KindLanguage Kind = "language"
)

// Config holds all shared settings for a batch run.
type Config struct {
	OutputDir   string
	Format      texture.Format
	BitmapScale int
	Workers     int
	SkipSounds  bool
	SkipModels  bool
	SkipBitmaps bool
}

// Job is one asset to extract. Path is relative to the output directory and
// slash-separated.
type Job struct {
	Kind  Kind
	Name  string
	Path  string
	Index int

	sound wad.SoundHeader
	model wad.ModelHeader
}

// SoundInfo is the WAVE metadata of an extracted sound.
type SoundInfo struct {
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	BitDepth   int     `json:"bit_depth"`
	Seconds    float64 `json:"seconds,omitempty"`
}

// Result holds the outcome of extracting one asset.
type Result struct {
	Kind    Kind
	Name    string
	Path    string
	Size    int
	Hash    uint64
	Sound   *SoundInfo
	Success bool
	Error   string
}

// Plan lists every asset of c in output order: texture pages, bitmaps,
// sounds, models, blobs, then language tables. Names that map to the same
// file get a numeric suffix.
func Plan(c *wad.Container, cfg Config) []Job {
	var jobs []Job
	used := make(map[string]bool)
	add := func(j Job) {
		j.Path = uniquePath(used, j.Path)
		jobs = append(jobs, j)
	}

	if !cfg.SkipBitmaps {
		names := c.ExportedTextures().Names()
		idx := texture.NewIndex(names, c.NumBitmaps(), cfg.Format)
		for i := 0; i < idx.Len(); i++ {
			kind := KindBitmap
			name := fmt.Sprintf("bitmap_%d", i-idx.NumTextures())
			if idx.IsTexture(i) {
				kind = KindTexture
				name = names[i]
			}
			add(Job{Kind: kind, Name: name, Path: idx.Path(i), Index: i})
		}
	}

	if !cfg.SkipSounds {
		for i, e := range c.Sounds().Entries() {
			add(Job{Kind: KindSound, Name: e.Name, Path: path.Join("sounds", texture.FileName(e.Name)+".wav"), Index: i, sound: e.Value})
		}
	}

	if !cfg.SkipModels {
		for i, e := range c.Models().Entries() {
			add(Job{Kind: KindModel, Name: e.Name, Path: path.Join("models", texture.FileName(e.Name)+".gltf"), Index: i, model: e.Value})
		}
	}

	for n := 1; n <= 3; n++ {
		add(Job{Kind: KindBlob, Name: fmt.Sprintf("blob%d", n), Path: fmt.Sprintf("blob%d.bin", n), Index: n})
	}
	for i := range c.Languages() {
		add(Job{Kind: KindLanguage, Name: fmt.Sprintf("lang_%d", i), Path: path.Join("languages", fmt.Sprintf("lang_%d.txt", i)), Index: i})
	}
	return jobs
}

func uniquePath(used map[string]bool, p string) string {
	ext := path.Ext(p)
	stem := strings.TrimSuffix(p, ext)
	candidate := p
	for n := 1; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
	used[candidate] = true
	return candidate
}

// cachedSource serves texture definitions from the container and bitmaps
// from a shared cache.
type cachedSource struct {
	c     *wad.Container
	cache *texture.Cache
}

func (s cachedSource) TextureDef(i int) (wad.TextureDefinition, bool) { return s.c.TextureDef(i) }

func (s cachedSource) DecodeBitmap(i int) (*image.NRGBA, error) { return s.cache.DecodeBitmap(i) }

// Run extracts all jobs using a worker pool. Results are in job order.
func Run(c *wad.Container, cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	src := cachedSource{c: c, cache: texture.NewCache(c)}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f assets/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(c, src, cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(c *wad.Container, src cachedSource, cfg Config, job Job) Result {
	res := Result{Kind: job.Kind, Name: job.Name, Path: job.Path}

	data, err := render(c, src, cfg, job)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if job.Kind == KindSound {
		res.Sound = soundInfo(data)
	}

	outPath := filepath.Join(cfg.OutputDir, filepath.FromSlash(job.Path))
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		res.Error = err.Error()
		return res
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		res.Error = err.Error()
		return res
	}

	res.Size = len(data)
	res.Hash = xxhash.Sum64(data)
	res.Success = true
	return res
}

// render produces the file contents of one job.
func render(c *wad.Container, src cachedSource, cfg Config, job Job) ([]byte, error) {
	switch job.Kind {
	case KindTexture, KindBitmap:
		img, err := src.DecodeBitmap(job.Index)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := texture.Encode(&buf, texture.Upscale(img, cfg.BitmapScale), cfg.Format); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case KindSound:
		return c.DecodeSound(job.sound)

	case KindModel:
		model, err := c.DecodeModel(job.model)
		if err != nil {
			return nil, err
		}
		return scene.Export(src, model)

	case KindBlob:
		return c.Blob(job.Index), nil

	case KindLanguage:
		lang := c.Languages()[job.Index]
		var buf bytes.Buffer
		for _, s := range lang.Strings() {
			buf.WriteString(s)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("batch: unknown asset kind %q", job.Kind)
}

// soundInfo reads the format of a reconstructed WAVE file. It returns nil
// when the file does not parse.
func soundInfo(data []byte) *SoundInfo {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil
	}
	info := &SoundInfo{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
	}
	if dur, err := d.Duration(); err == nil {
		info.Seconds = dur.Seconds()
	}
	return info
}

// Failed counts the results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Success {
			n++
		}
	}
	return n
}
