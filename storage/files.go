// Package storage owns the uploads and output directories: stored names for
// uploaded templates, persistence of generated artifacts, and listing of
// past generations.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/scriptgen-ra/scriptgen/common/config"
	"github.com/scriptgen-ra/scriptgen/common/logger"
)

// Store resolves every file path used by uploads and generation output. It
// never reads the environment; both directories come from the config.
type Store struct {
	UploadsDir string
	OutputDir  string
}

// New ensures both directories exist and returns the store.
func New(cfg *config.Config) (*Store, error) {
	s := &Store{
		UploadsDir: cfg.UploadsDir,
		OutputDir:  cfg.OutputDir,
	}
	for _, dir := range []string{s.UploadsDir, s.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create directory %q", dir)
		}
	}
	return s, nil
}

// TimestampedName prefixes an uploaded file's original name with a UTC
// timestamp so repeated uploads of the same file never collide on disk.
func TimestampedName(original string) string {
	ts := strings.NewReplacer(":", "-", ".", "-").
		Replace(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	return ts + "-" + filepath.Base(original)
}

// UploadPath resolves a stored upload name inside the uploads directory.
// Names carrying path separators or traversal segments are rejected.
func (s *Store) UploadPath(name string) (string, error) {
	if err := checkBasename(name); err != nil {
		return "", err
	}
	return filepath.Join(s.UploadsDir, name), nil
}

// OutputPath resolves a generated file name inside the output directory,
// with the same traversal guard as UploadPath.
func (s *Store) OutputPath(name string) (string, error) {
	if err := checkBasename(name); err != nil {
		return "", err
	}
	return filepath.Join(s.OutputDir, name), nil
}

func checkBasename(name string) error {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return errors.Errorf("illegal file name %q", name)
	}
	return nil
}

// ReadTemplate loads a template file as text.
func ReadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "read template %q", path)
	}
	return string(data), nil
}

// SavedFiles records where one generation's three artifacts landed.
type SavedFiles struct {
	MethodFilename   string `json:"methodFilename"`
	TestFilename     string `json:"testFilename"`
	CombinedFilename string `json:"combinedFilename"`
	MethodPath       string `json:"methodPath"`
	TestPath         string `json:"testPath"`
	CombinedPath     string `json:"combinedPath"`
}

// SaveArtifacts writes the method file, the test file, and a combined
// convenience file, all sharing the generation id in their names. The three
// writes are not atomic; a failure can leave earlier files behind.
func (s *Store) SaveArtifacts(generationID, methodFile, testFile string) (*SavedFiles, error) {
	saved := &SavedFiles{
		MethodFilename:   fmt.Sprintf("GeneratedMethods_%s.java", generationID),
		TestFilename:     fmt.Sprintf("GeneratedTests_%s.java", generationID),
		CombinedFilename: fmt.Sprintf("GeneratedCombined_%s.java", generationID),
	}
	saved.MethodPath = filepath.Join(s.OutputDir, saved.MethodFilename)
	saved.TestPath = filepath.Join(s.OutputDir, saved.TestFilename)
	saved.CombinedPath = filepath.Join(s.OutputDir, saved.CombinedFilename)

	combined := fmt.Sprintf("// ======= METHOD FILE =======\n%s\n\n// ======= TEST FILE =======\n%s",
		methodFile, testFile)

	writes := []struct {
		path, content string
	}{
		{saved.MethodPath, methodFile},
		{saved.TestPath, testFile},
		{saved.CombinedPath, combined},
	}
	for _, w := range writes {
		if err := os.WriteFile(w.path, []byte(w.content), 0o644); err != nil {
			return nil, errors.Wrapf(err, "write %q", w.path)
		}
	}

	logger.Logger.Info("generation artifacts saved",
		zap.String("generation_id", generationID),
		zap.String("output_dir", s.OutputDir))
	return saved, nil
}

// GeneratedFile describes one artifact in the output directory.
type GeneratedFile struct {
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Type     string    `json:"type"`
}

// ListGenerated returns every .java artifact in the output directory, newest
// first.
func (s *Store) ListGenerated() ([]GeneratedFile, error) {
	entries, err := os.ReadDir(s.OutputDir)
	if err != nil {
		return nil, errors.Wrapf(err, "read output directory %q", s.OutputDir)
	}

	files := make([]GeneratedFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".java") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, GeneratedFile{
			Filename: entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
			Type:     artifactType(entry.Name()),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Modified.After(files[j].Modified)
	})
	return files, nil
}

// LatestCombined returns the newest combined artifact's filename, or an
// error when none exist yet.
func (s *Store) LatestCombined() (string, error) {
	files, err := s.ListGenerated()
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if strings.HasPrefix(f.Filename, "GeneratedCombined_") {
			return f.Filename, nil
		}
	}
	return "", errors.New("no combined files found")
}

func artifactType(name string) string {
	switch {
	case strings.Contains(name, "Methods"):
		return "method"
	case strings.Contains(name, "Tests"):
		return "test"
	case strings.Contains(name, "Combined"):
		return "combined"
	default:
		return "unknown"
	}
}
