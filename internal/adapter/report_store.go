package adapter

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	m "gooze.dev/pkg/stackmut/internal/model"
	pkg "gooze.dev/pkg/stackmut/pkg"
)

const (
	reportIndexFile = "_index.yaml"
	reportFileExt   = ".yaml"

	// ShardDirPrefix prefixes the per-shard report directories.
	ShardDirPrefix = "shard_"
)

// ShardDir returns the directory holding the reports of one shard.
func ShardDir(dir m.Path, shardIndex int) m.Path {
	return m.Path(filepath.Join(string(dir), fmt.Sprintf("%s%d", ShardDirPrefix, shardIndex)))
}

// ReportStore persists mutation reports, one YAML file per listing, and tracks
// listing hashes so unchanged listings can be skipped on the next run.
type ReportStore interface {
	// SaveReports merges reports per listing and writes them under dir.
	SaveReports(ctx context.Context, dir m.Path, reports pkg.FileSpill[m.Report]) error
	// LoadReports reads every report under dir, ordered by source path.
	LoadReports(ctx context.Context, dir m.Path) ([]m.Report, error)
	// CheckUpdates returns the sources whose hash differs from the stored one,
	// followed by sources recorded in the index that no longer exist in
	// sources (those carry only Origin.FullPath).
	CheckUpdates(ctx context.Context, dir m.Path, sources []m.Source) ([]m.Source, error)
	// CleanReports removes the reports of sources.
	CleanReports(ctx context.Context, dir m.Path, sources []m.Source) error
	// ShardDirs lists the shard_* report directories under dir.
	ShardDirs(ctx context.Context, dir m.Path) ([]m.Path, error)
}

type reportIndexEntry struct {
	Hash string `yaml:"hash"`
	File string `yaml:"file"`
}

type reportIndex struct {
	Version int                         `yaml:"version"`
	Sources map[string]reportIndexEntry `yaml:"sources"`
}

// YAMLReportStore implements ReportStore on the local filesystem.
type YAMLReportStore struct{}

// NewReportStore constructs a YAMLReportStore.
func NewReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

// SaveReports merges reports per listing and writes them under dir.
func (s *YAMLReportStore) SaveReports(ctx context.Context, dir m.Path, reports pkg.FileSpill[m.Report]) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}

	merged := make(map[m.Path]*m.Report)

	err := reports.Range(func(_ uint64, report m.Report) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		current, ok := merged[report.Source]
		if !ok {
			copied := report
			copied.Results = append([]m.Result(nil), report.Results...)
			merged[report.Source] = &copied

			return nil
		}

		if current.Class == "" {
			current.Class = report.Class
		}

		current.Results = append(current.Results, report.Results...)

		return nil
	})
	if err != nil {
		return fmt.Errorf("read reports: %w", err)
	}

	index, err := s.loadIndex(dir)
	if err != nil {
		return err
	}

	for source, report := range merged {
		sort.SliceStable(report.Results, func(i, j int) bool {
			a, b := report.Results[i].Identifier, report.Results[j].Identifier
			if a.Location.Method != b.Location.Method {
				return a.Location.Method < b.Location.Method
			}

			return a.Ordinal < b.Ordinal
		})

		name := reportFileName(source)
		if err := writeYAML(filepath.Join(string(dir), name), report); err != nil {
			return fmt.Errorf("write report for %s: %w", source, err)
		}

		index.Sources[string(source)] = reportIndexEntry{Hash: report.Hash, File: name}
	}

	return s.saveIndex(dir, index)
}

// LoadReports reads every report under dir, ordered by source path.
func (s *YAMLReportStore) LoadReports(ctx context.Context, dir m.Path) ([]m.Report, error) {
	index, err := s.loadIndex(dir)
	if err != nil {
		return nil, err
	}

	sources := make([]string, 0, len(index.Sources))
	for source := range index.Sources {
		sources = append(sources, source)
	}

	sort.Strings(sources)

	reports := make([]m.Report, 0, len(sources))

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var report m.Report

		path := filepath.Join(string(dir), index.Sources[source].File)
		if err := readYAML(path, &report); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				slog.Warn("Report listed in index is missing", "source", source, "path", path)
				continue
			}

			return nil, fmt.Errorf("read report %s: %w", path, err)
		}

		reports = append(reports, report)
	}

	return reports, nil
}

// CheckUpdates compares sources against the stored hashes.
func (s *YAMLReportStore) CheckUpdates(ctx context.Context, dir m.Path, sources []m.Source) ([]m.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index, err := s.loadIndex(dir)
	if err != nil {
		return nil, err
	}

	current := make(map[string]bool, len(sources))
	changed := make([]m.Source, 0)

	for _, source := range sources {
		if source.Origin == nil {
			continue
		}

		path := string(source.Origin.FullPath)
		current[path] = true

		entry, ok := index.Sources[path]
		if !ok || entry.Hash != source.Origin.Hash {
			changed = append(changed, source)
		}
	}

	stale := make([]string, 0)

	for path := range index.Sources {
		if !current[path] {
			stale = append(stale, path)
		}
	}

	sort.Strings(stale)

	for _, path := range stale {
		changed = append(changed, m.Source{Origin: &m.File{FullPath: m.Path(path), ShortPath: m.Path(path)}})
	}

	return changed, nil
}

// CleanReports removes the reports of sources and their index entries.
func (s *YAMLReportStore) CleanReports(ctx context.Context, dir m.Path, sources []m.Source) error {
	index, err := s.loadIndex(dir)
	if err != nil {
		return err
	}

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		if source.Origin == nil {
			continue
		}

		path := string(source.Origin.FullPath)

		entry, ok := index.Sources[path]
		if !ok {
			continue
		}

		if err := os.Remove(filepath.Join(string(dir), entry.File)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove report for %s: %w", path, err)
		}

		delete(index.Sources, path)
	}

	return s.saveIndex(dir, index)
}

// ShardDirs lists the shard_* directories under dir in name order.
func (s *YAMLReportStore) ShardDirs(ctx context.Context, dir m.Path) ([]m.Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(string(dir))
	if err != nil {
		return nil, fmt.Errorf("read reports dir: %w", err)
	}

	dirs := make([]m.Path, 0)

	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), ShardDirPrefix) {
			dirs = append(dirs, m.Path(filepath.Join(string(dir), entry.Name())))
		}
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i] < dirs[j] })

	return dirs, nil
}

func (s *YAMLReportStore) loadIndex(dir m.Path) (reportIndex, error) {
	index := reportIndex{Version: 1, Sources: map[string]reportIndexEntry{}}

	err := readYAML(filepath.Join(string(dir), reportIndexFile), &index)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return reportIndex{}, fmt.Errorf("read report index: %w", err)
	}

	if index.Sources == nil {
		index.Sources = map[string]reportIndexEntry{}
	}

	return index, nil
}

func (s *YAMLReportStore) saveIndex(dir m.Path, index reportIndex) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}

	if err := writeYAML(filepath.Join(string(dir), reportIndexFile), index); err != nil {
		return fmt.Errorf("write report index: %w", err)
	}

	return nil
}

// reportFileName derives a stable file name from the listing path.
func reportFileName(source m.Path) string {
	sum := sha256.Sum256([]byte(source))
	base := strings.TrimSuffix(filepath.Base(string(source)), ListingSuffix)

	return fmt.Sprintf("%s-%x%s", base, sum[:6], reportFileExt)
}

func writeYAML(path string, v any) error {
	content, err := yaml.Marshal(v)
	if err != nil {
		return err
	}

	return os.WriteFile(path, content, 0o600)
}

func readYAML(path string, v any) error {
	// #nosec G304 - report paths are derived from the reports dir
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(content, v)
}
