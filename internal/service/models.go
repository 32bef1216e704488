package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Timtroll/llm/internal/domain"
)

const modelsIndexKey = "models:index"

// ListModels scans the model directory for *.gguf files and keeps the store
// in sync: models present on disk but absent from the store are added,
// models gone from disk are removed. When disk and store agree, metadata is
// served from the store.
func (s *Service) ListModels(ctx context.Context) (map[string]domain.ModelInfo, error) {
	paths, err := filepath.Glob(filepath.Join(s.config.ModelDir, "*.gguf"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan model dir: %w", err)
	}

	diskModels := make(map[string]string, len(paths)) // name -> path
	for _, p := range paths {
		name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		diskModels[name] = p
	}

	indexed, err := s.store.SetMembers(ctx, modelsIndexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	storeModels := make(map[string]bool, len(indexed))
	for _, name := range indexed {
		attrs, err := s.store.GetAllAttributes(ctx, "model:"+name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		if len(attrs) > 0 {
			storeModels[name] = true
		}
	}

	// Drop store entries for models no longer on disk.
	for name := range storeModels {
		if _, onDisk := diskModels[name]; onDisk {
			continue
		}
		if err := s.store.DeleteEntity(ctx, "model:"+name); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		if err := s.store.RemoveFromSet(ctx, modelsIndexKey, name); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		delete(storeModels, name)
		log.Printf("removed stale model %s from store", name)
	}

	models := make(map[string]domain.ModelInfo, len(diskModels))
	for name, path := range diskModels {
		if storeModels[name] {
			info, err := s.loadModelInfo(ctx, name)
			if err != nil {
				return nil, err
			}
			models[name] = info
			continue
		}

		info := describeModel(name, path)
		if err := s.saveModelInfo(ctx, info); err != nil {
			return nil, err
		}
		models[name] = info
		log.Printf("added model %s to store", name)
	}

	return models, nil
}

// describeModel builds metadata for a model file. Version, parameter count
// and architecture would need a runtime probe; they stay "unknown" until one
// exists.
func describeModel(name, path string) domain.ModelInfo {
	info := domain.ModelInfo{
		Name:          name,
		Path:          path,
		Version:       "unknown",
		Parameters:    "unknown",
		Architecture:  "unknown",
		DefaultTokens: 128,
		DefaultTemp:   0.7,
	}
	if stat, err := os.Stat(path); err == nil {
		info.SizeMB = float64(int(float64(stat.Size())/(1024*1024)*100)) / 100
		info.Modified = stat.ModTime().Format(time.DateTime)
	}
	return info
}

func (s *Service) saveModelInfo(ctx context.Context, info domain.ModelInfo) error {
	entity := "model:" + info.Name
	attrs := map[string]string{
		"name":           info.Name,
		"path":           info.Path,
		"size":           strconv.FormatFloat(info.SizeMB, 'f', 2, 64),
		"modified":       info.Modified,
		"version":        info.Version,
		"parameters":     info.Parameters,
		"architecture":   info.Architecture,
		"default_tokens": strconv.Itoa(info.DefaultTokens),
		"default_temp":   strconv.FormatFloat(info.DefaultTemp, 'g', -1, 64),
	}
	if info.MaxTokens > 0 {
		attrs["max_tokens"] = strconv.Itoa(info.MaxTokens)
	}
	for attr, val := range attrs {
		if err := s.store.SetAttribute(ctx, entity, attr, val, 0); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
	}
	if err := s.store.AddToSet(ctx, modelsIndexKey, info.Name); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Service) loadModelInfo(ctx context.Context, name string) (domain.ModelInfo, error) {
	attrs, err := s.store.GetAllAttributes(ctx, "model:"+name)
	if err != nil {
		return domain.ModelInfo{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	info := domain.ModelInfo{
		Name:         attrs["name"],
		Path:         attrs["path"],
		Modified:     attrs["modified"],
		Version:      attrs["version"],
		Parameters:   attrs["parameters"],
		Architecture: attrs["architecture"],
	}
	info.SizeMB, _ = strconv.ParseFloat(attrs["size"], 64)
	info.DefaultTokens, _ = strconv.Atoi(attrs["default_tokens"])
	info.DefaultTemp, _ = strconv.ParseFloat(attrs["default_temp"], 64)
	if v, ok := attrs["max_tokens"]; ok {
		info.MaxTokens, _ = strconv.Atoi(v)
	}
	return info, nil
}
