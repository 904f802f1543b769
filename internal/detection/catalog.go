package detection

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Diseases []catalogEntry `yaml:"diseases"`
}

type catalogEntry struct {
	Crop          string           `yaml:"crop"`
	Name          string           `yaml:"name"`
	ShortRemedy   string           `yaml:"short_remedy"`
	Treatment     string           `yaml:"treatment"`
	RecheckAdvice string           `yaml:"recheck_advice"`
	IsHealthy     bool             `yaml:"is_healthy"`
	Products      []catalogProduct `yaml:"products"`
}

type catalogProduct struct {
	Name  string `yaml:"name"`
	Image string `yaml:"image"`
}

// ParseCatalog decodes a disease catalog document.
func ParseCatalog(data []byte) ([]DiseaseInfo, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing disease catalog: %w", err)
	}

	infos := make([]DiseaseInfo, 0, len(file.Diseases))
	for i, entry := range file.Diseases {
		crop := strings.TrimSpace(entry.Crop)
		name := strings.TrimSpace(entry.Name)
		if crop == "" || name == "" {
			return nil, fmt.Errorf("disease catalog entry %d: crop and name are required", i)
		}
		info := DiseaseInfo{
			Name:          name,
			Crop:          crop,
			ShortRemedy:   strings.TrimSpace(entry.ShortRemedy),
			Treatment:     strings.TrimSpace(entry.Treatment),
			RecheckAdvice: strings.TrimSpace(entry.RecheckAdvice),
			IsHealthy:     entry.IsHealthy,
		}
		for _, p := range entry.Products {
			info.Products = append(info.Products, Product{Name: strings.TrimSpace(p.Name), ImagePath: strings.TrimSpace(p.Image)})
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// SeedCatalog upserts every entry of the YAML catalog at path. A missing file is skipped.
func SeedCatalog(ctx context.Context, repo Repository, path string, logger *zap.Logger) (int, error) {
	if path == "" {
		return 0, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("Disease catalog file not found, skipping seed", zap.String("path", path))
			return 0, nil
		}
		return 0, fmt.Errorf("reading disease catalog: %w", err)
	}

	infos, err := ParseCatalog(data)
	if err != nil {
		return 0, err
	}
	for i := range infos {
		if err := repo.UpsertDisease(ctx, &infos[i]); err != nil {
			return i, fmt.Errorf("upserting %s/%s: %w", infos[i].Crop, infos[i].Name, err)
		}
	}
	logger.Info("Disease catalog seeded", zap.Int("entries", len(infos)), zap.String("path", path))
	return len(infos), nil
}
