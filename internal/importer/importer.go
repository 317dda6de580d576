// Package importer loads campaign seed content from YAML files into the
// stores. A seed file carries one campaign with its characters and bestiary
// templates; a content directory may hold any number of seed files.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tavernkeep/tavernkeep/internal/game/bestiary"
	"github.com/tavernkeep/tavernkeep/internal/game/campaign"
	"github.com/tavernkeep/tavernkeep/internal/game/character"
	"github.com/tavernkeep/tavernkeep/internal/game/combat"
)

const defaultMaxHealth = 20

// seedCharacter is a character record plus the seed-only threat_level field,
// which stands in for an explicit hit_chance.
type seedCharacter struct {
	character.Character `yaml:",inline"`
	ThreatLevel         bestiary.ThreatLevel `yaml:"threat_level"`
}

// seedFile is the YAML document layout of one campaign seed file.
type seedFile struct {
	Campaign struct {
		ID         string `yaml:"id"`
		Name       string `yaml:"name"`
		PlayerName string `yaml:"player_name"`
	} `yaml:"campaign"`
	Characters []seedCharacter     `yaml:"characters"`
	Bestiary   []bestiary.Template `yaml:"bestiary"`
}

// Summary counts the records written by an import run.
type Summary struct {
	Files      int
	Campaigns  int
	Characters int
	Templates  int
}

// Importer writes seed content through the store contracts, so the same code
// serves PostgreSQL and in-memory test stores.
type Importer struct {
	characters combat.CharacterStore
	templates  combat.TemplateStore
	campaigns  combat.CampaignStore
	logger     *zap.Logger
}

// New creates an Importer over the given stores.
func New(characters combat.CharacterStore, templates combat.TemplateStore, campaigns combat.CampaignStore, logger *zap.Logger) *Importer {
	return &Importer{
		characters: characters,
		templates:  templates,
		campaigns:  campaigns,
		logger:     logger,
	}
}

// Run imports every seed file in dir, in lexical order. Files are independent:
// re-running an import upserts records rather than duplicating them.
func (i *Importer) Run(ctx context.Context, dir string) (Summary, error) {
	var sum Summary

	paths, err := seedPaths(dir)
	if err != nil {
		return sum, err
	}
	if len(paths) == 0 {
		return sum, fmt.Errorf("importer: no seed files in %s", dir)
	}

	for _, path := range paths {
		fileSum, err := i.ImportFile(ctx, path)
		if err != nil {
			return sum, fmt.Errorf("importing %s: %w", path, err)
		}
		sum.Files++
		sum.Campaigns += fileSum.Campaigns
		sum.Characters += fileSum.Characters
		sum.Templates += fileSum.Templates
	}

	i.logger.Info("import finished",
		zap.String("dir", dir),
		zap.Int("files", sum.Files),
		zap.Int("campaigns", sum.Campaigns),
		zap.Int("characters", sum.Characters),
		zap.Int("templates", sum.Templates),
	)
	return sum, nil
}

// ImportFile imports one campaign seed file.
func (i *Importer) ImportFile(ctx context.Context, path string) (Summary, error) {
	var sum Summary

	raw, err := os.ReadFile(path)
	if err != nil {
		return sum, fmt.Errorf("reading seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return sum, fmt.Errorf("parsing seed file: %w", err)
	}

	if seed.Campaign.Name == "" {
		return sum, fmt.Errorf("campaign name must not be empty")
	}
	if seed.Campaign.ID == "" {
		seed.Campaign.ID = uuid.NewString()
	}
	if seed.Campaign.PlayerName != "" && !hasCharacter(seed.Characters, seed.Campaign.PlayerName) {
		return sum, fmt.Errorf("campaign %q: player %q has no character entry", seed.Campaign.Name, seed.Campaign.PlayerName)
	}

	camp := campaign.New(seed.Campaign.ID, seed.Campaign.Name, seed.Campaign.PlayerName)
	if err := i.campaigns.Save(ctx, &camp); err != nil {
		return sum, fmt.Errorf("saving campaign %q: %w", camp.Name, err)
	}
	sum.Campaigns++

	for idx := range seed.Characters {
		rec, err := buildCharacter(&seed.Characters[idx])
		if err != nil {
			return sum, err
		}
		if err := i.characters.Save(ctx, camp.ID, rec); err != nil {
			return sum, fmt.Errorf("saving character %q: %w", rec.Name, err)
		}
		sum.Characters++
	}

	for idx := range seed.Bestiary {
		tmpl := &seed.Bestiary[idx]
		if err := i.templates.Save(ctx, camp.ID, tmpl); err != nil {
			return sum, fmt.Errorf("saving bestiary template %q: %w", tmpl.Name, err)
		}
		sum.Templates++
	}

	i.logger.Debug("seed file imported",
		zap.String("path", path),
		zap.String("campaign", camp.Name),
		zap.Int("characters", sum.Characters),
		zap.Int("templates", sum.Templates),
	)
	return sum, nil
}

// buildCharacter applies seed defaults and resolves threat_level to a
// hit chance.
func buildCharacter(seed *seedCharacter) (*character.Character, error) {
	rec := seed.Character

	if rec.HitChance == 0 {
		threat := seed.ThreatLevel
		if threat == "" {
			threat = bestiary.ThreatModerate
		}
		if !threat.Valid() {
			return nil, fmt.Errorf("character %q: unknown threat level %q", rec.Name, threat)
		}
		rec.HitChance = threat.HitChance()
	} else if seed.ThreatLevel != "" {
		return nil, fmt.Errorf("character %q: threat_level and hit_chance are mutually exclusive", rec.Name)
	}

	if rec.MaxHealth == 0 {
		rec.MaxHealth = defaultMaxHealth
	}
	if rec.Health == 0 {
		rec.Health = rec.MaxHealth
	}
	if len(rec.Keywords) == 0 {
		rec.Keywords = []string{strings.ToLower(strings.TrimSpace(rec.Name))}
	}
	return &rec, nil
}

func hasCharacter(chars []seedCharacter, name string) bool {
	slug := character.Slugify(name)
	for idx := range chars {
		if chars[idx].Slug() == slug {
			return true
		}
	}
	return false
}

// seedPaths lists the .yaml and .yml files in dir, sorted.
func seedPaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content dir: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
